package mediadirs

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// BaseDirEnv overrides the root of the shared media volume.
	BaseDirEnv   = "GENCUT_DATA_DIR"
	ConfigEnv    = "GENCUT_CONFIG"
	defaultBase  = "/app/videos"
	publicPrefix = "/videos"

	configFileName = "config.toml"
	dbFileName     = "gencut.db"
)

// Paths holds the canonical on-disk locations for every media category the
// pipeline reads or writes. All legacy path prefixes are rewritten onto these.
type Paths struct {
	BaseDir       string
	UploadDir     string
	CutdownDir    string
	SeparatedDir  string
	ScreenshotDir string
	TempDir       string
	LogDir        string
	ConfigFile    string
	DBPath        string
}

type resolveDeps struct {
	getenv func(string) string
}

func Resolve() (Paths, error) {
	return resolve(resolveDeps{getenv: os.Getenv})
}

func resolve(deps resolveDeps) (Paths, error) {
	base := strings.TrimSpace(deps.getenv(BaseDirEnv))
	if base == "" {
		base = defaultBase
	}
	base = filepath.Clean(base)

	paths := Paths{
		BaseDir:       base,
		UploadDir:     filepath.Join(base, "uploads"),
		CutdownDir:    filepath.Join(base, "cutdowns"),
		SeparatedDir:  filepath.Join(base, "separated"),
		ScreenshotDir: filepath.Join(base, "screenshots"),
		TempDir:       filepath.Join(base, "temp"),
		LogDir:        filepath.Join(base, "logs"),
		DBPath:        filepath.Join(base, dbFileName),
	}

	configFile := strings.TrimSpace(deps.getenv(ConfigEnv))
	if configFile == "" {
		configFile = filepath.Join(base, "config", configFileName)
	}
	paths.ConfigFile = configFile

	return paths, nil
}

// AllDirs lists every directory that must exist before the pipeline runs.
func (p Paths) AllDirs() []string {
	return []string{
		p.UploadDir,
		p.CutdownDir,
		p.SeparatedDir,
		p.ScreenshotDir,
		p.TempDir,
		p.LogDir,
	}
}

// PublicURL maps a canonical on-disk path to the URL the static file server
// exposes it under. Paths outside the base dir are returned unchanged.
func (p Paths) PublicURL(localPath string) string {
	cleaned := filepath.ToSlash(filepath.Clean(localPath))
	base := filepath.ToSlash(p.BaseDir)
	if strings.HasPrefix(cleaned, base+"/") {
		return publicPrefix + strings.TrimPrefix(cleaned, base)
	}
	return cleaned
}
