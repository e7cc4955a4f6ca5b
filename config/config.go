package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"gencut/internal/mediadirs"
)

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SceneConfig holds scene-detection sensitivity defaults. Both values are
// overridable per call; these are only the process-wide fallbacks.
type SceneConfig struct {
	Threshold       float64 `toml:"threshold"`
	MinSceneLen     int     `toml:"min_scene_len"`
	WorkWidth       int     `toml:"work_width"`
	ScreenshotWidth int     `toml:"screenshot_width"`
}

type PipelineConfig struct {
	ExtractWorkers int `toml:"extract_workers"`
	RunTimeoutSec  int `toml:"run_timeout_sec"`
}

// FetchConfig controls the wait-and-poll plus peer-fetch fallback used when a
// referenced file is not yet visible on shared storage.
type FetchConfig struct {
	Peers           []string `toml:"peers"`
	WaitTimeoutSec  float64  `toml:"wait_timeout_sec"`
	PollIntervalSec float64  `toml:"poll_interval_sec"`
	Retries         int      `toml:"retries"`
	TimeoutSec      int      `toml:"timeout_sec"`
}

type FfmpegConfig struct {
	FfmpegPath  string `toml:"ffmpeg_path"`
	FfprobePath string `toml:"ffprobe_path"`
}

type WhisperConfig struct {
	BaseUrl string `toml:"base_url"`
}

type VisionConfig struct {
	BaseUrl string `toml:"base_url"`
}

type TtsConfig struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	ModelId string `toml:"model_id"`
}

type NotifyConfig struct {
	WebhookUrl string `toml:"webhook_url"`
}

type QueueConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Scene    SceneConfig    `toml:"scene"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Fetch    FetchConfig    `toml:"fetch"`
	Ffmpeg   FfmpegConfig   `toml:"ffmpeg"`
	Whisper  WhisperConfig  `toml:"whisper"`
	Vision   VisionConfig   `toml:"vision"`
	Tts      TtsConfig      `toml:"tts"`
	Notify   NotifyConfig   `toml:"notify"`
	Queue    QueueConfig    `toml:"queue"`
}

var Conf = defaultConfig()

var resolveConfigPath = func() (string, error) {
	dirs, err := mediadirs.Resolve()
	if err != nil {
		return "", err
	}
	return dirs.ConfigFile, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Scene: SceneConfig{
			Threshold:       18.0,
			MinSceneLen:     8,
			WorkWidth:       320,
			ScreenshotWidth: 640,
		},
		Pipeline: PipelineConfig{
			ExtractWorkers: 2,
			RunTimeoutSec:  1800,
		},
		Fetch: FetchConfig{
			Peers:           []string{"http://nginx:5679", "http://gencut-frontend:5679"},
			WaitTimeoutSec:  20,
			PollIntervalSec: 0.5,
			Retries:         2,
			TimeoutSec:      30,
		},
		Ffmpeg: FfmpegConfig{
			FfmpegPath:  "ffmpeg",
			FfprobePath: "ffprobe",
		},
		Whisper: WhisperConfig{
			BaseUrl: "http://whisper:9000",
		},
		Vision: VisionConfig{
			BaseUrl: "http://analyzer:8000",
		},
		Tts: TtsConfig{
			BaseUrl: "https://api.elevenlabs.io/v1",
			ModelId: "eleven_multilingual_v2",
		},
		Notify: NotifyConfig{
			WebhookUrl: "http://n8n:5678/webhook/video",
		},
		Queue: QueueConfig{
			Concurrency: 3,
		},
	}
}

// LoadOrCreateConfig reads the toml config file, writing the defaults first if
// the file does not exist yet. The returned bool reports whether a new file
// was created.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err = os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, err
		}
		applyEnvOverrides()
		return true, nil
	}

	Conf = defaultConfig()
	if _, err = toml.DecodeFile(configPath, &Conf); err != nil {
		return false, fmt.Errorf("decode config %s: %w", configPath, err)
	}
	applyEnvOverrides()
	return false, nil
}

// SaveConfig writes Conf back to the config file, creating parent directories.
func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

// CheckConfig validates values the pipeline cannot run without.
func CheckConfig() error {
	if Conf.Scene.Threshold <= 0 {
		return fmt.Errorf("scene.threshold must be positive, got %v", Conf.Scene.Threshold)
	}
	if Conf.Scene.MinSceneLen < 1 {
		return fmt.Errorf("scene.min_scene_len must be at least 1, got %d", Conf.Scene.MinSceneLen)
	}
	if Conf.Pipeline.ExtractWorkers < 1 {
		return fmt.Errorf("pipeline.extract_workers must be at least 1, got %d", Conf.Pipeline.ExtractWorkers)
	}
	if Conf.Server.Port <= 0 || Conf.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", Conf.Server.Port)
	}
	return nil
}

// Scene sensitivity is environment-tunable in deployments that cannot edit
// the config file; env beats file, call-site arguments beat both.
func applyEnvOverrides() {
	if raw := strings.TrimSpace(os.Getenv("SCENE_THRESHOLD")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			Conf.Scene.Threshold = v
		}
	}
	if raw := strings.TrimSpace(os.Getenv("SCENE_MIN_LEN")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 {
			Conf.Scene.MinSceneLen = v
		}
	}
	if raw := strings.TrimSpace(os.Getenv("GENCUT_PEERS")); raw != "" {
		peers := make([]string, 0, 2)
		for _, peer := range strings.Split(raw, ",") {
			if peer = strings.TrimSpace(peer); peer != "" {
				peers = append(peers, peer)
			}
		}
		if len(peers) > 0 {
			Conf.Fetch.Peers = peers
		}
	}
}
