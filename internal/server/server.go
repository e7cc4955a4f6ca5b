package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gencut/config"
	"gencut/internal/mediadirs"
	"gencut/internal/router"
	"gencut/log"
)

// StartBackend creates the media directory layout and serves the HTTP API.
// Blocks until the listener fails.
func StartBackend() error {
	dirs, err := mediadirs.Resolve()
	if err != nil {
		return fmt.Errorf("failed to resolve media directories: %w", err)
	}
	for _, dir := range dirs.AllDirs() {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	router.SetupRouter(engine)

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	log.GetLogger().Info("backend starting", zap.String("addr", addr))
	return engine.Run(addr)
}
