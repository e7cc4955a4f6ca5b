package main

import (
	"os"

	"go.uber.org/zap"

	"gencut/config"
	"gencut/internal/deps"
	"gencut/internal/server"
	"gencut/internal/storage"
	"gencut/log"
)

func main() {
	log.InitLogger()
	defer log.GetLogger().Sync()

	created, err := config.LoadOrCreateConfig()
	if err != nil {
		log.GetLogger().Error("failed to load configuration", zap.Error(err))
		return
	}
	if created {
		log.GetLogger().Info("wrote default configuration file")
	}

	if err = config.CheckConfig(); err != nil {
		log.GetLogger().Error("invalid configuration", zap.Error(err))
		return
	}

	storage.InitDB()

	// Jobs left "running" by a previous crash can never finish; fail them
	// so the history stays truthful.
	jobStore := storage.NewDBJobStore(storage.DB)
	if count, err := jobStore.MarkStale("interrupted by server restart"); err != nil {
		log.GetLogger().Warn("failed to mark stale jobs", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("marked stale jobs as failed", zap.Int64("count", count))
	}

	if err = deps.CheckDependency(); err != nil {
		log.GetLogger().Error("dependency check failed", zap.Error(err))
		return
	}
	if err = server.StartBackend(); err != nil {
		log.GetLogger().Error("backend failed", zap.Error(err))
		os.Exit(1)
	}
}
