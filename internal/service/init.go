package service

import (
	"go.uber.org/zap"

	"gencut/config"
	"gencut/internal/mediadirs"
	"gencut/internal/storage"
	"gencut/internal/types"
	"gencut/log"
	"gencut/pkg/elevenlabs"
	"gencut/pkg/notify"
	"gencut/pkg/vision"
	"gencut/pkg/whisper"
)

type Service struct {
	Transcriber    types.Transcriber
	VisualAnalyzer types.VisualAnalyzer
	TtsClient      types.Ttser
	Notifier       types.Notifier
	JobStore       storage.JobStore

	dirs mediadirs.Paths
}

func NewService() *Service {
	dirs, err := mediadirs.Resolve()
	if err != nil {
		log.GetLogger().Error("failed to resolve media directories", zap.Error(err))
		return nil
	}

	var jobStore storage.JobStore
	if storage.DB != nil {
		jobStore = storage.NewDBJobStore(storage.DB)
	} else {
		jobStore = storage.NewMemoryJobStore()
	}

	return &Service{
		Transcriber:    whisper.NewClient(config.Conf.Whisper.BaseUrl),
		VisualAnalyzer: vision.NewClient(config.Conf.Vision.BaseUrl),
		TtsClient:      elevenlabs.NewClient(config.Conf.Tts.BaseUrl, config.Conf.Tts.ApiKey, config.Conf.Tts.ModelId),
		Notifier:       notify.NewWebhookClient(config.Conf.Notify.WebhookUrl),
		JobStore:       jobStore,
		dirs:           dirs,
	}
}
