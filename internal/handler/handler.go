package handler

import (
	"go.uber.org/zap"

	"gencut/config"
	"gencut/internal/mediadirs"
	"gencut/internal/queue"
	"gencut/internal/service"
	"gencut/internal/taskrunner"
	"gencut/internal/types"
	"gencut/log"
)

var mediaDirsResolver = mediadirs.Resolve

type Handler struct {
	Service *service.Service
	Runner  *taskrunner.Runner
	Queue   *queue.Queue
}

// NewHandler wires the service with whichever job backend is configured: an
// asynq queue when Redis is reachable by config, otherwise in-process workers.
func NewHandler() *Handler {
	svc := service.NewService()

	h := &Handler{Service: svc}
	if config.Conf.Queue.RedisAddr != "" {
		h.Queue = queue.NewQueue(queue.QueueConfig{
			RedisAddr:     config.Conf.Queue.RedisAddr,
			RedisPassword: config.Conf.Queue.RedisPassword,
			RedisDB:       config.Conf.Queue.RedisDB,
			Concurrency:   config.Conf.Queue.Concurrency,
		})
		go func() {
			if err := queue.StartWorker(h.Queue, svc); err != nil {
				log.GetLogger().Error("queue worker stopped", zap.Error(err))
			}
		}()
	} else {
		h.Runner = taskrunner.New(svc, taskrunner.Config{
			Concurrency: config.Conf.Queue.Concurrency,
		})
	}
	return h
}

func (h *Handler) submitCutdownTask(payload taskrunner.CutdownTaskPayload) error {
	if h.Queue != nil {
		return h.Queue.EnqueueCutdownTask(payload)
	}
	return h.Runner.SubmitCutdownTask(payload)
}

func taskrunnerPayload(jobId string, req *types.AssemblyRequest) taskrunner.CutdownTaskPayload {
	return taskrunner.CutdownTaskPayload{
		JobID:        jobId,
		Scenes:       req.Scenes,
		BaseVideoRef: req.BaseVideoRef,
		AudioRef:     req.AudioRef,
	}
}
