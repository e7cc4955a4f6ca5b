// Package queue provides task handlers for Asynq background processing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"gencut/internal/service"
	"gencut/internal/taskrunner"
	"gencut/internal/types"
	"gencut/log"
)

// TaskHandlers provides handlers for different task types
type TaskHandlers struct {
	service *service.Service
}

// NewTaskHandlers creates a new TaskHandlers instance
func NewTaskHandlers(svc *service.Service) *TaskHandlers {
	return &TaskHandlers{service: svc}
}

// HandleCutdownTask processes queued assembly jobs
func (h *TaskHandlers) HandleCutdownTask(ctx context.Context, t *asynq.Task) error {
	var payload taskrunner.CutdownTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing cutdown task",
		zap.String("job_id", payload.JobID),
		zap.Int("scenes", len(payload.Scenes)))

	req := &types.AssemblyRequest{
		Scenes:       payload.Scenes,
		BaseVideoRef: payload.BaseVideoRef,
		AudioRef:     payload.AudioRef,
	}

	if _, err := h.service.RunCutdownJob(ctx, payload.JobID, req); err != nil {
		return err
	}

	log.GetLogger().Info("[Queue] Cutdown task completed",
		zap.String("job_id", payload.JobID))
	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeCutdownTask, h.HandleCutdownTask)
}

// StartWorker starts the Asynq worker with registered handlers
func StartWorker(q *Queue, svc *service.Service) error {
	handlers := NewTaskHandlers(svc)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}
