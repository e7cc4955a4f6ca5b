package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"gencut/internal/service"
	"gencut/internal/types"
	"gencut/log"
)

const (
	defaultQueueSize   = 128
	defaultConcurrency = 2
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

// DefaultConfig returns a single-node friendly default config.
func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// CutdownTaskPayload contains cutdown job enqueue data.
type CutdownTaskPayload struct {
	JobID        string                `json:"job_id"`
	Scenes       []types.SelectedScene `json:"scenes"`
	BaseVideoRef string                `json:"base_video_ref,omitempty"`
	AudioRef     string                `json:"audio_ref,omitempty"`
}

// Runner executes queued cutdown jobs with in-memory workers. It is the
// queueing mode used when no Redis instance is configured.
type Runner struct {
	service *service.Service
	config  Config

	queue  chan CutdownTaskPayload
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

// New creates and starts a task runner.
func New(svc *service.Service, cfg Config) *Runner {
	if svc == nil {
		svc = service.NewService()
	}

	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		service: svc,
		config:  cfg,
		queue:   make(chan CutdownTaskPayload, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// SubmitCutdownTask queues an assembly job.
func (r *Runner) SubmitCutdownTask(payload CutdownTaskPayload) error {
	if payload.JobID == "" {
		return errors.New("cutdown task job id is required")
	}
	if len(payload.Scenes) == 0 {
		return errors.New("cutdown task has no scenes")
	}

	if r.closed.Load() {
		return ErrRunnerStopped
	}

	select {
	case <-r.ctx.Done():
		return ErrRunnerStopped
	case r.queue <- payload:
		log.GetLogger().Info("[TaskRunner] task submitted",
			zap.String("job_id", payload.JobID),
			zap.Int("scenes", len(payload.Scenes)))
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		select {
		case <-r.ctx.Done():
			return
		case payload := <-r.queue:
			r.processCutdownTask(workerID, payload)
		}
	}
}

func (r *Runner) processCutdownTask(workerID int, payload CutdownTaskPayload) {
	if r.service == nil {
		log.GetLogger().Error("[TaskRunner] service not initialized", zap.String("job_id", payload.JobID))
		return
	}

	req := &types.AssemblyRequest{
		Scenes:       payload.Scenes,
		BaseVideoRef: payload.BaseVideoRef,
		AudioRef:     payload.AudioRef,
	}

	if _, err := r.service.RunCutdownJob(r.ctx, payload.JobID, req); err != nil {
		log.GetLogger().Error("[TaskRunner] task failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", payload.JobID),
			zap.Error(err))
		return
	}

	log.GetLogger().Info("[TaskRunner] task completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", payload.JobID))
}

// Close stops workers and rejects new tasks.
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.cancel()
	r.workerWg.Wait()
}

// Pending returns the number of queued tasks waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}
