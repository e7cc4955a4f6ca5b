package service

import (
	"context"

	"go.uber.org/zap"

	"gencut/internal/types"
	"gencut/log"
)

// RunCutdownJob executes one queued assembly request end to end, keeping the
// job store in sync with every state transition and notifying the workflow
// webhook when the job settles.
func (s Service) RunCutdownJob(ctx context.Context, jobId string, req *types.AssemblyRequest) (*types.CutdownResult, error) {
	job, err := s.JobStore.Get(jobId)
	if err != nil {
		return nil, err
	}
	job.Status = types.CutdownJobStatusRunning
	if err = s.JobStore.Save(job); err != nil {
		return nil, err
	}

	result, runErr := s.AssembleCutdown(ctx, req, func(state types.PipelineState) {
		job.State = string(state)
		if saveErr := s.JobStore.Save(job); saveErr != nil {
			log.GetLogger().Warn("job state save failed", zap.String("jobId", jobId), zap.Error(saveErr))
		}
	})

	if runErr != nil {
		job.Status = types.CutdownJobStatusFailed
		job.State = string(types.StateFailed)
		job.FailReason = runErr.Error()
	} else {
		job.Status = types.CutdownJobStatusDone
		job.State = string(types.StateDone)
		job.OutputPath = result.OutputPath
		job.OutputURL = result.OutputURL
		job.AudioAttached = result.AudioAttached
		job.Warning = result.Warning
	}
	if err = s.JobStore.Save(job); err != nil {
		log.GetLogger().Error("job final save failed", zap.String("jobId", jobId), zap.Error(err))
	}

	s.notifyJobSettled(job)
	return result, runErr
}

// notifyJobSettled posts the terminal job snapshot to the workflow webhook.
// Delivery failures are logged and dropped, never surfaced to the pipeline.
func (s Service) notifyJobSettled(job *types.CutdownJob) {
	if s.Notifier == nil {
		return
	}
	payload := map[string]any{
		"job_id":         job.JobId,
		"status":         job.Status,
		"state":          job.State,
		"output_url":     job.OutputURL,
		"audio_attached": job.AudioAttached,
	}
	if job.Warning != "" {
		payload["warning"] = job.Warning
	}
	if job.FailReason != "" {
		payload["fail_reason"] = job.FailReason
	}
	if err := s.Notifier.NotifyJob(context.Background(), payload); err != nil {
		log.GetLogger().Warn("job notification failed", zap.String("jobId", job.JobId), zap.Error(err))
	}
}
