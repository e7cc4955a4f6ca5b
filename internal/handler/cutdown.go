package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gencut/internal/dto"
	"gencut/internal/response"
	"gencut/internal/types"
	"gencut/log"
	apperrors "gencut/pkg/errors"
)

// GenerateCutdown runs an assembly synchronously and returns the finished
// artifact. Both accepted request layouts are normalized by the dto layer.
func (h *Handler) GenerateCutdown(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidInput, "Unreadable request body", err))
		return
	}

	req, err := dto.ParseGenerateCutdownRequest(body)
	if err != nil {
		log.GetLogger().Error("GenerateCutdown parse err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidInput, "Invalid parameters", err))
		return
	}
	log.GetLogger().Info("GenerateCutdown received request",
		zap.Int("scenes", len(req.Scenes)),
		zap.Bool("hasAudio", req.AudioRef != ""))

	h.refreshService()

	result, err := h.Service.AssembleCutdown(c.Request.Context(), req, nil)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, result)
}

// SubmitCutdownJob registers an assembly job and queues it for background
// processing.
func (h *Handler) SubmitCutdownJob(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidInput, "Unreadable request body", err))
		return
	}

	req, err := dto.ParseGenerateCutdownRequest(body)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidInput, "Invalid parameters", err))
		return
	}

	job := &types.CutdownJob{
		JobId:  uuid.NewString(),
		Status: types.CutdownJobStatusPending,
		State:  string(types.StateValidating),
	}
	if err = h.Service.JobStore.Save(job); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "Job registration failed", err))
		return
	}

	err = h.submitCutdownTask(taskrunnerPayload(job.JobId, req))
	if err != nil {
		job.Status = types.CutdownJobStatusFailed
		job.FailReason = err.Error()
		_ = h.Service.JobStore.Save(job)
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "Job submission failed", err))
		return
	}

	response.Success(c, dto.SubmitCutdownJobResData{JobId: job.JobId})
}

func (h *Handler) GetCutdownJob(c *gin.Context) {
	var req dto.GetCutdownJobReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidInput, "Invalid parameters", err))
		return
	}

	job, err := h.Service.JobStore.Get(req.JobId)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeNotFound, "Job not found", err))
		return
	}
	response.Success(c, job)
}

func (h *Handler) GetJobHistory(c *gin.Context) {
	jobs, err := h.Service.JobStore.History(200)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "History lookup failed", err))
		return
	}
	response.Success(c, jobs)
}
