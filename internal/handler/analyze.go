package handler

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gencut/internal/dto"
	"gencut/internal/response"
	"gencut/internal/service"
	"gencut/log"
	apperrors "gencut/pkg/errors"
)

func (h *Handler) AnalyzeVideo(c *gin.Context) {
	var req dto.AnalyzeVideoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("AnalyzeVideo ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidInput, "Invalid parameters", err))
		return
	}
	log.GetLogger().Info("AnalyzeVideo received request", zap.String("file", req.File))

	h.refreshService()

	scenes, err := h.Service.AnalyzeVideo(c.Request.Context(), req.File, service.DetectOptions{
		Threshold:   req.Threshold,
		MinSceneLen: req.MinSceneLen,
	})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	if req.Describe {
		// Descriptions are an enrichment; a collaborator outage must not
		// fail the detection result.
		for i := range scenes {
			analysis, descErr := h.Service.DescribeScene(c.Request.Context(), scenes[i])
			if descErr != nil {
				continue
			}
			scenes[i].Analysis = analysis
		}
	}

	response.Success(c, dto.AnalyzeVideoResData{
		Filename: filepath.Base(req.File),
		Scenes:   scenes,
	})
}

func (h *Handler) SeparateVideo(c *gin.Context) {
	var req dto.SeparateVideoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidInput, "Invalid parameters", err))
		return
	}
	log.GetLogger().Info("SeparateVideo received request", zap.String("file", req.File))

	videoPath, err := h.Service.ResolveMediaRef(c.Request.Context(), req.File)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	result, err := h.Service.SeparateVideo(c.Request.Context(), videoPath)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	response.Success(c, dto.SeparateVideoResData{
		Filename: filepath.Base(req.File),
		VideoUrl: result.VideoURL,
		AudioUrl: result.AudioURL,
	})
}
