package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gencut/internal/dto"
	"gencut/internal/response"
	"gencut/log"
	apperrors "gencut/pkg/errors"
)

// TranscribeMedia proxies a media reference to the speech-to-text
// collaborator.
func (h *Handler) TranscribeMedia(c *gin.Context) {
	var req dto.TranscribeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidInput, "Invalid parameters", err))
		return
	}
	log.GetLogger().Info("TranscribeMedia received request", zap.String("file", req.File))

	transcript, err := h.Service.TranscribeMedia(c.Request.Context(), req.File, req.Language)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, transcript)
}

// GenerateSpeech synthesizes narration audio and returns where it landed.
func (h *Handler) GenerateSpeech(c *gin.Context) {
	var req dto.TtsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidInput, "Invalid parameters", err))
		return
	}

	audioPath, audioUrl, err := h.Service.GenerateSpeech(c.Request.Context(), req.VoiceId, req.Text)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, dto.TtsResData{AudioPath: audioPath, AudioUrl: audioUrl})
}
