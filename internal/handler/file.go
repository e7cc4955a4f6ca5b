package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gencut/internal/dto"
	"gencut/internal/response"
	"gencut/log"
	apperrors "gencut/pkg/errors"
	"gencut/pkg/util"
)

func (h *Handler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidInput, "No file uploaded", err))
		return
	}

	dirs, err := mediaDirsResolver()
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "Upload directory unavailable", err))
		return
	}
	if err = os.MkdirAll(dirs.UploadDir, 0o755); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "Upload directory unavailable", err))
		return
	}

	// Client-supplied names are flattened to a basename so they can never
	// escape the upload dir.
	name := filepath.Base(filepath.Clean(file.Filename))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "upload_" + util.GenerateRandStringWithUpperLowerNum(8)
	}
	savePath := filepath.Join(dirs.UploadDir, name)
	if err = c.SaveUploadedFile(file, savePath); err != nil {
		log.GetLogger().Error("UploadFile save err", zap.String("savePath", savePath), zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "File save failed", err))
		return
	}

	log.GetLogger().Info("file uploaded", zap.String("savePath", savePath))
	response.Success(c, dto.UploadFileResData{
		FilePath: savePath,
		FileUrl:  dirs.PublicURL(savePath),
	})
}

func (h *Handler) DownloadFile(c *gin.Context) {
	requested := strings.TrimPrefix(c.Param("filepath"), "/")
	if requested == "" {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidInput, "File path is empty"))
		return
	}

	dirs, err := mediaDirsResolver()
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileNotFound, "Media directories unavailable", err))
		return
	}

	candidate := filepath.Clean(filepath.Join(dirs.BaseDir, filepath.FromSlash(requested)))
	rel, err := filepath.Rel(dirs.BaseDir, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeInvalidInput, "File path escapes media root"))
		return
	}

	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		response.ErrorResponse(c, apperrors.New(apperrors.CodeFileNotFound, "File not found"))
		return
	}

	c.FileAttachment(candidate, filepath.Base(candidate))
}

func (h *Handler) Health(c *gin.Context) {
	dirs, err := mediaDirsResolver()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "degraded", "detail": err.Error()})
		return
	}
	if _, err = os.Stat(dirs.BaseDir); err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "degraded", "base_dir": dirs.BaseDir})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "base_dir": dirs.BaseDir})
}
