package handler

import (
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gencut/config"
	"gencut/internal/deps"
	"gencut/internal/response"
	"gencut/internal/service"
	"gencut/log"
	apperrors "gencut/pkg/errors"
)

// configMu orders config swaps against the per-request refresh check.
var (
	configMu      sync.Mutex
	configUpdated bool
)

func (h *Handler) GetConfig(c *gin.Context) {
	response.Success(c, config.Conf)
}

func (h *Handler) UpdateConfig(c *gin.Context) {
	var updated config.Config
	if err := c.ShouldBindJSON(&updated); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidInput, "Invalid parameters", err))
		return
	}

	configMu.Lock()
	config.Conf = updated
	err := config.SaveConfig()
	if err == nil {
		configUpdated = true
	}
	configMu.Unlock()

	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "Config save failed", err))
		return
	}
	log.GetLogger().Info("configuration updated")
	response.Success(c, nil)
}

// refreshService rebuilds collaborator clients after a config change so the
// next request uses the new endpoints.
func (h *Handler) refreshService() {
	configMu.Lock()
	defer configMu.Unlock()

	if !configUpdated {
		return
	}
	log.GetLogger().Info("config changed, reinitializing service")
	if err := deps.CheckDependency(); err != nil {
		log.GetLogger().Error("dependency check after config update failed", zap.Error(err))
	}
	h.Service = service.NewService()
	configUpdated = false
}
