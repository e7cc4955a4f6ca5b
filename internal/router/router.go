package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gencut/internal/handler"
	"gencut/internal/mediadirs"
	"gencut/log"
)

func SetupRouter(r *gin.Engine) {
	api := r.Group("/api")

	hdl := handler.NewHandler()
	{
		api.POST("/analyze-path", hdl.AnalyzeVideo)
		api.POST("/generate-cutdown", hdl.GenerateCutdown)
		api.POST("/cutdown/submit", hdl.SubmitCutdownJob)
		api.GET("/cutdown/job", hdl.GetCutdownJob)
		api.GET("/cutdown/history", hdl.GetJobHistory)
		api.POST("/separate-path", hdl.SeparateVideo)
		api.POST("/transcribe-path", hdl.TranscribeMedia)
		api.POST("/tts", hdl.GenerateSpeech)
		api.POST("/file", hdl.UploadFile)
		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)
		api.GET("/config", hdl.GetConfig)
		api.POST("/config", hdl.UpdateConfig)
	}
	r.GET("/health", hdl.Health)

	// The shared media volume is served under the same prefix the public
	// URLs use, so returned screenshot and cutdown links resolve directly.
	if dirs, err := mediadirs.Resolve(); err == nil {
		r.Static("/videos", dirs.BaseDir)
	} else {
		log.GetLogger().Warn("media dir static serving disabled", zap.Error(err))
	}
}
