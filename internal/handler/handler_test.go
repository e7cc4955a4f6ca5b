package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gencut/config"
	"gencut/internal/response"
	"gencut/internal/service"
	"gencut/internal/storage"
	"gencut/internal/taskrunner"
	"gencut/internal/types"
	"gencut/log"
	apperrors "gencut/pkg/errors"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	log.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	t.Setenv("GENCUT_DATA_DIR", t.TempDir())

	// Background workers must fail fast on missing files instead of
	// holding the poll loop open across the test.
	restoreConf := config.Conf
	t.Cleanup(func() { config.Conf = restoreConf })
	config.Conf.Fetch.WaitTimeoutSec = 0
	config.Conf.Fetch.PollIntervalSec = 0.001
	config.Conf.Fetch.Peers = nil

	svc := service.NewService()
	require.NotNil(t, svc)
	svc.JobStore = storage.NewMemoryJobStore()

	runner := taskrunner.New(svc, taskrunner.Config{Concurrency: 1})
	t.Cleanup(runner.Close)

	return &Handler{Service: svc, Runner: runner}
}

func doRequest(t *testing.T, register func(*gin.Engine), method, target string, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	engine := gin.New()
	register(engine)

	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var envelope response.Response
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	}
	return rec, envelope
}

func TestGetCutdownJobMissingParam(t *testing.T) {
	h := newTestHandler(t)
	_, envelope := doRequest(t, func(e *gin.Engine) {
		e.GET("/api/cutdown/job", h.GetCutdownJob)
	}, http.MethodGet, "/api/cutdown/job", nil, "")

	assert.Equal(t, int32(apperrors.CodeInvalidInput), envelope.Error)
}

func TestGetCutdownJobNotFound(t *testing.T) {
	h := newTestHandler(t)
	_, envelope := doRequest(t, func(e *gin.Engine) {
		e.GET("/api/cutdown/job", h.GetCutdownJob)
	}, http.MethodGet, "/api/cutdown/job?job_id=missing", nil, "")

	assert.Equal(t, int32(apperrors.CodeNotFound), envelope.Error)
}

func TestGetCutdownJobReturnsJob(t *testing.T) {
	h := newTestHandler(t)
	require.NoError(t, h.Service.JobStore.Save(&types.CutdownJob{
		JobId:  "job-42",
		Status: types.CutdownJobStatusDone,
		State:  string(types.StateDone),
	}))

	_, envelope := doRequest(t, func(e *gin.Engine) {
		e.GET("/api/cutdown/job", h.GetCutdownJob)
	}, http.MethodGet, "/api/cutdown/job?job_id=job-42", nil, "")

	require.Equal(t, int32(0), envelope.Error)
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var job types.CutdownJob
	require.NoError(t, json.Unmarshal(data, &job))
	assert.Equal(t, "job-42", job.JobId)
	assert.Equal(t, types.CutdownJobStatusDone, job.Status)
}

func TestSubmitCutdownJobRegistersJob(t *testing.T) {
	h := newTestHandler(t)
	body := bytes.NewBufferString(`{
		"selected_scenes": [{"video_url": "a.mp4", "start_time": 0, "end_time": 2}],
		"audio_url": "track.mp3"
	}`)

	_, envelope := doRequest(t, func(e *gin.Engine) {
		e.POST("/api/cutdown/submit", h.SubmitCutdownJob)
	}, http.MethodPost, "/api/cutdown/submit", body, "application/json")

	require.Equal(t, int32(0), envelope.Error)
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var res struct {
		JobId string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(data, &res))
	require.NotEmpty(t, res.JobId)

	job, err := h.Service.JobStore.Get(res.JobId)
	require.NoError(t, err)
	assert.Equal(t, res.JobId, job.JobId)
}

func TestGenerateCutdownInvalidBody(t *testing.T) {
	h := newTestHandler(t)
	body := bytes.NewBufferString(`{"audio_url": "x.mp3"}`)

	_, envelope := doRequest(t, func(e *gin.Engine) {
		e.POST("/api/generate-cutdown", h.GenerateCutdown)
	}, http.MethodPost, "/api/generate-cutdown", body, "application/json")

	assert.Equal(t, int32(apperrors.CodeInvalidInput), envelope.Error)
}

func TestAnalyzeVideoRequiresFile(t *testing.T) {
	h := newTestHandler(t)
	body := bytes.NewBufferString(`{}`)

	_, envelope := doRequest(t, func(e *gin.Engine) {
		e.POST("/api/analyze-path", h.AnalyzeVideo)
	}, http.MethodPost, "/api/analyze-path", body, "application/json")

	assert.Equal(t, int32(apperrors.CodeInvalidInput), envelope.Error)
}

func TestAnalyzeVideoRejectsRemoteURL(t *testing.T) {
	h := newTestHandler(t)
	body := bytes.NewBufferString(`{"file": "http://example.com/a.mp4"}`)

	_, envelope := doRequest(t, func(e *gin.Engine) {
		e.POST("/api/analyze-path", h.AnalyzeVideo)
	}, http.MethodPost, "/api/analyze-path", body, "application/json")

	assert.Equal(t, int32(apperrors.CodeInvalidInput), envelope.Error)
}

func TestUploadFileFlattensTraversalNames(t *testing.T) {
	h := newTestHandler(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "../../etc/evil.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("clip"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	_, envelope := doRequest(t, func(e *gin.Engine) {
		e.POST("/api/file", h.UploadFile)
	}, http.MethodPost, "/api/file", &buf, writer.FormDataContentType())

	require.Equal(t, int32(0), envelope.Error)
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var res struct {
		FilePath string `json:"file_path"`
	}
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "evil.mp4", filepath.Base(res.FilePath))
	assert.Contains(t, res.FilePath, filepath.Join("uploads", "evil.mp4"))
	assert.FileExists(t, res.FilePath)
}

func TestDownloadFileRejectsTraversal(t *testing.T) {
	h := newTestHandler(t)

	rec, envelope := doRequest(t, func(e *gin.Engine) {
		e.GET("/api/file/*filepath", h.DownloadFile)
	}, http.MethodGet, "/api/file/../../../etc/passwd", nil, "")

	assert.Equal(t, int32(apperrors.CodeInvalidInput), envelope.Error)
	assert.False(t, strings.Contains(rec.Body.String(), "root:"))
}

func TestDownloadFileServesUpload(t *testing.T) {
	h := newTestHandler(t)

	dirs, err := mediaDirsResolver()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dirs.UploadDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dirs.UploadDir, "clip.mp4"), []byte("clip-bytes"), 0o644))

	rec, _ := doRequest(t, func(e *gin.Engine) {
		e.GET("/api/file/*filepath", h.DownloadFile)
	}, http.MethodGet, "/api/file/uploads/clip.mp4", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "clip-bytes", rec.Body.String())
}

func TestHealthReportsBaseDir(t *testing.T) {
	h := newTestHandler(t)
	rec, _ := doRequest(t, func(e *gin.Engine) {
		e.GET("/health", h.Health)
	}, http.MethodGet, "/health", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["base_dir"])
}

func TestUpdateConfigTriggersServiceRefresh(t *testing.T) {
	h := newTestHandler(t)

	updated := config.Conf
	updated.Scene.Threshold = 25
	body, err := json.Marshal(updated)
	require.NoError(t, err)

	_, envelope := doRequest(t, func(e *gin.Engine) {
		e.POST("/api/config", h.UpdateConfig)
	}, http.MethodPost, "/api/config", bytes.NewBuffer(body), "application/json")
	require.Zero(t, envelope.Error)
	assert.InDelta(t, 25.0, config.Conf.Scene.Threshold, 1e-9)

	before := h.Service
	h.refreshService()
	assert.NotSame(t, before, h.Service)

	// The update flag is consumed; further refreshes keep the rebuilt service.
	rebuilt := h.Service
	h.refreshService()
	assert.Same(t, rebuilt, h.Service)
}
