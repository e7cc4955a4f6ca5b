package taskrunner

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gencut/internal/service"
	"gencut/internal/storage"
	"gencut/internal/types"
	"gencut/log"
)

func TestMain(m *testing.M) {
	log.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func newTestRunner(t *testing.T, cfg Config) *Runner {
	t.Helper()
	t.Setenv("GENCUT_DATA_DIR", t.TempDir())

	svc := service.NewService()
	require.NotNil(t, svc)
	svc.JobStore = storage.NewMemoryJobStore()

	runner := New(svc, cfg)
	t.Cleanup(runner.Close)
	return runner
}

func TestSubmitCutdownTaskValidation(t *testing.T) {
	runner := newTestRunner(t, DefaultConfig())

	err := runner.SubmitCutdownTask(CutdownTaskPayload{})
	assert.Error(t, err)

	err = runner.SubmitCutdownTask(CutdownTaskPayload{JobID: "x"})
	assert.Error(t, err)
}

func TestSubmitCutdownTaskAfterCloseFails(t *testing.T) {
	runner := newTestRunner(t, DefaultConfig())
	runner.Close()

	err := runner.SubmitCutdownTask(CutdownTaskPayload{
		JobID:  "job-1",
		Scenes: []types.SelectedScene{{StartSeconds: 0, EndSeconds: 1}},
	})
	assert.ErrorIs(t, err, ErrRunnerStopped)
}

func TestSubmitCutdownTaskProcessesJob(t *testing.T) {
	runner := newTestRunner(t, Config{QueueSize: 4, Concurrency: 1})

	// The job record is missing from the store, so the worker fails fast;
	// the point is that the queue drains.
	err := runner.SubmitCutdownTask(CutdownTaskPayload{
		JobID:  "job-unknown",
		Scenes: []types.SelectedScene{{SourceRef: "a.mp4", StartSeconds: 0, EndSeconds: 1}},
	})
	require.NoError(t, err)

	deadline := time.Now().Add(5 * time.Second)
	for runner.Pending() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Zero(t, runner.Pending())
}
