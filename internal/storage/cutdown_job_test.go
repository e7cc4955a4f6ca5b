package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gencut/internal/types"
)

func TestMemoryJobStoreSaveAndGet(t *testing.T) {
	store := NewMemoryJobStore()

	job := &types.CutdownJob{
		JobId:  "job-1",
		Status: types.CutdownJobStatusRunning,
		State:  string(types.StateExtractingScenes),
	}
	require.NoError(t, store.Save(job))

	got, err := store.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, types.CutdownJobStatusRunning, got.Status)
	assert.Equal(t, string(types.StateExtractingScenes), got.State)

	// Update keeps identity
	job.Status = types.CutdownJobStatusDone
	job.OutputPath = "/app/videos/cutdowns/x.mp4"
	require.NoError(t, store.Save(job))

	got, err = store.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, types.CutdownJobStatusDone, got.Status)
	assert.Equal(t, "/app/videos/cutdowns/x.mp4", got.OutputPath)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemoryJobStoreHistoryOrder(t *testing.T) {
	store := NewMemoryJobStore()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(&types.CutdownJob{JobId: id, Status: types.CutdownJobStatusDone}))
	}

	jobs, err := store.History(2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	// Most recent first
	assert.Equal(t, "c", jobs[0].JobId)
	assert.Equal(t, "b", jobs[1].JobId)
}

func TestMemoryJobStoreMarkStale(t *testing.T) {
	store := NewMemoryJobStore()
	require.NoError(t, store.Save(&types.CutdownJob{JobId: "running", Status: types.CutdownJobStatusRunning}))
	require.NoError(t, store.Save(&types.CutdownJob{JobId: "done", Status: types.CutdownJobStatusDone}))

	count, err := store.MarkStale("server restart")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	job, err := store.Get("running")
	require.NoError(t, err)
	assert.Equal(t, types.CutdownJobStatusFailed, job.Status)
	assert.Equal(t, "server restart", job.FailReason)

	job, err = store.Get("done")
	require.NoError(t, err)
	assert.Equal(t, types.CutdownJobStatusDone, job.Status)
}
