package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gencut/config"
	"gencut/internal/mediadirs"
	"gencut/internal/types"
	apperrors "gencut/pkg/errors"
)

// fakeFfmpeg stands in for runCommand, writing plausible outputs and
// recording every invocation.
type fakeFfmpeg struct {
	mu          sync.Mutex
	calls       [][]string
	manifest    string
	failConcat  bool
	failMerge   bool
	failExtract map[string]bool // keyed by output path suffix
}

func (f *fakeFfmpeg) run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{bin}, args...))
	f.mu.Unlock()

	if filepath.Base(bin) == "ffprobe" {
		return []byte(`{
			"streams": [{"codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720, "r_frame_rate": "25/1"}],
			"format": {"duration": "100.0"}
		}`), nil
	}

	outputPath := args[len(args)-1]
	switch {
	case contains(args, "concat"):
		if f.failConcat {
			return []byte("concat boom"), errors.New("exit status 1")
		}
		for i, arg := range args {
			if arg == "-i" {
				if data, err := os.ReadFile(args[i+1]); err == nil {
					f.mu.Lock()
					f.manifest = string(data)
					f.mu.Unlock()
				}
			}
		}
	case contains(args, "-map"):
		if f.failMerge {
			return []byte("merge boom"), errors.New("exit status 1")
		}
	default:
		f.mu.Lock()
		fail := f.failExtract[filepath.Base(outputPath)]
		f.mu.Unlock()
		if fail {
			return []byte("extract boom"), errors.New("exit status 1")
		}
	}
	if err := os.WriteFile(outputPath, []byte("media "+filepath.Base(outputPath)), 0o644); err != nil {
		return nil, err
	}
	return nil, nil
}

func contains(args []string, want string) bool {
	for _, arg := range args {
		if arg == want {
			return true
		}
	}
	return false
}

func (f *fakeFfmpeg) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newCutdownTestService(t *testing.T, fake *fakeFfmpeg) (Service, mediadirs.Paths) {
	t.Helper()
	dirs := testDirs(t)
	for _, dir := range []string{dirs.UploadDir, dirs.TempDir, dirs.CutdownDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dirs.UploadDir, "source.mp4"), []byte("src"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dirs.UploadDir, "track.mp3"), []byte("aud"), 0o644))

	restore := runCommand
	t.Cleanup(func() { runCommand = restore })
	runCommand = fake.run

	return Service{dirs: dirs}, dirs
}

func assertTempClean(t *testing.T, dirs mediadirs.Paths) {
	t.Helper()
	entries, err := os.ReadDir(dirs.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp dir should hold no leftovers")
}

func TestAssembleCutdownVideoOnly(t *testing.T) {
	fake := &fakeFfmpeg{}
	s, dirs := newCutdownTestService(t, fake)

	var states []types.PipelineState
	result, err := s.AssembleCutdown(context.Background(), &types.AssemblyRequest{
		Scenes: []types.SelectedScene{
			{SourceRef: "source.mp4", StartSeconds: 0, EndSeconds: 4},
			{SourceRef: "source.mp4", StartSeconds: 10, EndSeconds: 12},
		},
	}, func(state types.PipelineState) { states = append(states, state) })

	require.NoError(t, err)
	assert.False(t, result.AudioAttached)
	assert.Empty(t, result.Warning)
	assert.FileExists(t, result.OutputPath)
	assert.Equal(t, "/videos/cutdowns/"+filepath.Base(result.OutputPath), result.OutputURL)

	// The assembled video is moved intact out of the temp dir.
	data, readErr := os.ReadFile(result.OutputPath)
	require.NoError(t, readErr)
	assert.Equal(t, "media concat.mp4", string(data))

	assert.Equal(t, []types.PipelineState{
		types.StateValidating,
		types.StateExtractingScenes,
		types.StateConcatenating,
		types.StateCleaning,
		types.StateDone,
	}, states)
	assertTempClean(t, dirs)
}

func TestAssembleCutdownWithAudio(t *testing.T) {
	fake := &fakeFfmpeg{}
	s, dirs := newCutdownTestService(t, fake)

	var states []types.PipelineState
	result, err := s.AssembleCutdown(context.Background(), &types.AssemblyRequest{
		Scenes:   []types.SelectedScene{{SourceRef: "source.mp4", StartSeconds: 1, EndSeconds: 3}},
		AudioRef: "track.mp3",
	}, func(state types.PipelineState) { states = append(states, state) })

	require.NoError(t, err)
	assert.True(t, result.AudioAttached)
	assert.Empty(t, result.Warning)
	assert.FileExists(t, result.OutputPath)
	assert.Contains(t, states, types.StateAttachingAudio)
	assertTempClean(t, dirs)
}

func TestAssembleCutdownAudioFailureDegradesToVideoOnly(t *testing.T) {
	fake := &fakeFfmpeg{failMerge: true}
	s, dirs := newCutdownTestService(t, fake)

	result, err := s.AssembleCutdown(context.Background(), &types.AssemblyRequest{
		Scenes:   []types.SelectedScene{{SourceRef: "source.mp4", StartSeconds: 1, EndSeconds: 3}},
		AudioRef: "track.mp3",
	}, nil)

	require.NoError(t, err)
	assert.False(t, result.AudioAttached)
	assert.NotEmpty(t, result.Warning)
	assert.FileExists(t, result.OutputPath)
	assertTempClean(t, dirs)
}

func TestAssembleCutdownInvalidRangeBeforeAnySubprocess(t *testing.T) {
	fake := &fakeFfmpeg{}
	s, dirs := newCutdownTestService(t, fake)

	_, err := s.AssembleCutdown(context.Background(), &types.AssemblyRequest{
		Scenes: []types.SelectedScene{{SourceRef: "source.mp4", StartSeconds: 5, EndSeconds: 5}},
	}, nil)

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidRange))
	assert.Zero(t, fake.count(), "invalid input must be rejected before any subprocess runs")
	assertTempClean(t, dirs)
}

func TestAssembleCutdownNoScenes(t *testing.T) {
	fake := &fakeFfmpeg{}
	s, _ := newCutdownTestService(t, fake)

	_, err := s.AssembleCutdown(context.Background(), &types.AssemblyRequest{}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
	assert.Zero(t, fake.count())
}

func TestAssembleCutdownCleansUpOnConcatFailure(t *testing.T) {
	fake := &fakeFfmpeg{failConcat: true}
	s, dirs := newCutdownTestService(t, fake)

	var states []types.PipelineState
	_, err := s.AssembleCutdown(context.Background(), &types.AssemblyRequest{
		Scenes: []types.SelectedScene{{SourceRef: "source.mp4", StartSeconds: 0, EndSeconds: 2}},
	}, func(state types.PipelineState) { states = append(states, state) })

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeConcatenationFailed))
	assert.Equal(t, types.StateFailed, states[len(states)-1])
	assertTempClean(t, dirs)
}

func TestAssembleCutdownCleansUpOnExtractFailure(t *testing.T) {
	fake := &fakeFfmpeg{failExtract: map[string]bool{"clip_001.mp4": true}}
	s, dirs := newCutdownTestService(t, fake)

	_, err := s.AssembleCutdown(context.Background(), &types.AssemblyRequest{
		Scenes: []types.SelectedScene{
			{SourceRef: "source.mp4", StartSeconds: 0, EndSeconds: 2},
			{SourceRef: "source.mp4", StartSeconds: 4, EndSeconds: 6},
		},
	}, nil)

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeExtractionFailed))
	assertTempClean(t, dirs)
}

func TestAssembleCutdownPreservesClipOrder(t *testing.T) {
	fake := &fakeFfmpeg{}
	s, _ := newCutdownTestService(t, fake)

	_, err := s.AssembleCutdown(context.Background(), &types.AssemblyRequest{
		Scenes: []types.SelectedScene{
			{SourceRef: "source.mp4", StartSeconds: 30, EndSeconds: 35},
			{SourceRef: "source.mp4", StartSeconds: 0, EndSeconds: 5},
			{SourceRef: "source.mp4", StartSeconds: 60, EndSeconds: 65},
		},
	}, nil)
	require.NoError(t, err)

	// Extraction runs in parallel; the manifest must still list clips in
	// request order.
	fake.mu.Lock()
	manifest := fake.manifest
	fake.mu.Unlock()
	require.NotEmpty(t, manifest)
	i0 := strings.Index(manifest, "clip_000.mp4")
	i1 := strings.Index(manifest, "clip_001.mp4")
	i2 := strings.Index(manifest, "clip_002.mp4")
	require.GreaterOrEqual(t, i0, 0)
	assert.Less(t, i0, i1)
	assert.Less(t, i1, i2)
}

func TestAssembleCutdownClampsEndToDuration(t *testing.T) {
	fake := &fakeFfmpeg{}
	s, dirs := newCutdownTestService(t, fake)

	// Fake probe reports 100s; request runs past it.
	result, err := s.AssembleCutdown(context.Background(), &types.AssemblyRequest{
		Scenes: []types.SelectedScene{{SourceRef: "source.mp4", StartSeconds: 95, EndSeconds: 500}},
	}, nil)
	require.NoError(t, err)
	assert.FileExists(t, result.OutputPath)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	var clamped bool
	for _, call := range fake.calls {
		if contains(call, "-to") && contains(call, "100.000") {
			clamped = true
		}
	}
	assert.True(t, clamped, "extraction should clamp -to at the probed duration")
	assertTempClean(t, dirs)
}

func TestAssembleCutdownStartPastDurationFails(t *testing.T) {
	fake := &fakeFfmpeg{}
	s, dirs := newCutdownTestService(t, fake)

	_, err := s.AssembleCutdown(context.Background(), &types.AssemblyRequest{
		Scenes: []types.SelectedScene{{SourceRef: "source.mp4", StartSeconds: 100, EndSeconds: 110}},
	}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidRange))
	assertTempClean(t, dirs)
}

func TestValidateAssemblyRequestFallsBackToBaseVideo(t *testing.T) {
	err := validateAssemblyRequest(&types.AssemblyRequest{
		BaseVideoRef: "base.mp4",
		Scenes:       []types.SelectedScene{{StartSeconds: 0, EndSeconds: 2}},
	})
	assert.NoError(t, err)

	err = validateAssemblyRequest(&types.AssemblyRequest{
		Scenes: []types.SelectedScene{{StartSeconds: 0, EndSeconds: 2}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}

func TestAssembleCutdownUnresolvableSourceFailsValidation(t *testing.T) {
	restoreConf := config.Conf
	defer func() { config.Conf = restoreConf }()
	config.Conf.Fetch.WaitTimeoutSec = 0
	config.Conf.Fetch.PollIntervalSec = 0.001
	config.Conf.Fetch.Peers = nil

	fake := &fakeFfmpeg{}
	s, dirs := newCutdownTestService(t, fake)

	var states []types.PipelineState
	_, err := s.AssembleCutdown(context.Background(), &types.AssemblyRequest{
		Scenes: []types.SelectedScene{{SourceRef: "nowhere.mp4", StartSeconds: 0, EndSeconds: 2}},
	}, func(state types.PipelineState) { states = append(states, state) })

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeFileNotFound))
	assert.Zero(t, fake.count(), "an unresolvable source must fail before any subprocess runs")
	assert.Equal(t, []types.PipelineState{types.StateValidating, types.StateFailed}, states)
	assertTempClean(t, dirs)
}
