package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gencut/config"
	"gencut/internal/types"
	"gencut/log"
	apperrors "gencut/pkg/errors"
)

// cutdownRun tracks the working state of one assembly so intermediates are
// removed exactly once no matter how the run exits.
type cutdownRun struct {
	id          string
	tempDir     string
	cleanupOnce sync.Once
}

func (r *cutdownRun) cleanup() {
	r.cleanupOnce.Do(func() {
		if r.tempDir == "" {
			return
		}
		if err := os.RemoveAll(r.tempDir); err != nil {
			log.GetLogger().Warn("cutdown temp cleanup failed", zap.String("runId", r.id), zap.Error(err))
			return
		}
		log.GetLogger().Debug("cutdown temp cleaned", zap.String("runId", r.id))
	})
}

// AssembleCutdown runs the full cutdown pipeline for one request: validate,
// extract the selected scenes, concatenate them, optionally attach the
// replacement audio, and clean up intermediates. onState, when non-nil,
// receives every state transition; only the returned result outlives the run.
func (s Service) AssembleCutdown(ctx context.Context, req *types.AssemblyRequest, onState func(types.PipelineState)) (*types.CutdownResult, error) {
	if timeout := config.Conf.Pipeline.RunTimeoutSec; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	setState := func(state types.PipelineState) {
		if onState != nil {
			onState(state)
		}
	}

	setState(types.StateValidating)
	if err := validateAssemblyRequest(req); err != nil {
		setState(types.StateFailed)
		return nil, err
	}
	// Every referenced source must resolve before any temp or subprocess
	// work starts; an unreachable video fails the request as invalid input,
	// not mid-extraction.
	sourcePaths, err := s.resolveSceneSources(ctx, req)
	if err != nil {
		setState(types.StateFailed)
		return nil, err
	}

	run := &cutdownRun{id: uuid.NewString()}
	defer run.cleanup()

	run.tempDir = filepath.Join(s.dirs.TempDir, "cutdown_"+run.id)
	if err := os.MkdirAll(run.tempDir, 0o755); err != nil {
		setState(types.StateFailed)
		return nil, apperrors.Wrap(apperrors.CodeFileWriteError, "Temp directory creation failed", err)
	}
	if err := os.MkdirAll(s.dirs.CutdownDir, 0o755); err != nil {
		setState(types.StateFailed)
		return nil, apperrors.Wrap(apperrors.CodeFileWriteError, "Cutdown directory creation failed", err)
	}

	log.GetLogger().Info("cutdown started",
		zap.String("runId", run.id),
		zap.Int("scenes", len(req.Scenes)),
		zap.Bool("hasAudio", req.AudioRef != ""))

	setState(types.StateExtractingScenes)
	clipPaths, err := s.extractScenes(ctx, req, run, sourcePaths)
	if err != nil {
		setState(types.StateFailed)
		return nil, err
	}

	setState(types.StateConcatenating)
	silentPath := filepath.Join(run.tempDir, "concat.mp4")
	manifestPath := filepath.Join(run.tempDir, "concat_list.txt")
	if err = s.concatClips(ctx, clipPaths, manifestPath, silentPath); err != nil {
		setState(types.StateFailed)
		return nil, err
	}

	outputPath := filepath.Join(s.dirs.CutdownDir, fmt.Sprintf("cutdown_%s.mp4", run.id))
	result := &types.CutdownResult{OutputPath: outputPath}

	if req.AudioRef != "" {
		setState(types.StateAttachingAudio)
		if err = s.attachAudio(ctx, req.AudioRef, silentPath, outputPath); err != nil {
			// The silent cutdown is still a valid deliverable. Degrade
			// rather than discard the finished video work.
			log.GetLogger().Warn("audio attachment failed, delivering video-only cutdown",
				zap.String("runId", run.id), zap.Error(err))
			if copyErr := moveFile(silentPath, outputPath); copyErr != nil {
				setState(types.StateFailed)
				return nil, apperrors.Wrap(apperrors.CodeFileWriteError, "Cutdown finalize failed", copyErr)
			}
			result.AudioAttached = false
			result.Warning = fmt.Sprintf("audio attachment failed: %s", apperrors.GetMessage(err))
		} else {
			result.AudioAttached = true
		}
	} else {
		if err = moveFile(silentPath, outputPath); err != nil {
			setState(types.StateFailed)
			return nil, apperrors.Wrap(apperrors.CodeFileWriteError, "Cutdown finalize failed", err)
		}
	}

	setState(types.StateCleaning)
	run.cleanup()

	result.OutputURL = s.dirs.PublicURL(outputPath)
	setState(types.StateDone)
	log.GetLogger().Info("cutdown finished",
		zap.String("runId", run.id),
		zap.String("outputPath", outputPath),
		zap.Bool("audioAttached", result.AudioAttached),
		zap.String("warning", result.Warning))
	return result, nil
}

// validateAssemblyRequest rejects malformed requests before any subprocess
// or filesystem work happens.
func validateAssemblyRequest(req *types.AssemblyRequest) error {
	if req == nil || len(req.Scenes) == 0 {
		return apperrors.New(apperrors.CodeInvalidInput, "No scenes selected")
	}
	for i, scene := range req.Scenes {
		if scene.SourceRef == "" && req.BaseVideoRef == "" {
			return apperrors.WrapWithDetail(apperrors.CodeInvalidInput, "Scene has no source video",
				fmt.Sprintf("scene %d", i+1), nil)
		}
		if scene.EndSeconds <= scene.StartSeconds {
			return apperrors.WrapWithDetail(apperrors.CodeInvalidRange, "Scene end must be after start",
				fmt.Sprintf("scene %d: start=%.3f end=%.3f", i+1, scene.StartSeconds, scene.EndSeconds), nil)
		}
		if scene.StartSeconds < 0 {
			return apperrors.WrapWithDetail(apperrors.CodeInvalidRange, "Scene start must not be negative",
				fmt.Sprintf("scene %d: start=%.3f", i+1, scene.StartSeconds), nil)
		}
	}
	return nil
}

// resolveSceneSources resolves every distinct source reference in the
// request onto a readable local path.
func (s Service) resolveSceneSources(ctx context.Context, req *types.AssemblyRequest) (map[string]string, error) {
	resolved := make(map[string]string)
	for _, scene := range req.Scenes {
		ref := sceneSourceRef(scene, req)
		if _, ok := resolved[ref]; ok {
			continue
		}
		path, err := s.ResolveMediaRef(ctx, ref)
		if err != nil {
			return nil, err
		}
		resolved[ref] = path
	}
	return resolved, nil
}

func sceneSourceRef(scene types.SelectedScene, req *types.AssemblyRequest) string {
	if scene.SourceRef != "" {
		return scene.SourceRef
	}
	return req.BaseVideoRef
}

// extractScenes cuts every selected scene in parallel, bounded by the
// configured worker count. Clip order always follows request order.
func (s Service) extractScenes(ctx context.Context, req *types.AssemblyRequest, run *cutdownRun, sourcePaths map[string]string) ([]string, error) {
	clipPaths := make([]string, len(req.Scenes))

	group, groupCtx := errgroup.WithContext(ctx)
	workers := config.Conf.Pipeline.ExtractWorkers
	if workers < 1 {
		workers = 1
	}
	group.SetLimit(workers)

	for i, scene := range req.Scenes {
		group.Go(func() error {
			sourcePath := sourcePaths[sceneSourceRef(scene, req)]
			clipPath := filepath.Join(run.tempDir, fmt.Sprintf("clip_%03d.mp4", i))
			if _, err := s.extractClip(groupCtx, sourcePath, clipPath, scene.StartSeconds, scene.EndSeconds); err != nil {
				return err
			}
			clipPaths[i] = clipPath
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return clipPaths, nil
}

func (s Service) attachAudio(ctx context.Context, audioRef, videoPath, outputPath string) error {
	audioPath, err := s.ResolveMediaRef(ctx, audioRef)
	if err != nil {
		return err
	}
	return s.mergeAudio(ctx, videoPath, audioPath, outputPath)
}

// moveFile renames src into place, falling back to a streamed copy when the
// two paths sit on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
