package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"gencut/config"
	"gencut/internal/storage"
	"gencut/internal/types"
	"gencut/log"
	apperrors "gencut/pkg/errors"
	"gencut/pkg/util"
)

// DetectOptions carries per-call overrides for scene detection sensitivity.
// Nil fields fall back to the configured defaults.
type DetectOptions struct {
	Threshold   *float64
	MinSceneLen *int
}

// DetectScenes splits a video into contiguous scene intervals and captures a
// representative screenshot at each interval's temporal midpoint.
func (s Service) DetectScenes(ctx context.Context, videoPath string, opts DetectOptions) ([]types.SceneInterval, error) {
	threshold := config.Conf.Scene.Threshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	minSceneLen := config.Conf.Scene.MinSceneLen
	if opts.MinSceneLen != nil {
		minSceneLen = *opts.MinSceneLen
	}

	probe, err := s.ProbeMedia(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	if probe.FrameRate <= 0 {
		return nil, apperrors.ErrZeroFrameRate
	}
	if probe.Width <= 0 || probe.Height <= 0 {
		return nil, apperrors.New(apperrors.CodeDecodeFailed, "Video has no decodable picture")
	}

	workWidth := config.Conf.Scene.WorkWidth
	workHeight := probe.Height * workWidth / probe.Width
	if workHeight < 2 {
		workHeight = 2
	}

	log.GetLogger().Info("scene detection start",
		zap.String("videoPath", videoPath),
		zap.Float64("threshold", threshold),
		zap.Int("minSceneLen", minSceneLen),
		zap.Float64("fps", probe.FrameRate))

	var cuts []int
	var totalFrames int
	err = runCommandStream(ctx, func(r io.Reader) error {
		var handlerErr error
		cuts, totalFrames, handlerErr = sceneBoundaries(r, workWidth, workHeight, threshold, minSceneLen)
		return handlerErr
	}, storage.FfmpegPath,
		"-i", videoPath,
		"-vf", fmt.Sprintf("scale=%d:%d", workWidth, workHeight),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-v", "error",
		"pipe:1",
	)
	if err != nil {
		log.GetLogger().Error("scene decode failed", zap.String("videoPath", videoPath), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeDecodeFailed, "Video decode failed", err)
	}
	if totalFrames == 0 {
		return nil, apperrors.New(apperrors.CodeDecodeFailed, "Video produced no frames")
	}

	intervals := buildIntervals(cuts, totalFrames, probe.FrameRate)

	if err = s.captureScreenshots(ctx, videoPath, probe.FrameRate, intervals); err != nil {
		return nil, err
	}

	log.GetLogger().Info("scene detection done",
		zap.String("videoPath", videoPath),
		zap.Int("scenes", len(intervals)),
		zap.Int("frames", totalFrames))
	return intervals, nil
}

// sceneBoundaries scans raw rgb24 frames and returns the frame indices where
// a new scene starts, plus the total frame count. A boundary is declared when
// the mean absolute pixel difference against the previous frame reaches
// threshold, and never closer than minLen frames to the previous boundary.
func sceneBoundaries(r io.Reader, width, height int, threshold float64, minLen int) ([]int, int, error) {
	frameSize := width * height * 3
	prev := make([]byte, frameSize)
	curr := make([]byte, frameSize)

	var cuts []int
	frameIndex := 0
	lastCut := 0

	for {
		_, err := io.ReadFull(r, curr)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			// Trailing partial frame, ignore.
			break
		}
		if err != nil {
			return nil, 0, err
		}

		if frameIndex > 0 {
			diff := meanAbsDiff(prev, curr)
			if diff >= threshold && frameIndex-lastCut >= minLen {
				cuts = append(cuts, frameIndex)
				lastCut = frameIndex
			}
		}
		prev, curr = curr, prev
		frameIndex++
	}

	return cuts, frameIndex, nil
}

func meanAbsDiff(a, b []byte) float64 {
	var sum int64
	for i := range a {
		d := int64(a[i]) - int64(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return float64(sum) / float64(len(a))
}

// buildIntervals converts boundary frame indices into contiguous,
// non-overlapping intervals covering [0, totalFrames).
func buildIntervals(cuts []int, totalFrames int, fps float64) []types.SceneInterval {
	starts := append([]int{0}, cuts...)
	intervals := make([]types.SceneInterval, 0, len(starts))

	for i, startFrame := range starts {
		endFrame := totalFrames
		if i+1 < len(starts) {
			endFrame = starts[i+1]
		}
		startSec := float64(startFrame) / fps
		endSec := float64(endFrame) / fps
		intervals = append(intervals, types.SceneInterval{
			Index:         i + 1,
			StartSeconds:  startSec,
			EndSeconds:    endSec,
			StartTimecode: util.FormatTimecode(startSec),
			EndTimecode:   util.FormatTimecode(endSec),
			StartFrame:    startFrame,
			EndFrame:      endFrame,
		})
	}
	return intervals
}

// captureScreenshots writes one midpoint frame per interval under the
// screenshot dir and fills in each interval's Screenshots slice.
func (s Service) captureScreenshots(ctx context.Context, videoPath string, fps float64, intervals []types.SceneInterval) error {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	outputDir := filepath.Join(s.dirs.ScreenshotDir, base)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeScreenshotSave, "Screenshot directory creation failed", err)
	}

	scale := fmt.Sprintf("scale=%d:-2", config.Conf.Scene.ScreenshotWidth)
	for i := range intervals {
		interval := &intervals[i]
		midFrame := (interval.StartFrame + interval.EndFrame) / 2
		midSec := float64(midFrame) / fps
		// Named from video and scene index only, so a re-run with different
		// tuning overwrites instead of accumulating stale captures.
		imagePath := filepath.Join(outputDir, fmt.Sprintf("scene_%03d_frame_000.jpg", interval.Index))

		output, err := runCommand(ctx, storage.FfmpegPath,
			"-ss", util.FormatSeconds(midSec),
			"-i", videoPath,
			"-frames:v", "1",
			"-vf", scale,
			"-q:v", "4",
			"-y",
			imagePath,
		)
		if err != nil {
			log.GetLogger().Error("screenshot capture failed",
				zap.String("imagePath", imagePath),
				zap.String("output", string(output)),
				zap.Error(err))
			return apperrors.WrapWithDetail(apperrors.CodeScreenshotSave, "Screenshot capture failed", string(output), err)
		}

		interval.Screenshots = []types.SceneScreenshot{{
			SceneIndex:  interval.Index,
			FrameNumber: midFrame,
			Timestamp:   midSec,
			Timecode:    util.FormatTimecode(midSec),
			ImagePath:   imagePath,
			URL:         s.dirs.PublicURL(imagePath),
		}}
	}
	return nil
}
