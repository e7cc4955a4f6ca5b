package service

import (
	"context"
	"os"

	"go.uber.org/zap"

	"gencut/internal/storage"
	"gencut/log"
	apperrors "gencut/pkg/errors"
	"gencut/pkg/util"
)

// extractClip re-encodes the [startSec, endSec) range of sourcePath into
// outputPath. The start must lie inside the source; an end past the source
// duration is clamped. Returns the effective end after clamping.
func (s Service) extractClip(ctx context.Context, sourcePath, outputPath string, startSec, endSec float64) (float64, error) {
	if endSec <= startSec {
		return 0, apperrors.ErrInvalidRange
	}

	probe, err := s.ProbeMedia(ctx, sourcePath)
	if err != nil {
		return 0, err
	}
	if startSec >= probe.DurationSeconds {
		return 0, apperrors.WrapWithDetail(apperrors.CodeInvalidRange, "Scene start is past the end of the source",
			util.FormatTimecode(startSec)+" >= "+util.FormatTimecode(probe.DurationSeconds), nil)
	}
	if endSec > probe.DurationSeconds {
		log.GetLogger().Warn("scene end clamped to source duration",
			zap.String("sourcePath", sourcePath),
			zap.Float64("requestedEnd", endSec),
			zap.Float64("duration", probe.DurationSeconds))
		endSec = probe.DurationSeconds
	}

	output, err := runCommand(ctx, storage.FfmpegPath,
		"-ss", util.FormatSeconds(startSec),
		"-to", util.FormatSeconds(endSec),
		"-i", sourcePath,
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-crf", "23",
		"-c:a", "aac",
		"-y",
		outputPath,
	)
	if err != nil {
		log.GetLogger().Error("clip extraction failed",
			zap.String("sourcePath", sourcePath),
			zap.String("outputPath", outputPath),
			zap.String("output", string(output)),
			zap.Error(err))
		return 0, apperrors.WrapWithDetail(apperrors.CodeExtractionFailed, "Scene extraction failed", string(output), err)
	}

	// ffmpeg can exit zero and still write nothing usable.
	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		return 0, apperrors.WrapWithDetail(apperrors.CodeExtractionFailed, "Scene extraction produced no output", outputPath, err)
	}

	return endSec, nil
}
