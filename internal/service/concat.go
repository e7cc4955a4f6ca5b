package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"gencut/internal/storage"
	"gencut/log"
	apperrors "gencut/pkg/errors"
)

// concatClips joins already-encoded clips in order into outputPath using the
// concat demuxer. Video is stream-copied; audio is dropped so a later merge
// step decides the soundtrack. manifestPath is written as a side effect and
// owned by the caller's cleanup.
func (s Service) concatClips(ctx context.Context, clipPaths []string, manifestPath, outputPath string) error {
	if len(clipPaths) == 0 {
		return apperrors.New(apperrors.CodeConcatenationFailed, "No clips to concatenate")
	}

	var manifest strings.Builder
	for _, clipPath := range clipPaths {
		manifest.WriteString(fmt.Sprintf("file '%s'\n", clipPath))
	}
	if err := os.WriteFile(manifestPath, []byte(manifest.String()), 0o644); err != nil {
		return apperrors.Wrap(apperrors.CodeConcatenationFailed, "Concat manifest write failed", err)
	}

	output, err := runCommand(ctx, storage.FfmpegPath,
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c:v", "copy",
		"-an",
		"-y",
		outputPath,
	)
	if err != nil {
		log.GetLogger().Error("concatenation failed",
			zap.String("outputPath", outputPath),
			zap.Int("clips", len(clipPaths)),
			zap.String("output", string(output)),
			zap.Error(err))
		return apperrors.WrapWithDetail(apperrors.CodeConcatenationFailed, "Clip concatenation failed", string(output), err)
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		return apperrors.WrapWithDetail(apperrors.CodeConcatenationFailed, "Concatenation produced no output", outputPath, err)
	}
	return nil
}
