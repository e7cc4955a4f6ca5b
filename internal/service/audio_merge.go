package service

import (
	"context"
	"os"

	"go.uber.org/zap"

	"gencut/internal/storage"
	"gencut/log"
	apperrors "gencut/pkg/errors"
)

// mergeAudio muxes the first audio stream of audioPath onto the video stream
// of videoPath. Video is stream-copied, audio re-encoded to aac, and the
// result ends at the shorter of the two inputs.
func (s Service) mergeAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	output, err := runCommand(ctx, storage.FfmpegPath,
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		"-y",
		outputPath,
	)
	if err != nil {
		log.GetLogger().Error("audio merge failed",
			zap.String("videoPath", videoPath),
			zap.String("audioPath", audioPath),
			zap.String("output", string(output)),
			zap.Error(err))
		return apperrors.WrapWithDetail(apperrors.CodeAudioMergeFailed, "Audio merge failed", string(output), err)
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		return apperrors.WrapWithDetail(apperrors.CodeAudioMergeFailed, "Audio merge produced no output", outputPath, err)
	}
	return nil
}
