package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"gencut/internal/storage"
	"gencut/log"
	apperrors "gencut/pkg/errors"
)

// SeparationResult holds the demuxed halves of a source video. AudioPath is
// empty when the source carries no audio stream.
type SeparationResult struct {
	VideoPath string `json:"video_path"`
	VideoURL  string `json:"video_url"`
	AudioPath string `json:"audio_path,omitempty"`
	AudioURL  string `json:"audio_url,omitempty"`
	HasAudio  bool   `json:"has_audio"`
}

// SeparateVideo splits a source into a silent video track and an mp3 audio
// track under the separated dir. A source without audio yields only the
// video half.
func (s Service) SeparateVideo(ctx context.Context, videoPath string) (*SeparationResult, error) {
	probe, err := s.ProbeMedia(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(s.dirs.SeparatedDir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSeparationFailed, "Separated directory creation failed", err)
	}

	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	videoOut := filepath.Join(s.dirs.SeparatedDir, base+"_video.mp4")
	audioOut := filepath.Join(s.dirs.SeparatedDir, base+"_audio.mp3")

	output, err := runCommand(ctx, storage.FfmpegPath,
		"-i", videoPath,
		"-c:v", "copy",
		"-an",
		"-y",
		videoOut,
	)
	if err != nil {
		log.GetLogger().Error("video track separation failed",
			zap.String("videoPath", videoPath),
			zap.String("output", string(output)),
			zap.Error(err))
		return nil, apperrors.WrapWithDetail(apperrors.CodeSeparationFailed, "Video track separation failed", string(output), err)
	}

	result := &SeparationResult{
		VideoPath: videoOut,
		VideoURL:  s.dirs.PublicURL(videoOut),
		HasAudio:  probe.HasAudioStream,
	}

	if !probe.HasAudioStream {
		log.GetLogger().Info("source has no audio stream, skipping audio half", zap.String("videoPath", videoPath))
		return result, nil
	}

	output, err = runCommand(ctx, storage.FfmpegPath,
		"-i", videoPath,
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", "192k",
		"-y",
		audioOut,
	)
	if err != nil {
		log.GetLogger().Error("audio track separation failed",
			zap.String("videoPath", videoPath),
			zap.String("output", string(output)),
			zap.Error(err))
		return nil, apperrors.WrapWithDetail(apperrors.CodeSeparationFailed, "Audio track separation failed", string(output), err)
	}

	result.AudioPath = audioOut
	result.AudioURL = s.dirs.PublicURL(audioOut)
	return result, nil
}
