package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"gencut/log"
	apperrors "gencut/pkg/errors"
	"gencut/pkg/util"
)

// GenerateSpeech synthesizes speech for the given text and stores the audio
// in the upload dir, where a later cutdown request can reference it.
func (s Service) GenerateSpeech(ctx context.Context, voiceId, text string) (string, string, error) {
	if text == "" {
		return "", "", apperrors.New(apperrors.CodeInvalidInput, "Text is empty")
	}

	audio, err := s.TtsClient.GenerateAudio(ctx, voiceId, text)
	if err != nil {
		return "", "", err
	}

	if err = os.MkdirAll(s.dirs.UploadDir, 0o755); err != nil {
		return "", "", apperrors.Wrap(apperrors.CodeFileWriteError, "Upload directory creation failed", err)
	}

	audioPath := filepath.Join(s.dirs.UploadDir, fmt.Sprintf("tts_%s.mp3", util.GenerateRandStringWithUpperLowerNum(12)))
	if err = os.WriteFile(audioPath, audio, 0o644); err != nil {
		return "", "", apperrors.Wrap(apperrors.CodeFileWriteError, "Audio file write failed", err)
	}

	log.GetLogger().Info("speech generated", zap.String("audioPath", audioPath), zap.Int("bytes", len(audio)))
	return audioPath, s.dirs.PublicURL(audioPath), nil
}
