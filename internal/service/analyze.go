package service

import (
	"context"

	"go.uber.org/zap"

	"gencut/internal/types"
	"gencut/log"
	apperrors "gencut/pkg/errors"
)

// AnalyzeVideo resolves a local media reference and returns its scene
// intervals. Remote URLs are rejected; analysis only runs against files
// already on shared storage.
func (s Service) AnalyzeVideo(ctx context.Context, fileRef string, opts DetectOptions) ([]types.SceneInterval, error) {
	if isRemoteRef(fileRef) {
		return nil, apperrors.WrapWithDetail(apperrors.CodeInvalidInput, "Analysis requires an uploaded file, not a URL", fileRef, nil)
	}

	videoPath, err := s.ResolveMediaRef(ctx, fileRef)
	if err != nil {
		return nil, err
	}
	return s.DetectScenes(ctx, videoPath, opts)
}

// DescribeScene runs the visual analysis collaborator against a scene's
// representative screenshot.
func (s Service) DescribeScene(ctx context.Context, interval types.SceneInterval) (*types.VisualAnalysis, error) {
	if len(interval.Screenshots) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "Scene has no screenshot to analyze")
	}
	analysis, err := s.VisualAnalyzer.AnalyzeImage(ctx, interval.Screenshots[0].ImagePath)
	if err != nil {
		log.GetLogger().Error("scene description failed", zap.Int("scene", interval.Index), zap.Error(err))
		return nil, err
	}
	return analysis, nil
}

// TranscribeMedia resolves a media reference and hands it to the
// transcription collaborator.
func (s Service) TranscribeMedia(ctx context.Context, fileRef, language string) (*types.Transcript, error) {
	audioPath, err := s.ResolveMediaRef(ctx, fileRef)
	if err != nil {
		return nil, err
	}
	return s.Transcriber.Transcribe(ctx, audioPath, language)
}
