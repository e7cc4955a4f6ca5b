package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gencut/internal/mocks"
	"gencut/internal/types"
	apperrors "gencut/pkg/errors"
)

func TestAnalyzeVideoRejectsRemoteURL(t *testing.T) {
	svc := Service{dirs: testDirs(t)}

	_, err := svc.AnalyzeVideo(context.Background(), "https://example.com/a.mp4", DetectOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}

func TestDescribeSceneUsesMidframeScreenshot(t *testing.T) {
	analyzer := &mocks.MockVisualAnalyzer{}
	analyzer.On("AnalyzeImage", context.Background(), "/data/screenshots/a/scene_001_frame_000.jpg").
		Return(&types.VisualAnalysis{Description: "a dog on a beach", Category: "outdoor"}, nil)

	svc := Service{VisualAnalyzer: analyzer}
	interval := types.SceneInterval{
		Index: 1,
		Screenshots: []types.SceneScreenshot{
			{SceneIndex: 1, FrameNumber: 5, ImagePath: "/data/screenshots/a/scene_001_frame_000.jpg"},
		},
	}

	analysis, err := svc.DescribeScene(context.Background(), interval)
	require.NoError(t, err)
	assert.Equal(t, "a dog on a beach", analysis.Description)
	analyzer.AssertExpectations(t)
}

func TestDescribeSceneWithoutScreenshotFails(t *testing.T) {
	svc := Service{}

	_, err := svc.DescribeScene(context.Background(), types.SceneInterval{Index: 2})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}
