// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gencut/internal/types"
)

// MockTranscriber is a mock implementation of types.Transcriber
type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audioPath string, language string) (*types.Transcript, error) {
	args := m.Called(ctx, audioPath, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Transcript), args.Error(1)
}

// MockVisualAnalyzer is a mock implementation of types.VisualAnalyzer
type MockVisualAnalyzer struct {
	mock.Mock
}

func (m *MockVisualAnalyzer) AnalyzeImage(ctx context.Context, imagePath string) (*types.VisualAnalysis, error) {
	args := m.Called(ctx, imagePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.VisualAnalysis), args.Error(1)
}

// MockTtser is a mock implementation of types.Ttser
type MockTtser struct {
	mock.Mock
}

func (m *MockTtser) GenerateAudio(ctx context.Context, voiceId, text string) ([]byte, error) {
	args := m.Called(ctx, voiceId, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockNotifier is a mock implementation of types.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyJob(ctx context.Context, payload map[string]any) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
