package types

import "context"

// Transcriber converts a local audio file into timed text. Implemented by the
// speech-to-text collaborator client.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, language string) (*Transcript, error)
}

// VisualAnalyzer captions and classifies a single image. Implemented by the
// visual analysis collaborator client.
type VisualAnalyzer interface {
	AnalyzeImage(ctx context.Context, imagePath string) (*VisualAnalysis, error)
}

// Ttser synthesizes speech for a voice and returns raw audio bytes.
type Ttser interface {
	GenerateAudio(ctx context.Context, voiceId, text string) ([]byte, error)
}

// Notifier delivers best-effort workflow events. Implementations must never
// block the pipeline; failures are logged and dropped.
type Notifier interface {
	NotifyJob(ctx context.Context, payload map[string]any) error
}
