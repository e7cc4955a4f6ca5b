package whisper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"gencut/internal/types"
	"gencut/log"
	apperrors "gencut/pkg/errors"
)

// Client talks to a whisper-asr-webservice instance. Implements
// types.Transcriber.
type Client struct {
	client *resty.Client
}

func NewClient(baseUrl string) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(baseUrl).
			SetTimeout(10 * time.Minute),
	}
}

func (c *Client) Transcribe(ctx context.Context, audioPath string, language string) (*types.Transcript, error) {
	log.GetLogger().Info("whisper transcribe start", zap.String("audioPath", audioPath), zap.String("language", language))

	var transcript types.Transcript
	req := c.client.R().
		SetContext(ctx).
		SetFile("audio_file", audioPath).
		SetQueryParam("task", "transcribe").
		SetQueryParam("output", "json").
		SetResult(&transcript)
	if language != "" {
		req.SetQueryParam("language", language)
	}

	resp, err := req.Post("/asr")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTranscribeFailed, "Transcription request failed", err)
	}
	if resp.IsError() {
		return nil, apperrors.WrapWithDetail(apperrors.CodeTranscribeFailed, "Transcription request failed",
			fmt.Sprintf("status %d: %s", resp.StatusCode(), resp.String()), nil)
	}

	log.GetLogger().Info("whisper transcribe done",
		zap.String("language", transcript.Language),
		zap.Int("segments", len(transcript.Segments)))
	return &transcript, nil
}
