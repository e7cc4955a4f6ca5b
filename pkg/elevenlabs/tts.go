package elevenlabs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"gencut/log"
	apperrors "gencut/pkg/errors"
)

const defaultModelId = "eleven_multilingual_v2"

// Client wraps the ElevenLabs text-to-speech API. Implements types.Ttser.
type Client struct {
	client  *resty.Client
	modelId string
}

func NewClient(baseUrl, apiKey, modelId string) *Client {
	if modelId == "" {
		modelId = defaultModelId
	}
	return &Client{
		client: resty.New().
			SetBaseURL(baseUrl).
			SetHeader("xi-api-key", apiKey).
			SetTimeout(3 * time.Minute),
		modelId: modelId,
	}
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelId       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (c *Client) GenerateAudio(ctx context.Context, voiceId, text string) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "audio/mpeg").
		SetBody(ttsRequest{
			Text:    text,
			ModelId: c.modelId,
			VoiceSettings: voiceSettings{
				Stability:       0.5,
				SimilarityBoost: 0.75,
			},
		}).
		Post(fmt.Sprintf("/text-to-speech/%s", voiceId))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTTSFailed, "Speech synthesis request failed", err)
	}
	if resp.IsError() {
		return nil, apperrors.WrapWithDetail(apperrors.CodeTTSFailed, "Speech synthesis request failed",
			fmt.Sprintf("status %d: %s", resp.StatusCode(), resp.String()), nil)
	}

	audio := resp.Body()
	if len(audio) == 0 {
		return nil, apperrors.New(apperrors.CodeTTSFailed, "Speech synthesis returned empty audio")
	}

	log.GetLogger().Info("tts generated", zap.String("voiceId", voiceId), zap.Int("bytes", len(audio)))
	return audio, nil
}
