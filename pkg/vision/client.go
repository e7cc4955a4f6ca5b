package vision

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

// Client talks to the frame analysis collaborator. Implements
// types.VisualAnalyzer.
type Client struct {
	client *resty.Client
}

func NewClient(baseUrl string) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(baseUrl).
			SetTimeout(2 * time.Minute),
	}
}

func (c *Client) AnalyzeImage(ctx context.Context, imagePath string) (*types.VisualAnalysis, error) {
	var analysis types.VisualAnalysis
	resp, err := c.client.R().
		SetContext(ctx).
		SetFile("image", imagePath).
		SetResult(&analysis).
		Post("/analyze")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstreamUnavailable, "Visual analysis request failed", err)
	}
	if resp.IsError() {
		return nil, apperrors.WrapWithDetail(apperrors.CodeUpstreamUnavailable, "Visual analysis request failed",
			fmt.Sprintf("status %d: %s", resp.StatusCode(), resp.String()), nil)
	}

	log.GetLogger().Debug("visual analysis done",
		zap.String("imagePath", imagePath),
		zap.String("category", analysis.Category),
		zap.Int("objects", len(analysis.Objects)))
	return &analysis, nil
}
