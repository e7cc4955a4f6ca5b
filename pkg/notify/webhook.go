package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookClient posts workflow events to an n8n-style webhook. Implements
// types.Notifier. Callers treat delivery as best effort.
type WebhookClient struct {
	client     *resty.Client
	webhookUrl string
}

func NewWebhookClient(webhookUrl string) *WebhookClient {
	return &WebhookClient{
		client:     resty.New().SetTimeout(15 * time.Second),
		webhookUrl: webhookUrl,
	}
}

func (c *WebhookClient) NotifyJob(ctx context.Context, payload map[string]any) error {
	if c.webhookUrl == "" {
		return nil
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.webhookUrl)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}
