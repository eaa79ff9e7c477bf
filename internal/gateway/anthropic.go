package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicBackend implements Backend on the Anthropic Messages API.
type AnthropicBackend struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// NewAnthropicBackend creates a backend for the given model. The API key is
// read from the environment by the SDK (ANTHROPIC_API_KEY). timeout bounds
// each individual request.
func NewAnthropicBackend(model string, timeout time.Duration) *AnthropicBackend {
	return &AnthropicBackend{
		client:  anthropic.NewClient(),
		model:   model,
		timeout: timeout,
	}
}

// Complete sends one message and returns the concatenated text content.
func (b *AnthropicBackend) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   req.MaxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	message, err := b.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", errors.New("anthropic response carried no text content")
	}
	return text, nil
}
