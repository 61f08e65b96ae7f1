package llm

import (
	"context"
	"fmt"
	"strings"

	"llm_relay/backend/go/internal/models"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic implements LLM on top of the Messages API.
type Anthropic struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic builds a client. baseURL may be empty. The SDK's built-in
// retries are disabled; every question is sent exactly once.
func NewAnthropic(model, apiKey, baseURL string, maxTokens int64) (*Anthropic, error) {
	opts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(apiKey),
		anthropicopt.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, anthropicopt.WithBaseURL(baseURL))
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	cl := anthropic.NewClient(opts...)
	return &Anthropic{client: &cl, model: model, maxTokens: maxTokens}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

// GenerateContent performs a single-turn completion and concatenates the text blocks.
func (a *Anthropic) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(promptText(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return &models.GenerateContentResponse{
		Content: []models.Content{{
			Parts: []*models.Part{{Text: b.String()}},
			Role:  models.SpeakerModel,
		}},
		ResponseID:   msg.ID,
		ModelVersion: string(msg.Model),
	}, nil
}
