package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"llm_relay/backend/go/internal/models"

	olla "github.com/ollama/ollama/api"
)

// Ollama 是一个用于 Ollama API 的 LLM 客户端。
type Ollama struct {
	client *olla.Client // Ollama 客户端实例。
	model  string       // 要使用的模型名称。
}

// NewOllama 创建一个新的 Ollama 客户端。
//
// 参数:
//
//	model: 要使用的模型名称。
//	baseURL: Ollama 服务的基准 URL。如果为空，则默认为 "http://localhost:11434"。
//
// 返回值:
//
//	*Ollama: 新创建的 Ollama 客户端实例。
//	error: 如果基准 URL 无效，则返回错误。
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	// 不设置超时：请求的生命周期由调用方的 ctx 决定。
	client := olla.NewClient(parsedURL, &http.Client{})

	return &Ollama{client: client, model: model}, nil
}

// Name 返回提供商名称。
func (o *Ollama) Name() string { return "ollama" }

// GenerateContent 使用 Ollama API 以非流式方式生成内容。
func (o *Ollama) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	stream := false
	var result olla.GenerateResponse

	err := o.client.Generate(ctx, &olla.GenerateRequest{
		Model:  o.model,
		Prompt: promptText(req),
		Stream: &stream,
	}, func(resp olla.GenerateResponse) error {
		// 非流式模式下通常只回调一次。
		result.Model = resp.Model
		result.Response += resp.Response
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with ollama: %w", err)
	}

	return &models.GenerateContentResponse{
		Content: []models.Content{{
			Parts: []*models.Part{{Text: result.Response}},
			Role:  models.SpeakerModel,
		}},
		ModelVersion: result.Model,
	}, nil
}
