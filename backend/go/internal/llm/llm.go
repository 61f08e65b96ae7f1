package llm

import (
	"context"
	"errors"
	"fmt"

	"llm_relay/backend/go/internal/config"
	"llm_relay/backend/go/internal/models"
)

// ErrEmptyResponse 表示提供商返回了成功状态，但没有任何可用的文本。
var ErrEmptyResponse = errors.New("provider returned no text")

// LLM 定义了所有大型语言模型客户端必须实现的通用接口。
// 每次调用都是一次独立的往返，客户端之间不保存会话历史。
type LLM interface {
	GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error)
	// Name 返回提供商名称，用于日志与错误信息。
	Name() string
}

// NewClient 是一个工厂函数，根据提供的配置创建并返回一个实现了 LLM 接口的客户端。
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg.Gemini.Model, cfg.Gemini.APIKey)
	case "openai":
		return NewOpenAI(cfg.OpenAI.Model, cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	case "anthropic":
		return NewAnthropic(cfg.Anthropic.Model, cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL, cfg.Anthropic.MaxTokens)
	case "ollama":
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// Generate 发送单条文本提示并返回回答文本，是 GenerateContent 的便捷封装。
func Generate(ctx context.Context, client LLM, prompt string) (string, error) {
	resp, err := client.GenerateContent(ctx, models.NewTextRequest(prompt))
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// promptText 将请求中的全部文本部分按顺序拼接。
func promptText(req *models.GenerateContentRequest) string {
	var text string
	for _, c := range req.Content {
		for _, p := range c.Parts {
			if p != nil {
				text += p.Text
			}
		}
	}
	return text
}
