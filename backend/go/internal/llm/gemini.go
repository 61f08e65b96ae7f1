package llm

import (
	"context"
	"fmt"

	"llm_relay/backend/go/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini 是一个实现了 LLM 接口的结构体，用于与 Gemini API 交互。
type Gemini struct {
	client *genai.Client          // 底层 GenAI 客户端，Close 时释放。
	model  *genai.GenerativeModel // Gemini 生成模型实例。
}

// NewGemini 创建一个新的 Gemini 客户端。
//
// 参数:
//
//	ctx: 上下文，用于控制客户端的生命周期。
//	model: 要使用的 Gemini 模型名称。
//	apiKey: Gemini API 密钥。
//
// 返回值:
//
//	*Gemini: 新创建的 Gemini 客户端实例。
//	error: 如果无法创建 GenAI 客户端，则返回错误。
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

// Name 返回提供商名称。
func (g *Gemini) Name() string { return "gemini" }

// GenerateContent 向 Gemini API 发送单轮请求并返回响应。
// 每次调用都是独立的单轮请求，不携带会话历史。
func (g *Gemini) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	resp, err := g.model.GenerateContent(ctx, toGenaiParts(req.Content)...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	return fromGenaiResponse(resp), nil
}

// Close 释放底层连接。
func (g *Gemini) Close() error {
	return g.client.Close()
}

// toGenaiParts 将内部 Content 结构体转换为 GenAI Part 切片。
func toGenaiParts(content []models.Content) []genai.Part {
	var parts []genai.Part
	for _, c := range content {
		for _, p := range c.Parts {
			switch {
			case p == nil:
			case p.Text != "":
				parts = append(parts, genai.Text(p.Text))
			case p.InlineData != nil:
				parts = append(parts, genai.Blob{
					MIMEType: p.InlineData.MIMEType,
					Data:     p.InlineData.Data,
				})
			}
		}
	}
	return parts
}

// fromGenaiResponse 将 GenAI GenerateContentResponse 转换为内部 GenerateContentResponse 结构体。
func fromGenaiResponse(resp *genai.GenerateContentResponse) *models.GenerateContentResponse {
	if resp == nil {
		return &models.GenerateContentResponse{}
	}
	var content []models.Content
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var parts []*models.Part
		for _, p := range cand.Content.Parts {
			switch v := p.(type) {
			case genai.Text:
				parts = append(parts, &models.Part{Text: string(v)})
			case genai.Blob:
				parts = append(parts, &models.Part{InlineData: &models.Blob{MIMEType: v.MIMEType, Data: v.Data}})
			}
			// 其余类型（函数调用、代码执行等）在纯问答场景下不会出现，直接忽略。
		}
		content = append(content, models.Content{Parts: parts, Role: models.SpeakerModel})
	}
	return &models.GenerateContentResponse{Content: content}
}
