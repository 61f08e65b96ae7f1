package llm

import (
	"context"

	"llm_relay/backend/go/internal/models"
	"llm_relay/backend/go/pkg/circuitbreaker"
)

// guarded 在调用提供商前经过熔断器；熔断打开时直接返回 circuitbreaker.ErrCircuitOpen，
// 不会向提供商发出请求。失败的调用不会被重试。
type guarded struct {
	inner   LLM
	breaker circuitbreaker.CircuitBreaker
}

// WithCircuitBreaker 用熔断器包装一个 LLM 客户端。
func WithCircuitBreaker(inner LLM, breaker circuitbreaker.CircuitBreaker) LLM {
	return &guarded{inner: inner, breaker: breaker}
}

func (g *guarded) Name() string { return g.inner.Name() }

func (g *guarded) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	// 调用方取消或超时不代表提供商故障，不计入熔断失败次数。
	var abandoned error
	res, err := g.breaker.Execute(func() (any, error) {
		resp, err := g.inner.GenerateContent(ctx, req)
		if err != nil && ctx.Err() != nil {
			abandoned = err
			return nil, nil
		}
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	if abandoned != nil {
		return nil, abandoned
	}
	return res.(*models.GenerateContentResponse), nil
}

// Close 关闭被包装的客户端（如果它持有连接）。
func (g *guarded) Close() error {
	if c, ok := g.inner.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
