package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"llm_relay/backend/go/internal/config"
	"llm_relay/backend/go/internal/models"
	"llm_relay/backend/go/pkg/circuitbreaker"

	"github.com/google/generative-ai-go/genai"
)

func TestOpenAIGenerateContent(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"4"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	client, err := NewOpenAI("gpt-4o-mini", "test-key", srv.URL+"/v1")
	if err != nil {
		t.Fatal(err)
	}
	answer, err := Generate(context.Background(), client, "2+2?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if answer != "4" {
		t.Errorf("answer = %q", answer)
	}
	if gotBody["model"] != "gpt-4o-mini" {
		t.Errorf("model sent = %v", gotBody["model"])
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("messages = %v", gotBody["messages"])
	}
	if m := msgs[0].(map[string]any); m["content"] != "2+2?" || m["role"] != "user" {
		t.Errorf("message = %v", m)
	}
}

func TestOpenAIErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"message":"quota exceeded","type":"server_error"}}`)
	}))
	defer srv.Close()

	client, _ := NewOpenAI("gpt-4o-mini", "k", srv.URL+"/v1")
	_, err := client.GenerateContent(context.Background(), models.NewTextRequest("hi"))
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected provider message in error, got %v", err)
	}
}

func TestAnthropicGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "ant-key" {
			t.Errorf("missing api key header")
		}
		var req struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.MaxTokens != 256 || len(req.Messages) != 1 || req.Messages[0].Content[0].Text != "2+2?" {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
			"content":[{"type":"text","text":"Four"},{"type":"text","text":"."}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`)
	}))
	defer srv.Close()

	client, err := NewAnthropic("claude-test", "ant-key", srv.URL, 256)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.GenerateContent(context.Background(), models.NewTextRequest("2+2?"))
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	if resp.Text() != "Four." || resp.ResponseID != "msg_1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestAnthropicSendsOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"overloaded"}}`)
	}))
	defer srv.Close()

	client, _ := NewAnthropic("claude-test", "k", srv.URL, 0)
	if _, err := client.GenerateContent(context.Background(), models.NewTextRequest("hi")); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("provider called %d times, want exactly 1", calls)
	}
}

func TestOllamaGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream *bool  `json:"stream"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Prompt != "2+2?" || req.Stream == nil || *req.Stream {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		io.WriteString(w, `{"model":"llama3","response":"4","done":true}`+"\n")
	}))
	defer srv.Close()

	client, err := NewOllama("llama3", srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	answer, err := Generate(context.Background(), client, "2+2?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if answer != "4" {
		t.Errorf("answer = %q", answer)
	}
}

func TestFromGenaiResponse(t *testing.T) {
	resp := fromGenaiResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []genai.Part{genai.Text("Hello "), genai.Text("there")}}},
			{Content: nil},
		},
	})
	if resp.Text() != "Hello there" {
		t.Errorf("Text() = %q", resp.Text())
	}
	if got := fromGenaiResponse(nil); got.Text() != "" {
		t.Errorf("nil response should be empty, got %q", got.Text())
	}
}

func TestToGenaiParts(t *testing.T) {
	parts := toGenaiParts([]models.Content{{Parts: []*models.Part{
		{Text: "question"},
		nil,
		{InlineData: &models.Blob{MIMEType: "image/png", Data: []byte{1}}},
	}}})
	if len(parts) != 2 {
		t.Fatalf("len(parts) = %d", len(parts))
	}
	if parts[0] != genai.Text("question") {
		t.Errorf("parts[0] = %#v", parts[0])
	}
	if _, ok := parts[1].(genai.Blob); !ok {
		t.Errorf("parts[1] = %#v", parts[1])
	}
}

// stubLLM is a scripted provider used by the wrapper tests.
type stubLLM struct {
	calls int
	err   error
	text  string
}

func (s *stubLLM) Name() string { return "stub" }

func (s *stubLLM) GenerateContent(_ context.Context, _ *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.GenerateContentResponse{Content: []models.Content{{Parts: []*models.Part{{Text: s.text}}}}}, nil
}

func TestGenerateEmptyResponse(t *testing.T) {
	_, err := Generate(context.Background(), &stubLLM{}, "hi")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestWithCircuitBreaker(t *testing.T) {
	stub := &stubLLM{err: errors.New("upstream down")}
	guardedLLM := WithCircuitBreaker(stub, circuitbreaker.New(2, 1, time.Minute))

	for i := 0; i < 2; i++ {
		if _, err := guardedLLM.GenerateContent(context.Background(), models.NewTextRequest("q")); err == nil {
			t.Fatal("expected upstream error")
		}
	}
	_, err := guardedLLM.GenerateContent(context.Background(), models.NewTextRequest("q"))
	if !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if stub.calls != 2 {
		t.Errorf("provider called %d times, want 2", stub.calls)
	}
	if guardedLLM.Name() != "stub" {
		t.Errorf("Name() = %q", guardedLLM.Name())
	}

	ok := WithCircuitBreaker(&stubLLM{text: "fine"}, circuitbreaker.New(1, 1, time.Minute))
	if answer, err := Generate(context.Background(), ok, "q"); err != nil || answer != "fine" {
		t.Errorf("answer=%q err=%v", answer, err)
	}
}

// ctxLLM fails with the context error, like an SDK whose request was aborted.
type ctxLLM struct{ calls int }

func (c *ctxLLM) Name() string { return "ctx" }

func (c *ctxLLM) GenerateContent(ctx context.Context, _ *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	c.calls++
	return nil, ctx.Err()
}

func TestWithCircuitBreakerIgnoresCanceledCalls(t *testing.T) {
	inner := &ctxLLM{}
	breaker := circuitbreaker.New(1, 1, time.Minute)
	guardedLLM := WithCircuitBreaker(inner, breaker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		_, err := guardedLLM.GenerateContent(ctx, models.NewTextRequest("q"))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("call %d: expected context.Canceled, got %v", i+1, err)
		}
	}
	if inner.calls != 3 {
		t.Errorf("provider called %d times, want 3", inner.calls)
	}
	if breaker.State() != circuitbreaker.Closed {
		t.Errorf("breaker state = %v, canceled calls must not trip it", breaker.State())
	}
}

type closingLLM struct {
	ctxLLM
	closeErr error
}

func (c *closingLLM) Close() error { return c.closeErr }

func TestWithCircuitBreakerForwardsClose(t *testing.T) {
	closeErr := errors.New("connection already closed")
	wrapped := WithCircuitBreaker(&closingLLM{closeErr: closeErr}, circuitbreaker.New(1, 1, time.Minute))
	closer, ok := wrapped.(interface{ Close() error })
	if !ok {
		t.Fatal("wrapped client should expose Close")
	}
	if err := closer.Close(); !errors.Is(err, closeErr) {
		t.Errorf("Close() = %v, want %v", err, closeErr)
	}

	plain := WithCircuitBreaker(&ctxLLM{}, circuitbreaker.New(1, 1, time.Minute)).(interface{ Close() error })
	if err := plain.Close(); err != nil {
		t.Errorf("Close() on a client without Close = %v", err)
	}
}

func TestNewClientRejectsUnknownProvider(t *testing.T) {
	if _, err := NewClient(context.Background(), config.LLMConfig{Provider: "cohere"}); err == nil {
		t.Error("expected error for unknown provider")
	}
	c, err := NewClient(context.Background(), config.LLMConfig{Provider: "ollama", Ollama: config.OllamaConfig{Model: "llama3"}})
	if err != nil || c.Name() != "ollama" {
		t.Errorf("ollama client: %v %v", c, err)
	}
}
