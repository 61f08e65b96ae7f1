package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"llm_relay/backend/go/internal/qa_service/normalizer"
	"llm_relay/backend/go/pkg/logger"

	"github.com/mark3labs/mcp-go/mcp"
)

func callTool(t *testing.T, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	logger.InitWithOutput("error", &bytes.Buffer{})
	handler := normalizeHandler(normalizer.New(), logger.New("NormalizeMCP", ""))

	req := mcp.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned protocol error: %v", err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content %T", res.Content[0])
	}
	return tc.Text
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNormalizeTool(t *testing.T) {
	res := callTool(t, map[string]any{"input": writeFile(t, "data.csv", "a,b\n1,2")})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if got := resultText(t, res); !strings.Contains(got, "| a | b |") {
		t.Errorf("text = %q", got)
	}
}

func TestNormalizeToolMaxChars(t *testing.T) {
	res := callTool(t, map[string]any{"input": writeFile(t, "notes.txt", "hello world"), "max_chars": 5})
	if got := resultText(t, res); got != "hello" {
		t.Errorf("text = %q", got)
	}
}

func TestNormalizeToolErrors(t *testing.T) {
	cases := map[string]map[string]any{
		"missing input": {},
		"missing file":  {"input": filepath.Join(t.TempDir(), "nope.txt")},
		"unsupported":   {"input": writeFile(t, "x.bin", "data")},
	}
	for name, args := range cases {
		if res := callTool(t, args); !res.IsError {
			t.Errorf("%s: expected tool error, got %q", name, resultText(t, res))
		}
	}
}
