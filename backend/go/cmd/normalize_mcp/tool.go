package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"llm_relay/backend/go/internal/qa_service/normalizer"
	"llm_relay/backend/go/pkg/logger"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const toolName = "normalize_upload"

// newMCPServer registers the normalize_upload tool backed by norm.
func newMCPServer(norm *normalizer.Normalizer, log *logger.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"Normalizer",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	tool := mcp.NewTool(toolName,
		mcp.WithDescription(fmt.Sprintf(
			"Convert a document into bounded plain text suitable for a prompt. Supported formats: %s",
			strings.Join(norm.Allowed(), ", "))),
		mcp.WithString("input",
			mcp.Required(),
			mcp.Description("Path to the file to normalize; the extension selects the parser"),
		),
		mcp.WithNumber("max_chars",
			mcp.Description("Maximum number of characters to return (defaults to the server setting)"),
		),
	)
	s.AddTool(tool, normalizeHandler(norm, log))
	return s
}

func normalizeHandler(norm *normalizer.Normalizer, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := request.RequireString("input")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := os.ReadFile(input)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to read file: %v", err)), nil
		}

		res, err := norm.Normalize(normalizer.Upload{Filename: input, Data: data})
		if err != nil {
			log.WithPayload(map[string]interface{}{"input": input}).Warn(err.Error())
			return mcp.NewToolResultError(err.Error()), nil
		}

		text := res.Text
		if limit := request.GetInt("max_chars", 0); limit > 0 {
			text, _ = normalizer.Truncate(text, limit)
		}
		log.WithPayload(map[string]interface{}{
			"input":     input,
			"extension": res.Extension,
			"truncated": res.Truncated,
		}).Info("document normalized")
		return mcp.NewToolResultText(text), nil
	}
}
