package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"llm_relay/backend/go/internal/qa_service/normalizer"
	"llm_relay/backend/go/pkg/logger"

	"github.com/mark3labs/mcp-go/server"
)

// STDIO transport (default)
//go run ./backend/go/cmd/normalize_mcp
//
// SSE transport on port 8085
//go run ./backend/go/cmd/normalize_mcp -transport=sse -port=8085
//
// StreamableHTTP transport on port 9000
//go run ./backend/go/cmd/normalize_mcp -transport=httpstream -port=9000

func main() {
	transport := flag.String("transport", "stdio", "Transport method: stdio, sse, or httpstream")
	port := flag.String("port", "8085", "Port for HTTP-based transports (sse, httpstream)")
	maxChars := flag.Int("max-chars", normalizer.DefaultMaxChars, "Default cap on the returned text")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()

	// stdout 属于 stdio 传输，日志只能写到 stderr。
	logger.InitWithOutput(*level, os.Stderr)
	appLogger := logger.New("NormalizeMCP", "")

	s := newMCPServer(normalizer.New(normalizer.WithMaxChars(*maxChars)), appLogger)

	switch *transport {
	case "sse":
		appLogger.Info(fmt.Sprintf("Starting normalizer MCP server with SSE transport on port %s", *port))
		sseServer := server.NewSSEServer(s)
		if err := sseServer.Start(":" + *port); err != nil {
			log.Fatalf("SSE server error: %v", err)
		}
	case "httpstream":
		appLogger.Info(fmt.Sprintf("Starting normalizer MCP server with StreamableHTTP transport on port %s", *port))
		httpServer := server.NewStreamableHTTPServer(s)
		if err := httpServer.Start(":" + *port); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	case "stdio":
		appLogger.Info("Starting normalizer MCP server with STDIO transport")
		if err := server.ServeStdio(s); err != nil {
			log.Fatalf("STDIO server error: %v", err)
		}
	default:
		log.Fatalf("Unknown transport: %s. Use stdio, sse, or httpstream", *transport)
	}
}
