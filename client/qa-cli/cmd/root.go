package cmd

import (
	"fmt"
	"os"
	"time"

	"llm_relay/backend/go/pkg/circuitbreaker"
	httpx "llm_relay/backend/go/pkg/http"

	"github.com/spf13/cobra"
)

var (
	serverURL       string
	timeout         time.Duration
	breakerFailures uint32
)

// breakerCooldown 熔断打开后等待多久再放行一次试探请求。
const breakerCooldown = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:           "qa-cli",
	Short:         "A CLI client for the question answering service",
	Long:          `A command-line interface for asking questions, optionally about a local document, through the QA service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	defaultServer := os.Getenv("QA_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "base URL of the QA service (env QA_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", httpx.DefaultClientTimeout, "request timeout")
	rootCmd.PersistentFlags().Uint32Var(&breakerFailures, "circuit-breaker", 0, "open the circuit after this many consecutive server errors (0 disables)")
}

func newClient() *httpx.Client {
	return httpx.NewClient(timeout, newBreaker())
}

// newBreaker returns nil when --circuit-breaker is 0.
func newBreaker() circuitbreaker.CircuitBreaker {
	if breakerFailures == 0 {
		return nil
	}
	return circuitbreaker.New(breakerFailures, 1, breakerCooldown)
}
