package http

import (
	"fmt"
	"net/http"
	"time"

	"llm_relay/backend/go/pkg/circuitbreaker"
)

// DefaultClientTimeout bounds a whole request, LLM answers included.
const DefaultClientTimeout = 120 * time.Second

// Client is a custom HTTP client that wraps the standard http.Client
// and provides built-in support for circuit breaking.
type Client struct {
	httpClient *http.Client
	breaker    circuitbreaker.CircuitBreaker
}

// NewClient creates a new Client. breaker may be nil to disable circuit breaking;
// a non-positive timeout selects DefaultClientTimeout.
func NewClient(timeout time.Duration, breaker circuitbreaker.CircuitBreaker) *Client {
	if timeout <= 0 {
		timeout = DefaultClientTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
	}
}

// Do executes an HTTP request with circuit breaker protection.
// It considers status codes >= 500 as failures, but still returns the response
// so the caller can read the error body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	var resp *http.Response
	_, err := c.breaker.Execute(func() (interface{}, error) {
		var doErr error
		resp, doErr = c.httpClient.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		// Treat server-side errors as failures for the circuit breaker
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("server error: received status code %d", resp.StatusCode)
		}
		return resp, nil
	})
	if resp != nil && resp.StatusCode >= http.StatusInternalServerError {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}
