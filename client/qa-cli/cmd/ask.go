package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	httpx "llm_relay/backend/go/pkg/http"

	"github.com/spf13/cobra"
)

var filePath string

type qaResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type welcomeResponse struct {
	Message string `json:"message"`
}

var askCmd = &cobra.Command{
	Use:   "ask [question]...",
	Short: "Ask one or more questions, optionally about a file",
	Long: `Ask each question in turn, sharing one client. With --circuit-breaker set,
the remaining questions fail fast once the service keeps returning server errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return askAll(cmd.Context(), newClient(), serverURL, filePath, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// askAll prints one answer per question; failures go to errOut and are counted.
func askAll(ctx context.Context, client *httpx.Client, server, path string, questions []string, out, errOut io.Writer) error {
	failed := 0
	for _, q := range questions {
		resp, err := ask(ctx, client, server, q, path)
		if err != nil {
			failed++
			if len(questions) == 1 {
				return err
			}
			fmt.Fprintf(errOut, "%q: %v\n", q, err)
			continue
		}
		fmt.Fprintln(out, resp.Answer)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d questions failed", failed, len(questions))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&filePath, "file", "f", "", "path of a file to send with the question")
}

// ask sends GET /api/ without a file and a multipart POST /api/ with one.
func ask(ctx context.Context, client *httpx.Client, server, question, path string) (*qaResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := strings.TrimRight(server, "/") + "/api/"

	var req *http.Request
	var err error
	if path == "" {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?question="+url.QueryEscape(question), nil)
	} else {
		var body *bytes.Buffer
		var contentType string
		body, contentType, err = multipartForm(question, path)
		if err != nil {
			return nil, err
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
		if req != nil {
			req.Header.Set("Content-Type", contentType)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var out qaResponse
	if err := doJSON(client, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func multipartForm(question, path string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if err := w.WriteField("question", question); err != nil {
		return nil, "", err
	}
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

// doJSON decodes a 2xx body into out; other statuses become an error carrying "detail".
func doJSON(client *httpx.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Detail != "" {
			return fmt.Errorf("%s (status %d)", e.Detail, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
