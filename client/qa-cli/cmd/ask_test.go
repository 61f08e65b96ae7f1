package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"llm_relay/backend/go/pkg/circuitbreaker"
	httpx "llm_relay/backend/go/pkg/http"
)

func newFakeService(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/":
			io.WriteString(w, `{"message":"welcome"}`)
		case r.URL.Path == "/api/" && r.Method == http.MethodGet:
			io.WriteString(w, `{"question":"`+r.URL.Query().Get("question")+`","answer":"from get"}`)
		case r.URL.Path == "/api/" && r.Method == http.MethodPost:
			f, fh, err := r.FormFile("file")
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				io.WriteString(w, `{"detail":"no file"}`)
				return
			}
			defer f.Close()
			if strings.HasSuffix(fh.Filename, ".bin") {
				w.WriteHeader(http.StatusBadRequest)
				io.WriteString(w, `{"detail":"unsupported file format .bin"}`)
				return
			}
			data, _ := io.ReadAll(f)
			io.WriteString(w, `{"question":"`+r.FormValue("question")+`","answer":"`+fh.Filename+`:`+string(data)+`"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAskWithoutFile(t *testing.T) {
	srv := newFakeService(t)
	resp, err := ask(context.Background(), httpx.NewClient(0, nil), srv.URL, "2+2?", "")
	if err != nil {
		t.Fatalf("ask() error = %v", err)
	}
	if resp.Question != "2+2?" || resp.Answer != "from get" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestAskWithFile(t *testing.T) {
	srv := newFakeService(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(path, []byte("hello"), 0o644)

	resp, err := ask(context.Background(), httpx.NewClient(0, nil), srv.URL+"/", "what?", path)
	if err != nil {
		t.Fatalf("ask() error = %v", err)
	}
	if resp.Answer != "notes.txt:hello" || resp.Question != "what?" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestAskReportsDetail(t *testing.T) {
	srv := newFakeService(t)
	path := filepath.Join(t.TempDir(), "x.bin")
	os.WriteFile(path, []byte{1}, 0o644)

	_, err := ask(context.Background(), httpx.NewClient(0, nil), srv.URL, "q", path)
	if err == nil || !strings.Contains(err.Error(), "unsupported file format") || !strings.Contains(err.Error(), "400") {
		t.Errorf("expected detail in error, got %v", err)
	}

	if _, err := ask(context.Background(), httpx.NewClient(0, nil), srv.URL, "q", filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for a missing local file")
	}
}

func TestPingCommand(t *testing.T) {
	srv := newFakeService(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"ping", "--server", srv.URL})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(out.String()) != "welcome" {
		t.Errorf("output = %q", out.String())
	}
}

func TestNewBreakerFollowsFlag(t *testing.T) {
	defer func() { breakerFailures = 0 }()

	breakerFailures = 0
	if newBreaker() != nil {
		t.Error("breaker should be disabled by default")
	}
	breakerFailures = 2
	cb := newBreaker()
	if cb == nil || cb.State() != circuitbreaker.Closed {
		t.Fatalf("newBreaker() = %v", cb)
	}
}

func TestAskAllStopsCallingFailingService(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"detail":"Server Error: quota exceeded"}`)
	}))
	defer srv.Close()

	client := httpx.NewClient(0, circuitbreaker.New(2, 1, time.Minute))
	var out, errOut bytes.Buffer
	err := askAll(context.Background(), client, srv.URL, "", []string{"a", "b", "c", "d"}, &out, &errOut)
	if err == nil || !strings.Contains(err.Error(), "4 of 4") {
		t.Fatalf("askAll() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("service called %d times, want 2", calls)
	}
	if !strings.Contains(errOut.String(), "quota exceeded") || !strings.Contains(errOut.String(), circuitbreaker.ErrCircuitOpen.Error()) {
		t.Errorf("stderr = %q", errOut.String())
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestAskAllSingleQuestionReturnsError(t *testing.T) {
	srv := newFakeService(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(path, []byte{1}, 0o644); err != nil {
		t.Fatal(err)
	}
	var out, errOut bytes.Buffer
	err := askAll(context.Background(), httpx.NewClient(0, nil), srv.URL, path, []string{"what?"}, &out, &errOut)
	if err == nil || !strings.Contains(err.Error(), "unsupported file format .bin") {
		t.Errorf("askAll() error = %v", err)
	}
	if errOut.Len() != 0 {
		t.Errorf("single failure should only be returned, stderr = %q", errOut.String())
	}
}
