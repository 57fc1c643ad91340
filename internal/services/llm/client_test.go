package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"minutes/internal/services"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(Config{
		Endpoint:    server.URL,
		Model:       "test-model",
		MaxRetries:  2,
		BackoffBase: time.Millisecond,
	}, WithSleeper(func(time.Duration) {}))
	return client, server
}

func respondJSON(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestSummarizeChunkSendsGeneratePayload(t *testing.T) {
	var gotPath string
	var gotBody generateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		respondJSON(t, w, generateResponse{Response: "summary text", Done: true})
	})

	summary, err := client.SummarizeChunk(context.Background(), "Alice: hello. Bob: hi.", "prior context")
	if err != nil {
		t.Fatalf("SummarizeChunk: %v", err)
	}
	if summary != "summary text" {
		t.Fatalf("summary = %q", summary)
	}
	if gotPath != "/api/generate" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody.Model != "test-model" || gotBody.Stream {
		t.Fatalf("request = %+v", gotBody)
	}
	if gotBody.Options.NumCtx != defaultContextWindow {
		t.Fatalf("num_ctx = %d", gotBody.Options.NumCtx)
	}
	if !strings.Contains(gotBody.Prompt, "prior context") {
		t.Fatal("prompt should carry the running summary")
	}
	if !strings.Contains(gotBody.Prompt, "Alice: hello") {
		t.Fatal("prompt should carry the chunk text")
	}
}

func TestSummarizeChunkRejectsEmptyInput(t *testing.T) {
	client := NewClient(Config{Endpoint: "http://127.0.0.1:1", Model: "m"})
	_, err := client.SummarizeChunk(context.Background(), "   ", "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestRemoteErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		respondJSON(t, w, generateResponse{Error: "model not found"})
	})

	_, err := client.SummarizeChunk(context.Background(), "text", "")
	if !errors.Is(err, services.ErrRemote) {
		t.Fatalf("err = %v, want remote error", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, remote errors must not be retried", calls.Load())
	}
}

func TestHTTPErrorStatusIsRemote(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.SummarizeChunk(context.Background(), "text", "")
	if !errors.Is(err, services.ErrRemote) {
		t.Fatalf("err = %v, want remote error", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestNetworkErrorRetriedUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			// Drop the connection to force a transport error.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("hijacking unsupported")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatalf("hijack: %v", err)
			}
			conn.Close()
			return
		}
		respondJSON(t, w, generateResponse{Response: "recovered", Done: true})
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{
		Endpoint:    server.URL,
		Model:       "m",
		MaxRetries:  3,
		BackoffBase: time.Millisecond,
	}, WithSleeper(func(time.Duration) {}))

	summary, err := client.SummarizeChunk(context.Background(), "text", "")
	if err != nil {
		t.Fatalf("SummarizeChunk: %v", err)
	}
	if summary != "recovered" {
		t.Fatalf("summary = %q", summary)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestNetworkErrorExhaustsRetries(t *testing.T) {
	client := NewClient(Config{
		Endpoint:    "http://127.0.0.1:1",
		Model:       "m",
		MaxRetries:  2,
		BackoffBase: time.Millisecond,
	}, WithSleeper(func(time.Duration) {}))

	_, err := client.SummarizeChunk(context.Background(), "text", "")
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("err = %v, want network error", err)
	}
}

func TestBackoffDelayDoublesAndCaps(t *testing.T) {
	client := NewClient(Config{
		Endpoint:    "http://127.0.0.1:1",
		Model:       "m",
		BackoffBase: time.Second,
	})
	if got := client.backoffDelay(0); got != time.Second {
		t.Fatalf("attempt 0 delay = %s", got)
	}
	if got := client.backoffDelay(1); got != 2*time.Second {
		t.Fatalf("attempt 1 delay = %s", got)
	}
	if got := client.backoffDelay(10); got != defaultRetryMaxDelay {
		t.Fatalf("attempt 10 delay = %s, want cap", got)
	}
}

func TestMergeSummariesSingleInputSkipsBackend(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		respondJSON(t, w, generateResponse{Response: "merged"})
	})

	merged, err := client.MergeSummaries(context.Background(), []string{"only one"})
	if err != nil {
		t.Fatalf("MergeSummaries: %v", err)
	}
	if merged != "only one" {
		t.Fatalf("merged = %q", merged)
	}
	if calls.Load() != 0 {
		t.Fatal("single summary should not hit the backend")
	}
}

func TestMergeSummariesCombines(t *testing.T) {
	var gotBody generateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		respondJSON(t, w, generateResponse{Response: "final summary"})
	})

	merged, err := client.MergeSummaries(context.Background(), []string{"part a", "part b"})
	if err != nil {
		t.Fatalf("MergeSummaries: %v", err)
	}
	if merged != "final summary" {
		t.Fatalf("merged = %q", merged)
	}
	if !strings.Contains(gotBody.Prompt, "Part 1:") || !strings.Contains(gotBody.Prompt, "part b") {
		t.Fatalf("prompt = %q", gotBody.Prompt)
	}
}

func TestGenerateTitleStripsQuotesAndNewlines(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, generateResponse{Response: "\"📋 Sprint Planning\"\nextra"})
	})

	title, err := client.GenerateTitle(context.Background(), "summary")
	if err != nil {
		t.Fatalf("GenerateTitle: %v", err)
	}
	if title != "📋 Sprint Planning" {
		t.Fatalf("title = %q", title)
	}
}

func TestHealthCheckProbesRootWithoutInference(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if gotMethod != http.MethodGet || gotPath != "/" {
		t.Fatalf("probe = %s %s, want GET /", gotMethod, gotPath)
	}
}

func TestHealthCheckFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "loading", http.StatusServiceUnavailable)
	})
	err := client.HealthCheck(context.Background())
	if !errors.Is(err, services.ErrRemote) {
		t.Fatalf("err = %v, want remote error", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, the probe must be a single attempt", calls.Load())
	}
}

func TestContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := NewClient(Config{
		Endpoint:    "http://127.0.0.1:1",
		Model:       "m",
		MaxRetries:  5,
		BackoffBase: time.Millisecond,
	}, WithSleeper(func(time.Duration) {}))

	_, err := client.SummarizeChunk(ctx, "text", "")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
