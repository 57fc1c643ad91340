package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"minutes/internal/meeting"
	"minutes/internal/services"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunk-000.wav")
	if err := os.WriteFile(path, []byte("RIFFfakewav"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		Endpoint:    server.URL,
		Model:       "large-v3-turbo",
		Language:    "english",
		MaxRetries:  2,
		BackoffBase: time.Millisecond,
	}, WithSleeper(func(time.Duration) {}))
}

func TestTranscribeUploadsMultipart(t *testing.T) {
	audio := writeAudio(t)
	var gotModel, gotLanguage, gotFilename string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		if _, header, err := r.FormFile("audio"); err == nil {
			gotFilename = header.Filename
		} else {
			t.Fatalf("form file: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Result{
			Segments: []meeting.Segment{{Start: 0, End: 2, Speaker: "Speaker 1", Text: "hello"}},
			Language: "en",
		})
	})

	result, err := client.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotModel != "large-v3-turbo" {
		t.Fatalf("model = %q", gotModel)
	}
	if gotLanguage != "en" {
		t.Fatalf("language = %q, want normalized en", gotLanguage)
	}
	if gotFilename != "chunk-000.wav" {
		t.Fatalf("filename = %q", gotFilename)
	}
	if len(result.Segments) != 1 || result.Segments[0].Speaker != "Speaker 1" {
		t.Fatalf("segments = %+v", result.Segments)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	client := NewClient(Config{Endpoint: "http://127.0.0.1:1"})
	_, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "absent.wav"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestTranscribeRemoteErrorNotRetried(t *testing.T) {
	audio := writeAudio(t)
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad model", http.StatusBadRequest)
	})

	_, err := client.Transcribe(context.Background(), audio)
	if !errors.Is(err, services.ErrRemote) {
		t.Fatalf("err = %v, want remote error", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestTranscribeNetworkErrorRetried(t *testing.T) {
	audio := writeAudio(t)
	client := NewClient(Config{
		Endpoint:    "http://127.0.0.1:1",
		MaxRetries:  2,
		BackoffBase: time.Millisecond,
	}, WithSleeper(func(time.Duration) {}))

	_, err := client.Transcribe(context.Background(), audio)
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("err = %v, want network error", err)
	}
}

func TestHealthCheck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestHealthCheckRemoteFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if err := client.HealthCheck(context.Background()); !errors.Is(err, services.ErrRemote) {
		t.Fatalf("err = %v, want remote error", err)
	}
}
