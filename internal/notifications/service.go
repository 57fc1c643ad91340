package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"minutes/internal/config"
)

const userAgent = "Minutes-Go/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyTranscriptionStarted(ctx context.Context, meetingID string, chunks int) error
	NotifyTranscriptionCompleted(ctx context.Context, meetingID string, duration time.Duration) error
	NotifySummarizationStarted(ctx context.Context, meetingID string, chunks int) error
	NotifySummarizationCompleted(ctx context.Context, meetingID, title string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by a webhook when
// configured. When no webhook URL is configured, a noop implementation is
// returned.
func NewService(cfg *config.Config) Service {
	url := strings.TrimSpace(cfg.Notifications.WebhookURL)
	if url == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &webhookService{
		endpoint:      url,
		client:        &http.Client{Timeout: timeout},
		transcription: cfg.Notifications.Transcription,
		summarization: cfg.Notifications.Summarization,
		errors:        cfg.Notifications.Errors,
	}
}

// event is the JSON body posted to the webhook.
type event struct {
	Event     string `json:"event"`
	MeetingID string `json:"meeting_id,omitempty"`
	Message   string `json:"message"`
	Chunks    int    `json:"chunks,omitempty"`
	Title     string `json:"title,omitempty"`
	Error     string `json:"error,omitempty"`
}

type webhookService struct {
	endpoint      string
	client        *http.Client
	transcription bool
	summarization bool
	errors        bool
}

func (w *webhookService) NotifyTranscriptionStarted(ctx context.Context, meetingID string, chunks int) error {
	if !w.transcription {
		return nil
	}
	return w.send(ctx, event{
		Event:     "transcription-started",
		MeetingID: meetingID,
		Message:   fmt.Sprintf("Transcription started (%d chunks)", chunks),
		Chunks:    chunks,
	})
}

func (w *webhookService) NotifyTranscriptionCompleted(ctx context.Context, meetingID string, duration time.Duration) error {
	if !w.transcription {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	return w.send(ctx, event{
		Event:     "transcription-completed",
		MeetingID: meetingID,
		Message:   fmt.Sprintf("Transcription complete in %s", duration),
	})
}

func (w *webhookService) NotifySummarizationStarted(ctx context.Context, meetingID string, chunks int) error {
	if !w.summarization {
		return nil
	}
	return w.send(ctx, event{
		Event:     "summarization-started",
		MeetingID: meetingID,
		Message:   fmt.Sprintf("Summarization started (%d chunks)", chunks),
		Chunks:    chunks,
	})
}

func (w *webhookService) NotifySummarizationCompleted(ctx context.Context, meetingID, title string) error {
	if !w.summarization {
		return nil
	}
	title = strings.TrimSpace(title)
	message := "Summary ready"
	if title != "" {
		message = fmt.Sprintf("Summary ready: %s", title)
	}
	return w.send(ctx, event{
		Event:     "summarization-completed",
		MeetingID: meetingID,
		Message:   message,
		Title:     title,
	})
}

func (w *webhookService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !w.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	errText := "unknown"
	if err != nil {
		errText = strings.TrimSpace(err.Error())
	}
	builder.WriteString(errText)

	return w.send(ctx, event{
		Event:   "pipeline-error",
		Message: builder.String(),
		Error:   errText,
	})
}

func (w *webhookService) TestNotification(ctx context.Context) error {
	return w.send(ctx, event{
		Event:   "test",
		Message: "Notification system test",
	})
}

func (w *webhookService) send(ctx context.Context, data event) error {
	if w == nil || w.client == nil {
		return nil
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(encoded))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build webhook request: %w", err))
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			return fmt.Errorf("send webhook notification: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		if resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return backoff.Permanent(fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(operation, policy)
}

type noopService struct{}

func (noopService) NotifyTranscriptionStarted(context.Context, string, int) error { return nil }

func (noopService) NotifyTranscriptionCompleted(context.Context, string, time.Duration) error {
	return nil
}

func (noopService) NotifySummarizationStarted(context.Context, string, int) error { return nil }

func (noopService) NotifySummarizationCompleted(context.Context, string, string) error { return nil }

func (noopService) NotifyError(context.Context, error, string) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }
