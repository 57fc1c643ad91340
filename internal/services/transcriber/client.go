package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"minutes/internal/language"
	"minutes/internal/meeting"
	"minutes/internal/services"
)

const (
	defaultHTTPTimeout   = 600 * time.Second
	defaultRetryMaxDelay = 30 * time.Second
	defaultRetryBase     = 500 * time.Millisecond
	defaultRetryAttempts = 3
)

// Config captures the runtime settings required to talk to the
// transcription service.
type Config struct {
	Endpoint       string
	Model          string
	Language       string
	TimeoutSeconds int
	MaxRetries     int
	BackoffBase    time.Duration
}

// Result is the transcription output for one audio chunk. Offsets are
// relative to the start of the submitted chunk, not the full recording.
type Result struct {
	Segments []meeting.Segment `json:"segments"`
	Language string            `json:"language"`
}

// Client wraps the transcription service HTTP API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxDelay time.Duration
	sleeper       func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a transcription client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultRetryAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultRetryBase
	}
	client := &Client{
		cfg: Config{
			Endpoint:       strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			Language:       language.ToISO2(cfg.Language),
			TimeoutSeconds: cfg.TimeoutSeconds,
			MaxRetries:     cfg.MaxRetries,
			BackoffBase:    cfg.BackoffBase,
		},
		httpClient:    &http.Client{Timeout: timeout},
		retryMaxDelay: defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

// Transcribe uploads one audio chunk and returns its diarized segments.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	var empty Result
	if strings.TrimSpace(audioPath) == "" {
		return empty, services.Wrap(services.ErrValidation, "transcribe", "upload", "audio path required", nil)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return empty, services.Wrap(services.ErrNotFound, "transcribe", "upload", fmt.Sprintf("audio file %s", audioPath), err)
	}

	attempts := c.cfg.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := c.transcribeOnce(ctx, audioPath)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !services.Retryable(err) || attempt == attempts-1 {
			return empty, err
		}
		if ctx.Err() != nil {
			return empty, ctx.Err()
		}
		if err := c.sleep(ctx, c.backoffDelay(attempt)); err != nil {
			return empty, err
		}
	}
	return empty, fmt.Errorf("transcribe: failed after %d attempts: %w", attempts, lastErr)
}

// HealthCheck probes the transcription service.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/health", nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "transcribe", "health", "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classifyTransportError("health", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrRemote, "transcribe", "health", fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	return nil
}

func (c *Client) transcribeOnce(ctx context.Context, audioPath string) (Result, error) {
	var empty Result

	body, contentType, err := c.buildUploadBody(audioPath)
	if err != nil {
		return empty, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/transcribe", body)
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "transcribe", "upload", "build request", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, c.classifyTransportError("upload", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, services.Wrap(services.ErrNetwork, "transcribe", "upload", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("http %d: %s", resp.StatusCode, summarizeBody(payload))
		return empty, services.Wrap(services.ErrRemote, "transcribe", "upload", msg, nil)
	}

	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return empty, services.Wrap(services.ErrRemote, "transcribe", "upload", "decode response", err)
	}
	return result, nil
}

func (c *Client) buildUploadBody(audioPath string) (*bytes.Reader, string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, "", services.Wrap(services.ErrNotFound, "transcribe", "upload", fmt.Sprintf("open %s", audioPath), err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, "", services.Wrap(services.ErrValidation, "transcribe", "upload", "create form file", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", services.Wrap(services.ErrValidation, "transcribe", "upload", "read audio", err)
	}
	if c.cfg.Model != "" {
		if err := writer.WriteField("model", c.cfg.Model); err != nil {
			return nil, "", services.Wrap(services.ErrValidation, "transcribe", "upload", "write model field", err)
		}
	}
	if c.cfg.Language != "" {
		if err := writer.WriteField("language", c.cfg.Language); err != nil {
			return nil, "", services.Wrap(services.ErrValidation, "transcribe", "upload", "write language field", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", services.Wrap(services.ErrValidation, "transcribe", "upload", "finalize form", err)
	}
	return bytes.NewReader(buf.Bytes()), writer.FormDataContentType(), nil
}

func (c *Client) classifyTransportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.Wrap(services.ErrTimeout, "transcribe", op, fmt.Sprintf("request timed out after %s", c.timeoutDuration()), err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return services.Wrap(services.ErrTimeout, "transcribe", op, fmt.Sprintf("request timed out after %s", c.timeoutDuration()), err)
	}
	return services.Wrap(services.ErrNetwork, "transcribe", op, "http error", err)
}

func (c *Client) timeoutDuration() time.Duration {
	if c == nil || c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.cfg.BackoffBase
	for i := 0; i < attempt; i++ {
		if delay > c.retryMaxDelay/2 {
			return c.retryMaxDelay
		}
		delay *= 2
	}
	if delay > c.retryMaxDelay {
		return c.retryMaxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func summarizeBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "<empty>"
	}
	replacer := strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")
	clean := strings.Join(strings.Fields(replacer.Replace(trimmed)), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
