package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"minutes/internal/services"
)

const (
	defaultHTTPTimeout   = 120 * time.Second
	defaultRetryMaxDelay = 30 * time.Second
	defaultRetryBase     = 500 * time.Millisecond
	defaultRetryAttempts = 3
	defaultContextWindow = 8096
)

// Config captures the runtime settings required to talk to the
// summarization backend.
type Config struct {
	Endpoint       string
	Model          string
	ContextWindow  int
	TimeoutSeconds int
	MaxRetries     int
	BackoffBase    time.Duration
}

// Client wraps an Ollama-compatible generate API.
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

// NewClient constructs a summarization client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = defaultContextWindow
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
			ContextWindow:  cfg.ContextWindow,
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
	if client.cfg.Endpoint == "" {
		client.cfg.Endpoint = "http://127.0.0.1:11434"
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	NumCtx int `json:"num_ctx"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// SummarizeChunk produces an abstractive summary for one transcript chunk.
// priorContext carries the running summary of everything before this chunk
// and may be empty for the first chunk.
func (c *Client) SummarizeChunk(ctx context.Context, chunkText, priorContext string) (string, error) {
	chunkText = strings.TrimSpace(chunkText)
	if chunkText == "" {
		return "", services.Wrap(services.ErrValidation, "summarize", "chunk", "chunk text required", nil)
	}
	return c.generateWithRetry(ctx, chunkSummaryPrompt(chunkText, priorContext), "chunk summary")
}

// MergeSummaries combines per-chunk summaries into one coherent final summary.
func (c *Client) MergeSummaries(ctx context.Context, summaries []string) (string, error) {
	cleaned := make([]string, 0, len(summaries))
	for _, s := range summaries {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return "", services.Wrap(services.ErrValidation, "summarize", "merge", "no summaries to merge", nil)
	}
	if len(cleaned) == 1 {
		return cleaned[0], nil
	}
	return c.generateWithRetry(ctx, mergeSummariesPrompt(cleaned), "merge summaries")
}

// GenerateTitle produces a short display title from the full meeting
// transcript. Called once per meeting, never chunked.
func (c *Client) GenerateTitle(ctx context.Context, transcript string) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", services.Wrap(services.ErrValidation, "title", "generate", "transcript required", nil)
	}
	title, err := c.generateWithRetry(ctx, titlePrompt(transcript), "generate title")
	if err != nil {
		return "", err
	}
	return cleanTitle(title), nil
}

// HealthCheck probes the backend root with a zero-payload request. The
// probe is a single attempt outside the retry-counted call path and never
// runs inference.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/", nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "llm", "health", "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classifyTransportError("health", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrRemote, "llm", "health", fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	return nil
}

func (c *Client) generateWithRetry(ctx context.Context, prompt, op string) (string, error) {
	attempts := c.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		reply, err := c.generateOnce(ctx, prompt, op)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if !services.Retryable(err) || attempt == attempts-1 {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err := c.sleep(ctx, c.backoffDelay(attempt)); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) generateOnce(ctx context.Context, prompt, op string) (string, error) {
	payload := generateRequest{
		Model:   c.cfg.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{NumCtx: c.cfg.ContextWindow},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "llm", op, "encode request", err)
	}

	endpoint := c.cfg.Endpoint + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "llm", op, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.classifyTransportError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrNetwork, "llm", op, "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("http %d: %s", resp.StatusCode, summarizeBody(body))
		return "", services.Wrap(services.ErrRemote, "llm", op, msg, nil)
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", services.Wrap(services.ErrRemote, "llm", op, "decode response", err)
	}
	if decoded.Error != "" {
		return "", services.Wrap(services.ErrRemote, "llm", op, decoded.Error, nil)
	}
	if strings.TrimSpace(decoded.Response) == "" {
		return "", services.Wrap(services.ErrRemote, "llm", op, "empty response payload", nil)
	}
	return decoded.Response, nil
}

func (c *Client) classifyTransportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.Wrap(services.ErrTimeout, "llm", op, fmt.Sprintf("request timed out after %s", c.timeoutDuration()), err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return services.Wrap(services.ErrTimeout, "llm", op, fmt.Sprintf("request timed out after %s", c.timeoutDuration()), err)
	}
	return services.Wrap(services.ErrNetwork, "llm", op, "http error", err)
}

func (c *Client) timeoutDuration() time.Duration {
	if c == nil || c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

// backoffDelay returns base * 2^attempt capped at retryMaxDelay.
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

func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	title = strings.Trim(strings.TrimSpace(title), "\"'`")
	return strings.TrimSpace(title)
}
