package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscriber()
	c.normalizeLLM()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		c.Paths.LibraryDir = defaultLibraryDir
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.InboxDir) == "" {
		c.Paths.InboxDir = defaultInboxDir
	}
	if c.Paths.InboxDir, err = expandPath(c.Paths.InboxDir); err != nil {
		return fmt.Errorf("paths.inbox_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscriber() {
	c.Transcriber.Endpoint = strings.TrimSpace(c.Transcriber.Endpoint)
	if c.Transcriber.Endpoint == "" {
		if value, ok := os.LookupEnv("MINUTES_TRANSCRIBER_ENDPOINT"); ok {
			c.Transcriber.Endpoint = strings.TrimSpace(value)
		}
	}
	if c.Transcriber.Endpoint == "" {
		c.Transcriber.Endpoint = defaultTranscriberEndpoint
	}
	c.Transcriber.Endpoint = strings.TrimRight(c.Transcriber.Endpoint, "/")
	c.Transcriber.Model = strings.TrimSpace(c.Transcriber.Model)
	if c.Transcriber.Model == "" {
		c.Transcriber.Model = defaultTranscriberModel
	}
	c.Transcriber.Language = strings.ToLower(strings.TrimSpace(c.Transcriber.Language))
	if c.Transcriber.Language == "" {
		c.Transcriber.Language = defaultTranscriberLanguage
	}
	if c.Transcriber.ChunkSeconds <= 0 {
		c.Transcriber.ChunkSeconds = defaultAudioChunkSeconds
	}
	if c.Transcriber.TimeoutSeconds <= 0 {
		c.Transcriber.TimeoutSeconds = defaultTranscriberTimeout
	}
	if c.Transcriber.MaxRetries < 0 {
		c.Transcriber.MaxRetries = defaultTranscriberRetries
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.Endpoint = strings.TrimSpace(c.LLM.Endpoint)
	if c.LLM.Endpoint == "" {
		if value, ok := os.LookupEnv("MINUTES_LLM_ENDPOINT"); ok {
			c.LLM.Endpoint = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OLLAMA_HOST"); ok {
			c.LLM.Endpoint = strings.TrimSpace(value)
		}
	}
	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = defaultLLMEndpoint
	}
	c.LLM.Endpoint = strings.TrimRight(c.LLM.Endpoint, "/")
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.ChunkSize <= 0 {
		c.LLM.ChunkSize = defaultLLMChunkSize
	}
	if c.LLM.ContextWindow <= 0 {
		c.LLM.ContextWindow = defaultLLMContextWindow
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
	if c.LLM.MaxRetries < 0 {
		c.LLM.MaxRetries = defaultLLMRetries
	}
	if c.LLM.BackoffBaseMS <= 0 {
		c.LLM.BackoffBaseMS = defaultLLMBackoffBaseMS
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.WebhookURL = strings.TrimSpace(c.Notifications.WebhookURL)
	if c.Notifications.WebhookURL == "" {
		if value, ok := os.LookupEnv("MINUTES_WEBHOOK_URL"); ok {
			c.Notifications.WebhookURL = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
