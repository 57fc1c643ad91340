package config

import (
	"fmt"
	"strings"

	"minutes/internal/services"
)

// Validate ensures the configuration is usable. Failures carry the
// services.ErrConfiguration marker so callers can fail fast before any
// network activity.
func (c *Config) Validate() error {
	if err := c.validateTranscriber(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscriber() error {
	if err := validateEndpoint("transcriber.endpoint", c.Transcriber.Endpoint); err != nil {
		return err
	}
	if c.Transcriber.Model == "" {
		return invalid("transcriber.model must be set")
	}
	if c.Transcriber.ChunkSeconds <= 0 {
		return invalid("transcriber.chunk_seconds must be positive")
	}
	if c.Transcriber.TimeoutSeconds <= 0 || c.Transcriber.TimeoutSeconds > maxLLMTimeoutSeconds {
		return invalid(fmt.Sprintf("transcriber.timeout_seconds must be between 1 and %d", maxLLMTimeoutSeconds))
	}
	return nil
}

func (c *Config) validateLLM() error {
	if err := validateEndpoint("llm.endpoint", c.LLM.Endpoint); err != nil {
		return err
	}
	if c.LLM.Model == "" {
		return invalid("llm.model must be set")
	}
	if c.LLM.ChunkSize <= 0 || c.LLM.ChunkSize > maxLLMChunkSize {
		return invalid(fmt.Sprintf("llm.chunk_size must be between 1 and %d", maxLLMChunkSize))
	}
	if c.LLM.ContextWindow <= 0 {
		return invalid("llm.context_window must be positive")
	}
	if c.LLM.TimeoutSeconds <= 0 || c.LLM.TimeoutSeconds > maxLLMTimeoutSeconds {
		return invalid(fmt.Sprintf("llm.timeout_seconds must be between 1 and %d", maxLLMTimeoutSeconds))
	}
	if c.LLM.MaxRetries < 0 {
		return invalid("llm.max_retries must be >= 0")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.WebhookURL != "" {
		if err := validateEndpoint("notifications.webhook_url", c.Notifications.WebhookURL); err != nil {
			return err
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		return invalid("notifications.request_timeout must be positive")
	}
	return nil
}

func validateEndpoint(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(fmt.Sprintf("%s must be set", key))
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return invalid(fmt.Sprintf("%s must start with http:// or https://", key))
	}
	return nil
}

func invalid(message string) error {
	return services.Wrap(services.ErrConfiguration, "config", "validate", message, nil)
}
