// Package config loads, normalizes, and validates the TOML configuration
// for minutes. Missing values fall back to repository defaults and a few
// environment variables (MINUTES_TRANSCRIBER_ENDPOINT, MINUTES_LLM_ENDPOINT,
// OLLAMA_HOST, MINUTES_WEBHOOK_URL).
package config
