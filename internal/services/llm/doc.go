// Package llm talks to an Ollama-compatible generate API for chunk
// summaries, summary merging, and title generation. Transport failures are
// retried with exponential backoff; errors reported by the backend itself
// are returned immediately.
package llm
