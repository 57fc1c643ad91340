// Package services defines the shared error taxonomy and context helpers for
// the external service clients (transcription engine, LLM backend). Sentinel
// markers classify failures so the pipeline orchestrator can decide
// retry-vs-abort from the error kind alone.
package services
