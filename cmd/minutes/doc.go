// Command minutes is the CLI for the meeting processing pipeline. It
// ingests recordings, runs chunked transcription and summarization
// against the configured services, and manages the meeting catalog.
package main
