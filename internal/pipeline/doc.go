// Package pipeline drives meeting recordings through the processing
// stages: ingest into the library, chunked transcription with diarized
// segments, and chunked abstractive summarization with title generation.
// Stage execution is single-flight per stage and progress is published
// through a tracker that status commands and watchers can subscribe to.
package pipeline
