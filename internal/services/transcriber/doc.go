// Package transcriber uploads audio chunks to the transcription service
// and returns diarized segments with chunk-relative offsets.
package transcriber
