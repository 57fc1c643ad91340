// Package meeting persists the meeting catalog in SQLite and lays out
// per-meeting artifact directories (recording, transcript, segments,
// summary) under the library root.
package meeting
