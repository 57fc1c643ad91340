// Package logging wires log/slog with the console and JSON handlers used
// across minutes, plus attribute helpers and context-derived fields
// (meeting id, stage, run id).
package logging
