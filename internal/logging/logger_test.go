package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"minutes/internal/services"
)

func TestConsoleHandlerFormatsRecord(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("stage started",
		String(FieldComponent, "pipeline"),
		String(FieldMeetingID, "recording-1700000000"),
		Int(FieldChunkIndex, 2),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO") {
		t.Fatalf("expected level label in output, got %q", line)
	}
	if !strings.Contains(line, "pipeline: stage started") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "meeting_id=recording-1700000000") {
		t.Fatalf("expected meeting id attribute, got %q", line)
	}
	if !strings.Contains(line, "chunk_index=2") {
		t.Fatalf("expected chunk index attribute, got %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("saved", String("title", "Quarterly planning sync"))

	if !strings.Contains(buf.String(), `title="Quarterly planning sync"`) {
		t.Fatalf("expected quoted title, got %q", buf.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("ignored")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "ignored") {
		t.Fatalf("info record should have been filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestConsoleHandlerFlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar)).WithGroup("llm")

	logger.Info("request", Duration("elapsed", 1500*time.Millisecond))

	if !strings.Contains(buf.String(), "llm.elapsed=1.5s") {
		t.Fatalf("expected grouped attribute, got %q", buf.String())
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		" info  ": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithMeetingID(context.Background(), "recording-42")
	ctx = services.WithStage(ctx, "summarize")

	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	base := slog.New(newConsoleHandler(&buf, levelVar))

	WithContext(ctx, base).Info("progress")

	out := buf.String()
	if !strings.Contains(out, "meeting_id=recording-42") {
		t.Fatalf("expected meeting id from context, got %q", out)
	}
	if !strings.Contains(out, "stage=summarize") {
		t.Fatalf("expected stage from context, got %q", out)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should never be enabled")
	}
}
