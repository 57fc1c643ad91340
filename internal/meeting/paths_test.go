package meeting_test

import (
	"testing"

	"minutes/internal/meeting"
)

func TestArtifactRoundTrips(t *testing.T) {
	library := t.TempDir()
	const id = "recording-99"

	if err := meeting.SaveTranscript(library, id, "Speaker 1: hello\n"); err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}
	transcript, err := meeting.LoadTranscript(library, id)
	if err != nil {
		t.Fatalf("LoadTranscript: %v", err)
	}
	if transcript != "Speaker 1: hello\n" {
		t.Fatalf("transcript = %q", transcript)
	}

	segments := []meeting.Segment{
		{Start: 0, End: 2.5, Speaker: "Speaker 1", Text: "hello"},
		{Start: 2.5, End: 4, Speaker: "Speaker 2", Text: "hi"},
	}
	if err := meeting.SaveSegments(library, id, segments); err != nil {
		t.Fatalf("SaveSegments: %v", err)
	}
	loaded, err := meeting.LoadSegments(library, id)
	if err != nil {
		t.Fatalf("LoadSegments: %v", err)
	}
	if len(loaded) != 2 || loaded[1].Speaker != "Speaker 2" {
		t.Fatalf("segments = %+v", loaded)
	}

	if err := meeting.SaveSummary(library, id, "## Notes\n"); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}
	summary, err := meeting.LoadSummary(library, id)
	if err != nil {
		t.Fatalf("LoadSummary: %v", err)
	}
	if summary != "## Notes\n" {
		t.Fatalf("summary = %q", summary)
	}
}

func TestRecordingPathPreservesExtension(t *testing.T) {
	path := meeting.RecordingPath("/lib", "recording-1", ".m4a")
	if path != "/lib/recording-1/recording.m4a" {
		t.Fatalf("path = %q", path)
	}
	path = meeting.RecordingPath("/lib", "recording-1", "")
	if path != "/lib/recording-1/recording.wav" {
		t.Fatalf("default path = %q", path)
	}
}
