package pipeline

import (
	"strings"
	"testing"

	"minutes/internal/chunk"
	"minutes/internal/meeting"
)

func TestRebaseSegmentsShiftsOffsets(t *testing.T) {
	segments := []meeting.Segment{
		{Start: 0, End: 4.5, Speaker: "Speaker 1", Text: "hello"},
		{Start: 4.5, End: 9, Speaker: "Speaker 2", Text: "hi"},
	}

	rebased := RebaseSegments(segments, 1800)
	if rebased[0].Start != 1800 || rebased[0].End != 1804.5 {
		t.Fatalf("first segment = [%v, %v], want [1800, 1804.5]", rebased[0].Start, rebased[0].End)
	}
	if rebased[1].Start != 1804.5 {
		t.Fatalf("second segment start = %v, want 1804.5", rebased[1].Start)
	}
	// Input is untouched.
	if segments[0].Start != 0 {
		t.Fatalf("input mutated: %v", segments[0].Start)
	}
}

func TestAssembleSegmentsRebasesPerSpan(t *testing.T) {
	spans := []chunk.Span{
		{Index: 0, Start: 0, End: 1700},
		{Index: 1, Start: 1700, End: 3000},
	}
	results := [][]meeting.Segment{
		{{Start: 0, End: 10, Speaker: "Speaker 1", Text: "opening"}},
		{{Start: 2, End: 8, Speaker: "Speaker 1", Text: "closing"}},
	}

	merged, err := AssembleSegments(spans, results)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("merged %d segments, want 2", len(merged))
	}
	if merged[0].Start != 0 {
		t.Fatalf("first start = %v, want 0", merged[0].Start)
	}
	if merged[1].Start != 1702 || merged[1].End != 1708 {
		t.Fatalf("second segment = [%v, %v], want [1702, 1708]", merged[1].Start, merged[1].End)
	}
}

func TestAssembleSegmentsRejectsMissingChunkResult(t *testing.T) {
	spans := []chunk.Span{
		{Index: 0, Start: 0, End: 1700},
		{Index: 1, Start: 1700, End: 3000},
	}
	results := [][]meeting.Segment{
		{{Start: 0, End: 10, Speaker: "Speaker 1", Text: "opening"}},
	}

	if _, err := AssembleSegments(spans, results); err == nil {
		t.Fatal("expected error for missing chunk result")
	}
}

func TestRenderTranscript(t *testing.T) {
	segments := []meeting.Segment{
		{Start: 0, End: 4, Speaker: "Speaker 1", Text: "Good morning everyone."},
		{Start: 4, End: 6, Speaker: "", Text: "Morning."},
		{Start: 6, End: 7, Speaker: "Speaker 2", Text: "   "},
		{Start: 3661.5, End: 3665, Speaker: "Speaker 2", Text: "Wrapping up."},
	}

	transcript := RenderTranscript(segments)
	lines := strings.Split(strings.TrimRight(transcript, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("rendered %d lines, want 3:\n%s", len(lines), transcript)
	}
	if lines[0] != "[00:00:00] Speaker 1: Good morning everyone." {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if lines[1] != "[00:00:04] Unknown: Morning." {
		t.Fatalf("line 1 = %q", lines[1])
	}
	if lines[2] != "[01:01:01] Speaker 2: Wrapping up." {
		t.Fatalf("line 2 = %q", lines[2])
	}
}

func TestRenameSpeakerExactMatchOnly(t *testing.T) {
	segments := []meeting.Segment{
		{Speaker: "Speaker 1", Text: "Speaker 1 said this earlier."},
		{Speaker: "Speaker 2", Text: "agreed"},
		{Speaker: "Speaker 1", Text: "ok"},
		{Speaker: "Speaker 10", Text: "unrelated"},
	}

	renamed, changed := RenameSpeaker(segments, "Speaker 1", "Alice")
	if changed != 2 {
		t.Fatalf("changed = %d, want 2", changed)
	}
	if renamed[0].Speaker != "Alice" || renamed[2].Speaker != "Alice" {
		t.Fatalf("labels not rewritten: %+v", renamed)
	}
	if renamed[3].Speaker != "Speaker 10" {
		t.Fatalf("prefix match rewrote Speaker 10: %+v", renamed[3])
	}
	// Segment text is never touched.
	if renamed[0].Text != "Speaker 1 said this earlier." {
		t.Fatalf("text rewritten: %q", renamed[0].Text)
	}
	if segments[0].Speaker != "Speaker 1" {
		t.Fatalf("input mutated: %+v", segments[0])
	}
}
