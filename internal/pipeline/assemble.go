package pipeline

import (
	"fmt"
	"strings"

	"minutes/internal/chunk"
	"minutes/internal/meeting"
)

// RebaseSegments shifts chunk-relative segment offsets onto the recording
// timeline by adding the chunk start offset.
func RebaseSegments(segments []meeting.Segment, offset float64) []meeting.Segment {
	out := make([]meeting.Segment, len(segments))
	for i, seg := range segments {
		seg.Start += offset
		seg.End += offset
		out[i] = seg
	}
	return out
}

// AssembleSegments merges per-chunk transcription results into one ordered
// segment list, rebasing each chunk by its span start. results must be
// parallel to spans; a missing chunk result is a fatal assembly error.
func AssembleSegments(spans []chunk.Span, results [][]meeting.Segment) ([]meeting.Segment, error) {
	if len(results) != len(spans) {
		return nil, fmt.Errorf("assemble segments: %d chunk results for %d spans", len(results), len(spans))
	}
	var merged []meeting.Segment
	for i, span := range spans {
		merged = append(merged, RebaseSegments(results[i], span.Start)...)
	}
	return merged, nil
}

// RenderTranscript formats segments as a plain-text transcript, one
// utterance per line with a wall-clock offset and speaker label.
func RenderTranscript(segments []meeting.Segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		speaker := strings.TrimSpace(seg.Speaker)
		if speaker == "" {
			speaker = "Unknown"
		}
		fmt.Fprintf(&sb, "[%s] %s: %s\n", formatOffset(seg.Start), speaker, text)
	}
	return sb.String()
}

// RenameSpeaker rewrites a speaker label across segments. The match is
// exact on the label; segment text is untouched. Returns the rewritten
// segments and how many were changed.
func RenameSpeaker(segments []meeting.Segment, from, to string) ([]meeting.Segment, int) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	out := make([]meeting.Segment, len(segments))
	changed := 0
	for i, seg := range segments {
		if strings.TrimSpace(seg.Speaker) == from {
			seg.Speaker = to
			changed++
		}
		out[i] = seg
	}
	return out, changed
}

func formatOffset(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
