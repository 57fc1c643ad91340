package meeting

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a recorded meeting.
type Status string

const (
	StatusPending      Status = "pending"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusSummarizing  Status = "summarizing"
	StatusSummarized   Status = "summarized"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusTranscribing,
	StatusTranscribed,
	StatusSummarizing,
	StatusSummarized,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusTranscribing: {},
	StatusSummarizing:  {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus validates a user-supplied status string.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := statusSet[status]; !ok {
		return "", fmt.Errorf("unknown status %q", value)
	}
	return status, nil
}

// IsProcessing reports whether the status indicates in-flight pipeline work.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// Meeting represents a recorded meeting persisted in SQLite.
type Meeting struct {
	ID              int64
	MeetingID       string
	Title           string
	SourcePath      string
	Status          Status
	Language        string
	DurationSeconds float64
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Segment is a single diarized utterance within a transcript. Offsets are
// seconds from the start of the recording.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// HealthSummary describes aggregated meeting counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Summarized int
}

// NewMeetingID derives the canonical identifier for a recording ingested at
// the given time.
func NewMeetingID(now time.Time) string {
	return fmt.Sprintf("recording-%d", now.Unix())
}
