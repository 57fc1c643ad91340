package meeting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"minutes/internal/fileutil"
)

// Artifact filenames within a meeting directory.
const (
	transcriptFile     = "transcript.txt"
	segmentsFile       = "segments.json"
	summaryFile        = "summary.md"
	chunkSummariesFile = "chunk_summaries.json"
)

// Dir returns the per-meeting asset directory under the library root.
func Dir(libraryDir, meetingID string) string {
	return filepath.Join(libraryDir, meetingID)
}

// EnsureDir creates the per-meeting asset directory.
func EnsureDir(libraryDir, meetingID string) (string, error) {
	dir := Dir(libraryDir, meetingID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create meeting directory: %w", err)
	}
	return dir, nil
}

// RecordingPath returns the location of the ingested recording, preserving
// the original file extension.
func RecordingPath(libraryDir, meetingID, ext string) string {
	if ext == "" {
		ext = ".wav"
	}
	return filepath.Join(Dir(libraryDir, meetingID), "recording"+ext)
}

// TranscriptPath returns the plain-text transcript location.
func TranscriptPath(libraryDir, meetingID string) string {
	return filepath.Join(Dir(libraryDir, meetingID), transcriptFile)
}

// SegmentsPath returns the diarized segments JSON location.
func SegmentsPath(libraryDir, meetingID string) string {
	return filepath.Join(Dir(libraryDir, meetingID), segmentsFile)
}

// SummaryPath returns the summary markdown location.
func SummaryPath(libraryDir, meetingID string) string {
	return filepath.Join(Dir(libraryDir, meetingID), summaryFile)
}

// SaveTranscript writes the plain-text transcript atomically.
func SaveTranscript(libraryDir, meetingID, transcript string) error {
	if _, err := EnsureDir(libraryDir, meetingID); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(TranscriptPath(libraryDir, meetingID), []byte(transcript), 0o644)
}

// LoadTranscript reads the plain-text transcript.
func LoadTranscript(libraryDir, meetingID string) (string, error) {
	data, err := os.ReadFile(TranscriptPath(libraryDir, meetingID))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SaveSegments writes the diarized segments atomically as indented JSON.
func SaveSegments(libraryDir, meetingID string, segments []Segment) error {
	if _, err := EnsureDir(libraryDir, meetingID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}
	return fileutil.WriteFileAtomic(SegmentsPath(libraryDir, meetingID), data, 0o644)
}

// LoadSegments reads the diarized segments.
func LoadSegments(libraryDir, meetingID string) ([]Segment, error) {
	data, err := os.ReadFile(SegmentsPath(libraryDir, meetingID))
	if err != nil {
		return nil, err
	}
	var segments []Segment
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("parse segments: %w", err)
	}
	return segments, nil
}

// SaveSummary writes the summary markdown atomically.
func SaveSummary(libraryDir, meetingID, summary string) error {
	if _, err := EnsureDir(libraryDir, meetingID); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(SummaryPath(libraryDir, meetingID), []byte(summary), 0o644)
}

// LoadSummary reads the summary markdown.
func LoadSummary(libraryDir, meetingID string) (string, error) {
	data, err := os.ReadFile(SummaryPath(libraryDir, meetingID))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ChunkSummariesPath returns the per-chunk summaries JSON location.
func ChunkSummariesPath(libraryDir, meetingID string) string {
	return filepath.Join(Dir(libraryDir, meetingID), chunkSummariesFile)
}

// SaveChunkSummaries writes the per-chunk summaries atomically. They are
// kept alongside the merged summary for drill-down.
func SaveChunkSummaries(libraryDir, meetingID string, summaries []string) error {
	if _, err := EnsureDir(libraryDir, meetingID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chunk summaries: %w", err)
	}
	return fileutil.WriteFileAtomic(ChunkSummariesPath(libraryDir, meetingID), data, 0o644)
}

// LoadChunkSummaries reads the per-chunk summaries.
func LoadChunkSummaries(libraryDir, meetingID string) ([]string, error) {
	data, err := os.ReadFile(ChunkSummariesPath(libraryDir, meetingID))
	if err != nil {
		return nil, err
	}
	var summaries []string
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, fmt.Errorf("parse chunk summaries: %w", err)
	}
	return summaries, nil
}
