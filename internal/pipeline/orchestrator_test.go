package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"minutes/internal/chunk"
	"minutes/internal/config"
	"minutes/internal/logging"
	"minutes/internal/meeting"
	"minutes/internal/services/transcriber"
)

type fakeMedia struct {
	duration    float64
	durationErr error
	silences    []float64
	silencesErr error
	cuts        []string
	cutErr      error
}

func (f *fakeMedia) Duration(ctx context.Context, path string) (float64, error) {
	return f.duration, f.durationErr
}

func (f *fakeMedia) DetectSilences(ctx context.Context, path string) ([]float64, error) {
	return f.silences, f.silencesErr
}

func (f *fakeMedia) Cut(ctx context.Context, src string, span chunk.Span, dst string) error {
	if f.cutErr != nil {
		return f.cutErr
	}
	f.cuts = append(f.cuts, dst)
	return os.WriteFile(dst, []byte("chunk"), 0o644)
}

type fakeTranscriber struct {
	paths   []string
	results []transcriber.Result
	failAt  int
	err     error
	onCall  func(call int)
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (transcriber.Result, error) {
	call := len(f.paths)
	f.paths = append(f.paths, audioPath)
	if f.onCall != nil {
		f.onCall(call)
	}
	if f.err != nil && call == f.failAt {
		return transcriber.Result{}, f.err
	}
	if call < len(f.results) {
		return f.results[call], nil
	}
	return transcriber.Result{}, nil
}

func (f *fakeTranscriber) HealthCheck(ctx context.Context) error { return nil }

type fakeSummarizer struct {
	chunks    []string
	priors    []string
	merged    []string
	title     string
	chunkErr  error
	failAt    int
	titleErr  error
	mergeCall int
}

func (f *fakeSummarizer) SummarizeChunk(ctx context.Context, chunkText, priorContext string) (string, error) {
	call := len(f.chunks)
	f.chunks = append(f.chunks, chunkText)
	f.priors = append(f.priors, priorContext)
	if f.chunkErr != nil && call == f.failAt {
		return "", f.chunkErr
	}
	return fmt.Sprintf("summary %d", call), nil
}

func (f *fakeSummarizer) MergeSummaries(ctx context.Context, summaries []string) (string, error) {
	f.mergeCall++
	f.merged = append([]string(nil), summaries...)
	if len(summaries) == 1 {
		return summaries[0], nil
	}
	return "merged summary", nil
}

func (f *fakeSummarizer) GenerateTitle(ctx context.Context, transcript string) (string, error) {
	if f.titleErr != nil {
		return "", f.titleErr
	}
	if f.title == "" {
		return "Generated Title", nil
	}
	return f.title, nil
}

func (f *fakeSummarizer) HealthCheck(ctx context.Context) error { return nil }

type testEnv struct {
	cfg   *config.Config
	store *meeting.Store
	media *fakeMedia
	stt   *fakeTranscriber
	llm   *fakeSummarizer
	orch  *Orchestrator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.Paths.InboxDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()

	store, err := meeting.OpenPath(filepath.Join(cfg.Paths.LibraryDir, "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	media := &fakeMedia{duration: 600}
	stt := &fakeTranscriber{}
	llm := &fakeSummarizer{}
	orch := New(&cfg, store, media, stt, llm, nil, logging.NewNop())
	return &testEnv{cfg: &cfg, store: store, media: media, stt: stt, llm: llm, orch: orch}
}

func (e *testEnv) writeRecording(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.cfg.Paths.InboxDir, name)
	if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}
	return path
}

func TestIngestCopiesRecordingAndRegistersMeeting(t *testing.T) {
	env := newTestEnv(t)
	src := env.writeRecording(t, "weekly_sync.wav")

	m, err := env.orch.Ingest(context.Background(), src, "")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if m.Status != meeting.StatusPending {
		t.Fatalf("status = %s, want pending", m.Status)
	}
	if m.Title != "Weekly Sync" {
		t.Fatalf("title = %q, want inferred from filename", m.Title)
	}
	if m.DurationSeconds != 600 {
		t.Fatalf("duration = %v, want 600", m.DurationSeconds)
	}
	if _, err := os.Stat(m.SourcePath); err != nil {
		t.Fatalf("library copy missing: %v", err)
	}
	if filepath.Dir(m.SourcePath) == env.cfg.Paths.InboxDir {
		t.Fatal("recording not copied out of the inbox")
	}

	got, err := env.store.GetByMeetingID(context.Background(), m.MeetingID)
	if err != nil || got == nil {
		t.Fatalf("meeting not in catalog: %v", err)
	}
}

func TestIngestMissingFile(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.orch.Ingest(context.Background(), filepath.Join(env.cfg.Paths.InboxDir, "nope.wav"), ""); err == nil {
		t.Fatal("expected error for missing recording")
	}
}

func TestRenameSpeakerRewritesArtifacts(t *testing.T) {
	env := newTestEnv(t)
	src := env.writeRecording(t, "standup.wav")
	m, err := env.orch.Ingest(context.Background(), src, "Standup")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	segments := []meeting.Segment{
		{Start: 0, End: 5, Speaker: "Speaker 1", Text: "Hello"},
		{Start: 5, End: 9, Speaker: "Speaker 2", Text: "Hi"},
	}
	if err := meeting.SaveSegments(env.cfg.Paths.LibraryDir, m.MeetingID, segments); err != nil {
		t.Fatalf("save segments: %v", err)
	}
	if err := meeting.SaveTranscript(env.cfg.Paths.LibraryDir, m.MeetingID, RenderTranscript(segments)); err != nil {
		t.Fatalf("save transcript: %v", err)
	}

	changed, err := env.orch.RenameSpeaker(context.Background(), m.MeetingID, "Speaker 1", "Alice")
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}

	reloaded, err := meeting.LoadSegments(env.cfg.Paths.LibraryDir, m.MeetingID)
	if err != nil {
		t.Fatalf("load segments: %v", err)
	}
	if reloaded[0].Speaker != "Alice" {
		t.Fatalf("segment speaker = %q, want Alice", reloaded[0].Speaker)
	}

	transcript, err := meeting.LoadTranscript(env.cfg.Paths.LibraryDir, m.MeetingID)
	if err != nil {
		t.Fatalf("load transcript: %v", err)
	}
	if want := "[00:00:00] Alice: Hello\n[00:00:05] Speaker 2: Hi\n"; transcript != want {
		t.Fatalf("transcript = %q, want %q", transcript, want)
	}
}

func TestRenameSpeakerWithoutSegments(t *testing.T) {
	env := newTestEnv(t)
	src := env.writeRecording(t, "raw.wav")
	m, err := env.orch.Ingest(context.Background(), src, "")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if _, err := env.orch.RenameSpeaker(context.Background(), m.MeetingID, "Speaker 1", "Alice"); err == nil {
		t.Fatal("expected error when segments are missing")
	}
}

func TestRetitleUsesStoredTranscript(t *testing.T) {
	env := newTestEnv(t)
	src := env.writeRecording(t, "retro.wav")
	m, err := env.orch.Ingest(context.Background(), src, "Old Title")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if err := meeting.SaveTranscript(env.cfg.Paths.LibraryDir, m.MeetingID, "[00:00:00] Speaker 1: Retro notes.\n"); err != nil {
		t.Fatalf("save transcript: %v", err)
	}
	env.llm.title = "🔁 Retro Highlights"

	title, err := env.orch.Retitle(context.Background(), m.MeetingID)
	if err != nil {
		t.Fatalf("retitle failed: %v", err)
	}
	if title != "🔁 Retro Highlights" {
		t.Fatalf("title = %q", title)
	}

	got, err := env.store.GetByMeetingID(context.Background(), m.MeetingID)
	if err != nil || got == nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.Title != "🔁 Retro Highlights" {
		t.Fatalf("stored title = %q", got.Title)
	}
}

func TestSetTitleRejectsEmpty(t *testing.T) {
	env := newTestEnv(t)
	if err := env.orch.SetTitle(context.Background(), "recording-1", "   "); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCancelWithoutActiveRun(t *testing.T) {
	env := newTestEnv(t)
	if env.orch.Cancel(StageTranscribe) {
		t.Fatal("cancel reported an active transcription")
	}
	if env.orch.Cancel(StageSummarize) {
		t.Fatal("cancel reported an active summarization")
	}
}

func TestRequireMeetingUnknownID(t *testing.T) {
	env := newTestEnv(t)
	if err := env.orch.Transcribe(context.Background(), "recording-404"); err == nil {
		t.Fatal("expected not-found error")
	}
}
