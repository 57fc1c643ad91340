package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"minutes/internal/chunk"
	"minutes/internal/config"
	"minutes/internal/fileutil"
	"minutes/internal/logging"
	"minutes/internal/meeting"
	"minutes/internal/notifications"
	"minutes/internal/progress"
	"minutes/internal/services"
	"minutes/internal/services/transcriber"
)

// Transcriber is the transcription service surface the orchestrator needs.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (transcriber.Result, error)
	HealthCheck(ctx context.Context) error
}

// Summarizer is the summarization backend surface the orchestrator needs.
type Summarizer interface {
	SummarizeChunk(ctx context.Context, chunkText, priorContext string) (string, error)
	MergeSummaries(ctx context.Context, summaries []string) (string, error)
	GenerateTitle(ctx context.Context, transcript string) (string, error)
	HealthCheck(ctx context.Context) error
}

// MediaToolkit is the ffmpeg surface the orchestrator needs.
type MediaToolkit interface {
	Duration(ctx context.Context, path string) (float64, error)
	DetectSilences(ctx context.Context, path string) ([]float64, error)
	Cut(ctx context.Context, src string, span chunk.Span, dst string) error
}

// Orchestrator drives recordings through transcription and summarization.
type Orchestrator struct {
	cfg      *config.Config
	store    *meeting.Store
	media    MediaToolkit
	stt      Transcriber
	llm      Summarizer
	notifier notifications.Service
	tracker  *progress.Tracker
	guard    *Guard
	logger   *slog.Logger

	cancelMu sync.Mutex
	cancels  map[string]context.CancelFunc
}

// New constructs an orchestrator. A nil notifier defaults to the noop
// service and a nil logger discards output.
func New(
	cfg *config.Config,
	store *meeting.Store,
	media MediaToolkit,
	stt Transcriber,
	llm Summarizer,
	notifier notifications.Service,
	logger *slog.Logger,
) *Orchestrator {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		media:    media,
		stt:      stt,
		llm:      llm,
		notifier: notifier,
		tracker:  progress.NewTracker(),
		guard:    NewGuard(),
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Cancel aborts the active run for a stage, if any. The run stops at the
// next chunk boundary and cleans up through its normal failure path.
func (o *Orchestrator) Cancel(stage string) bool {
	o.cancelMu.Lock()
	cancel, ok := o.cancels[stage]
	o.cancelMu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

// stageContext derives a cancellable context for one stage run and
// registers it so Cancel can reach it. The returned cleanup must run when
// the stage finishes.
func (o *Orchestrator) stageContext(ctx context.Context, stage string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	o.cancelMu.Lock()
	o.cancels[stage] = cancel
	o.cancelMu.Unlock()

	cleanup := func() {
		o.cancelMu.Lock()
		delete(o.cancels, stage)
		o.cancelMu.Unlock()
		cancel()
	}
	return ctx, cleanup
}

// Tracker exposes the progress tracker for status output and watchers.
func (o *Orchestrator) Tracker() *progress.Tracker {
	return o.tracker
}

// Status returns the current progress snapshot.
func (o *Orchestrator) Status() progress.Snapshot {
	return o.tracker.Snapshot()
}

// Ingest copies a recording into the library and registers it in the
// catalog as pending.
func (o *Orchestrator) Ingest(ctx context.Context, sourcePath, title string) (*meeting.Meeting, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "ingest", "stat", fmt.Sprintf("recording %s", sourcePath), err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "ingest", "stat", fmt.Sprintf("%s is a directory", sourcePath), nil)
	}

	meetingID := meeting.NewMeetingID(time.Now())
	if existing, err := o.store.GetByMeetingID(ctx, meetingID); err != nil {
		return nil, err
	} else if existing != nil {
		// Two ingests within the same second; disambiguate with nanos.
		meetingID = fmt.Sprintf("%s-%d", meetingID, time.Now().Nanosecond())
	}

	if _, err := meeting.EnsureDir(o.cfg.Paths.LibraryDir, meetingID); err != nil {
		return nil, err
	}
	dst := meeting.RecordingPath(o.cfg.Paths.LibraryDir, meetingID, filepath.Ext(sourcePath))
	if err := fileutil.CopyFileVerified(sourcePath, dst); err != nil {
		return nil, fmt.Errorf("copy recording: %w", err)
	}

	duration, err := o.media.Duration(ctx, dst)
	if err != nil {
		o.logger.Warn("probe failed, duration unknown", logging.String(logging.FieldMeetingID, meetingID), logging.Error(err))
		duration = 0
	}

	if strings.TrimSpace(title) == "" {
		title = inferTitleFromPath(sourcePath)
	}

	m, err := o.store.New(ctx, meetingID, title, dst, duration)
	if err != nil {
		return nil, err
	}
	o.logger.Info("recording ingested",
		logging.String(logging.FieldMeetingID, meetingID),
		logging.String("source", sourcePath),
		logging.Float64("duration_seconds", duration),
	)
	return m, nil
}

// Process runs the full pipeline for one meeting: transcription followed
// by summarization.
func (o *Orchestrator) Process(ctx context.Context, meetingID string) error {
	if err := o.Transcribe(ctx, meetingID); err != nil {
		return err
	}
	return o.Summarize(ctx, meetingID)
}

// RenameSpeaker rewrites a speaker label across the stored segments and
// re-renders the transcript. The rename is a pure rewrite; no service
// calls are made and summaries are left untouched.
func (o *Orchestrator) RenameSpeaker(ctx context.Context, meetingID, from, to string) (int, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return 0, services.Wrap(services.ErrValidation, "rename", "speaker", "both speaker names required", nil)
	}

	m, err := o.requireMeeting(ctx, meetingID)
	if err != nil {
		return 0, err
	}

	segments, err := meeting.LoadSegments(o.cfg.Paths.LibraryDir, m.MeetingID)
	if err != nil {
		return 0, services.Wrap(services.ErrNotFound, "rename", "speaker", "segments not available; transcribe first", err)
	}

	renamed, changed := RenameSpeaker(segments, from, to)
	if changed == 0 {
		return 0, nil
	}
	if err := meeting.SaveSegments(o.cfg.Paths.LibraryDir, m.MeetingID, renamed); err != nil {
		return 0, err
	}
	if err := meeting.SaveTranscript(o.cfg.Paths.LibraryDir, m.MeetingID, RenderTranscript(renamed)); err != nil {
		return 0, err
	}
	o.logger.Info("speaker renamed",
		logging.String(logging.FieldMeetingID, m.MeetingID),
		logging.String("from", from),
		logging.String("to", to),
		logging.Int("segments", changed),
	)
	return changed, nil
}

// Retitle regenerates the meeting title from the stored transcript.
func (o *Orchestrator) Retitle(ctx context.Context, meetingID string) (string, error) {
	m, err := o.requireMeeting(ctx, meetingID)
	if err != nil {
		return "", err
	}
	transcript, err := meeting.LoadTranscript(o.cfg.Paths.LibraryDir, m.MeetingID)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "title", "load", "transcript not available; transcribe first", err)
	}
	title, err := o.llm.GenerateTitle(ctx, transcript)
	if err != nil {
		return "", err
	}
	m.Title = title
	if err := o.store.Update(ctx, m); err != nil {
		return "", err
	}
	return title, nil
}

// SetTitle stores a user-supplied title.
func (o *Orchestrator) SetTitle(ctx context.Context, meetingID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return services.Wrap(services.ErrValidation, "rename", "title", "title required", nil)
	}
	m, err := o.requireMeeting(ctx, meetingID)
	if err != nil {
		return err
	}
	m.Title = title
	return o.store.Update(ctx, m)
}

// HealthReport captures the result of pre-flight dependency probes.
type HealthReport struct {
	Catalog     error
	Transcriber error
	Summarizer  error
}

// Healthy reports whether every probe passed.
func (r HealthReport) Healthy() bool {
	return r.Catalog == nil && r.Transcriber == nil && r.Summarizer == nil
}

// Health probes the catalog and both external services.
func (o *Orchestrator) Health(ctx context.Context) HealthReport {
	return HealthReport{
		Catalog:     o.store.CheckHealth(ctx),
		Transcriber: o.stt.HealthCheck(ctx),
		Summarizer:  o.llm.HealthCheck(ctx),
	}
}

func (o *Orchestrator) requireMeeting(ctx context.Context, meetingID string) (*meeting.Meeting, error) {
	m, err := o.store.GetByMeetingID(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "lookup", fmt.Sprintf("meeting %s", meetingID), nil)
	}
	return m, nil
}

func (o *Orchestrator) markFailed(ctx context.Context, m *meeting.Meeting, cause error) {
	// The failure must be recorded even when the run itself was cancelled.
	ctx = context.WithoutCancel(ctx)
	m.Status = meeting.StatusFailed
	m.ErrorMessage = cause.Error()
	if err := o.store.Update(ctx, m); err != nil {
		o.logger.Error("record failure state", logging.String(logging.FieldMeetingID, m.MeetingID), logging.Error(err))
	}
	if err := o.notifier.NotifyError(ctx, cause, m.MeetingID); err != nil {
		o.logger.Warn("error notification failed", logging.Error(err))
	}
}

func inferTitleFromPath(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	ext := filepath.Ext(base)
	base = strings.TrimSpace(strings.TrimSuffix(base, ext))
	if base == "" {
		return "Untitled Meeting"
	}
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	return cases.Title(language.Und).String(base)
}
