package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"minutes/internal/chunk"
	"minutes/internal/logging"
	"minutes/internal/meeting"
	"minutes/internal/progress"
	"minutes/internal/services"
)

// Transcribe converts a meeting recording into diarized segments and a
// plain-text transcript. Long recordings are cut into bounded chunks which
// are uploaded sequentially; segment offsets are rebased onto the full
// recording timeline before assembly. A failed chunk aborts the run and
// marks the meeting failed.
func (o *Orchestrator) Transcribe(ctx context.Context, meetingID string) error {
	m, err := o.requireMeeting(ctx, meetingID)
	if err != nil {
		return err
	}
	release, err := o.guard.Acquire(StageTranscribe, m.MeetingID)
	if err != nil {
		return err
	}
	defer release()
	defer o.tracker.Finish()

	ctx, endStage := o.stageContext(ctx, StageTranscribe)
	defer endStage()
	ctx = services.WithMeetingID(ctx, m.MeetingID)
	ctx = services.WithStage(ctx, StageTranscribe)
	logger := logging.WithContext(ctx, o.logger)

	if m.SourcePath == "" {
		return services.Wrap(services.ErrValidation, StageTranscribe, "input", "meeting has no recording", nil)
	}
	if _, err := os.Stat(m.SourcePath); err != nil {
		return services.Wrap(services.ErrNotFound, StageTranscribe, "input", fmt.Sprintf("recording %s", m.SourcePath), err)
	}

	started := time.Now()
	m.Status = meeting.StatusTranscribing
	m.ErrorMessage = ""
	if err := o.store.Update(ctx, m); err != nil {
		return err
	}

	spans, chunkPaths, cleanup, err := o.prepareAudioChunks(ctx, m)
	if err != nil {
		o.markFailed(ctx, m, err)
		return err
	}
	defer cleanup()

	if len(spans) == 0 {
		// Zero-length recording. Persist empty artifacts without calling
		// the transcriber so the run still completes.
		if err := meeting.SaveSegments(o.cfg.Paths.LibraryDir, m.MeetingID, []meeting.Segment{}); err != nil {
			o.markFailed(ctx, m, err)
			return err
		}
		if err := meeting.SaveTranscript(o.cfg.Paths.LibraryDir, m.MeetingID, ""); err != nil {
			o.markFailed(ctx, m, err)
			return err
		}
		m.Status = meeting.StatusTranscribed
		if err := o.store.Update(ctx, m); err != nil {
			return err
		}
		logger.Info("transcription skipped, empty recording",
			logging.String(logging.FieldEventType, "transcription-completed"),
		)
		return nil
	}

	o.tracker.Begin(progress.PhaseTranscribing, m.MeetingID, len(spans))
	if err := o.notifier.NotifyTranscriptionStarted(ctx, m.MeetingID, len(spans)); err != nil {
		logger.Warn("notification failed", logging.Error(err))
	}
	logger.Info("transcription started",
		logging.String(logging.FieldEventType, "transcription-started"),
		logging.Int("chunks", len(spans)),
	)

	results := make([][]meeting.Segment, 0, len(spans))
	detectedLanguage := ""
	for _, span := range spans {
		if err := ctx.Err(); err != nil {
			o.markFailed(ctx, m, err)
			return err
		}
		logger.Info("transcribing chunk",
			logging.String(logging.FieldEventType, "chunk-start"),
			logging.Int(logging.FieldChunkIndex, span.Index),
		)

		result, err := o.stt.Transcribe(ctx, chunkPaths[span.Index])
		if err != nil {
			chunkErr := &ChunkError{Stage: StageTranscribe, Index: span.Index, Err: err}
			o.markFailed(ctx, m, chunkErr)
			return chunkErr
		}
		if detectedLanguage == "" {
			detectedLanguage = result.Language
		}
		results = append(results, result.Segments)

		o.tracker.Advance(span.Index+1, fmt.Sprintf("chunk %d of %d", span.Index+1, len(spans)))
		logger.Info("chunk transcribed",
			logging.String(logging.FieldEventType, "chunk-progress"),
			logging.Int(logging.FieldChunkIndex, span.Index),
			logging.Int("segments", len(result.Segments)),
		)
	}

	segments, err := AssembleSegments(spans, results)
	if err != nil {
		o.markFailed(ctx, m, err)
		return err
	}
	if err := meeting.SaveSegments(o.cfg.Paths.LibraryDir, m.MeetingID, segments); err != nil {
		o.markFailed(ctx, m, err)
		return err
	}
	if err := meeting.SaveTranscript(o.cfg.Paths.LibraryDir, m.MeetingID, RenderTranscript(segments)); err != nil {
		o.markFailed(ctx, m, err)
		return err
	}

	m.Status = meeting.StatusTranscribed
	if detectedLanguage != "" {
		m.Language = detectedLanguage
	}
	if err := o.store.Update(ctx, m); err != nil {
		return err
	}

	elapsed := time.Since(started)
	if err := o.notifier.NotifyTranscriptionCompleted(ctx, m.MeetingID, elapsed); err != nil {
		logger.Warn("notification failed", logging.Error(err))
	}
	logger.Info("transcription completed",
		logging.String(logging.FieldEventType, "transcription-completed"),
		logging.Int("segments", len(segments)),
		logging.Duration("elapsed", elapsed),
	)
	return nil
}

// prepareAudioChunks computes chunk spans for the recording and cuts each
// span into its own file. Recordings at or under the chunk bound are
// uploaded whole without re-cutting. The returned paths are parallel to
// the spans.
func (o *Orchestrator) prepareAudioChunks(ctx context.Context, m *meeting.Meeting) ([]chunk.Span, []string, func(), error) {
	noop := func() {}

	duration := m.DurationSeconds
	if duration <= 0 {
		probed, err := o.media.Duration(ctx, m.SourcePath)
		if err != nil {
			return nil, nil, noop, err
		}
		duration = probed
		m.DurationSeconds = probed
	}
	if duration <= 0 {
		return nil, nil, noop, nil
	}

	bound := float64(o.cfg.Transcriber.ChunkSeconds)
	if duration <= bound {
		span := chunk.Span{Index: 0, Start: 0, End: duration}
		return []chunk.Span{span}, []string{m.SourcePath}, noop, nil
	}

	silences, err := o.media.DetectSilences(ctx, m.SourcePath)
	if err != nil {
		o.logger.Warn("silence detection failed, cutting on the bound",
			logging.String(logging.FieldMeetingID, m.MeetingID), logging.Error(err))
		silences = nil
	}
	spans := chunk.SplitAudio(duration, silences, bound)

	chunkDir := filepath.Join(meeting.Dir(o.cfg.Paths.LibraryDir, m.MeetingID), "chunks")
	if err := os.MkdirAll(chunkDir, 0o755); err != nil {
		return nil, nil, noop, fmt.Errorf("create chunk directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(chunkDir) }

	ext := filepath.Ext(m.SourcePath)
	paths := make([]string, len(spans))
	for _, span := range spans {
		dst := filepath.Join(chunkDir, chunkFileName(span.Index, ext))
		if err := o.media.Cut(ctx, m.SourcePath, span, dst); err != nil {
			cleanup()
			return nil, nil, noop, err
		}
		paths[span.Index] = dst
	}
	return spans, paths, cleanup, nil
}

func chunkFileName(index int, ext string) string {
	if ext == "" {
		ext = ".wav"
	}
	return fmt.Sprintf("chunk-%03d%s", index, ext)
}
