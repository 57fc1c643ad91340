package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"minutes/internal/chunk"
	"minutes/internal/logging"
	"minutes/internal/meeting"
	"minutes/internal/progress"
	"minutes/internal/services"
)

// Summarize produces an abstractive summary and a title from the stored
// transcript. Long transcripts are split into bounded chunks summarized
// sequentially; each chunk sees the running summary of everything before
// it, and the per-chunk summaries are merged in a second pass. A failed
// chunk aborts the run and marks the meeting failed.
func (o *Orchestrator) Summarize(ctx context.Context, meetingID string) error {
	m, err := o.requireMeeting(ctx, meetingID)
	if err != nil {
		return err
	}
	release, err := o.guard.Acquire(StageSummarize, m.MeetingID)
	if err != nil {
		return err
	}
	defer release()
	defer o.tracker.Finish()

	ctx, endStage := o.stageContext(ctx, StageSummarize)
	defer endStage()
	ctx = services.WithMeetingID(ctx, m.MeetingID)
	ctx = services.WithStage(ctx, StageSummarize)
	logger := logging.WithContext(ctx, o.logger)

	if m.Status != meeting.StatusTranscribed && m.Status != meeting.StatusSummarized {
		return services.Wrap(services.ErrValidation, StageSummarize, "input",
			fmt.Sprintf("meeting is %s; transcribe first", m.Status), nil)
	}

	transcript, err := meeting.LoadTranscript(o.cfg.Paths.LibraryDir, m.MeetingID)
	if err != nil {
		return services.Wrap(services.ErrNotFound, StageSummarize, "input", "transcript not available", err)
	}
	pieces := chunk.SplitText(transcript, o.cfg.LLM.ChunkSize)
	if len(pieces) == 0 {
		// Nothing to summarize. Write an empty summary without touching
		// the backend so the run still completes.
		if err := meeting.SaveSummary(o.cfg.Paths.LibraryDir, m.MeetingID, ""); err != nil {
			return err
		}
		m.Status = meeting.StatusSummarized
		m.ErrorMessage = ""
		if err := o.store.Update(ctx, m); err != nil {
			return err
		}
		logger.Info("summarization skipped, transcript empty",
			logging.String(logging.FieldEventType, "summarization-completed"),
		)
		return nil
	}

	started := time.Now()
	m.Status = meeting.StatusSummarizing
	m.ErrorMessage = ""
	if err := o.store.Update(ctx, m); err != nil {
		return err
	}

	o.tracker.Begin(progress.PhaseSummarizing, m.MeetingID, len(pieces))
	if err := o.notifier.NotifySummarizationStarted(ctx, m.MeetingID, len(pieces)); err != nil {
		logger.Warn("notification failed", logging.Error(err))
	}
	logger.Info("summarization started",
		logging.String(logging.FieldEventType, "summarization-started"),
		logging.Int("chunks", len(pieces)),
	)

	summaries := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if err := ctx.Err(); err != nil {
			o.markFailed(ctx, m, err)
			return err
		}
		logger.Info("summarizing chunk",
			logging.String(logging.FieldEventType, "chunk-start"),
			logging.Int(logging.FieldChunkIndex, piece.Index),
		)

		summary, err := o.llm.SummarizeChunk(ctx, piece.Text, strings.Join(summaries, "\n\n"))
		if err != nil {
			chunkErr := &ChunkError{Stage: StageSummarize, Index: piece.Index, Err: err}
			o.markFailed(ctx, m, chunkErr)
			return chunkErr
		}
		summaries = append(summaries, summary)

		o.tracker.Advance(piece.Index+1, fmt.Sprintf("chunk %d of %d", piece.Index+1, len(pieces)))
		logger.Info("chunk summarized",
			logging.String(logging.FieldEventType, "chunk-progress"),
			logging.Int(logging.FieldChunkIndex, piece.Index),
		)
	}

	summary, err := o.llm.MergeSummaries(ctx, summaries)
	if err != nil {
		o.markFailed(ctx, m, err)
		return err
	}

	// Per-chunk summaries are kept for drill-down next to the merged one.
	if err := meeting.SaveChunkSummaries(o.cfg.Paths.LibraryDir, m.MeetingID, summaries); err != nil {
		o.markFailed(ctx, m, err)
		return err
	}

	title, err := o.llm.GenerateTitle(ctx, transcript)
	if err != nil {
		logger.Warn("title generation failed, keeping current title", logging.Error(err))
		title = m.Title
	}

	if err := meeting.SaveSummary(o.cfg.Paths.LibraryDir, m.MeetingID, summary); err != nil {
		o.markFailed(ctx, m, err)
		return err
	}

	m.Status = meeting.StatusSummarized
	if strings.TrimSpace(title) != "" {
		m.Title = title
	}
	if err := o.store.Update(ctx, m); err != nil {
		return err
	}

	elapsed := time.Since(started)
	if err := o.notifier.NotifySummarizationCompleted(ctx, m.MeetingID, m.Title); err != nil {
		logger.Warn("notification failed", logging.Error(err))
	}
	logger.Info("summarization completed",
		logging.String(logging.FieldEventType, "summarization-completed"),
		logging.String("title", m.Title),
		logging.Duration("elapsed", elapsed),
	)
	return nil
}
