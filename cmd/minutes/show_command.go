package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"minutes/internal/language"
	"minutes/internal/meeting"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var withTranscript bool
	var withSummary bool
	var withSegments bool

	cmd := &cobra.Command{
		Use:   "show <meeting>",
		Short: "Show one meeting and its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(func(rt *runtime) error {
				m, err := rt.store.GetByMeetingID(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if m == nil {
					return fmt.Errorf("meeting %s not found", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Meeting:   %s\n", m.MeetingID)
				fmt.Fprintf(out, "Title:     %s\n", m.Title)
				fmt.Fprintf(out, "Status:    %s\n", m.Status)
				if m.Language != "" {
					fmt.Fprintf(out, "Language:  %s\n", language.DisplayName(m.Language))
				}
				if m.DurationSeconds > 0 {
					fmt.Fprintf(out, "Duration:  %s\n", formatDuration(m.DurationSeconds))
				}
				fmt.Fprintf(out, "Recording: %s\n", m.SourcePath)
				fmt.Fprintf(out, "Updated:   %s\n", m.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
				if m.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:     %s\n", m.ErrorMessage)
				}

				if withSegments {
					segments, err := meeting.LoadSegments(rt.cfg.Paths.LibraryDir, m.MeetingID)
					if err != nil {
						return fmt.Errorf("segments not available: %w", err)
					}
					fmt.Fprintf(out, "\nSpeakers: %s\n", strings.Join(speakerLabels(segments), ", "))
				}
				if withTranscript {
					transcript, err := meeting.LoadTranscript(rt.cfg.Paths.LibraryDir, m.MeetingID)
					if err != nil {
						return fmt.Errorf("transcript not available: %w", err)
					}
					fmt.Fprintf(out, "\n%s", transcript)
				}
				if withSummary {
					summary, err := meeting.LoadSummary(rt.cfg.Paths.LibraryDir, m.MeetingID)
					if err != nil {
						return fmt.Errorf("summary not available: %w", err)
					}
					fmt.Fprintf(out, "\n%s\n", strings.TrimRight(summary, "\n"))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&withTranscript, "transcript", false, "Print the full transcript")
	cmd.Flags().BoolVar(&withSummary, "summary", false, "Print the summary")
	cmd.Flags().BoolVar(&withSegments, "speakers", false, "Print the detected speaker labels")
	return cmd
}

func speakerLabels(segments []meeting.Segment) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, seg := range segments {
		speaker := strings.TrimSpace(seg.Speaker)
		if speaker == "" || seen[speaker] {
			continue
		}
		seen[speaker] = true
		labels = append(labels, speaker)
	}
	return labels
}
