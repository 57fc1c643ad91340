package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTitleCommand(ctx *commandContext) *cobra.Command {
	titleCmd := &cobra.Command{
		Use:   "title",
		Short: "Manage meeting titles",
	}

	titleCmd.AddCommand(&cobra.Command{
		Use:   "set <meeting> <title>",
		Short: "Set a meeting title",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(func(rt *runtime) error {
				title := strings.Join(args[1:], " ")
				if err := rt.orch.SetTitle(cmd.Context(), args[0], title); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Title set to %q\n", title)
				return nil
			})
		},
	})

	titleCmd.AddCommand(&cobra.Command{
		Use:   "regenerate <meeting>",
		Short: "Regenerate the title from the stored transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(func(rt *runtime) error {
				title, err := rt.orch.Retitle(runContext(cmd.Context()), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Title: %s\n", title)
				return nil
			})
		},
	})

	return titleCmd
}

func newRenameSpeakerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename-speaker <meeting> <from> <to>",
		Short: "Rename a diarized speaker label",
		Long:  "Rewrites the speaker label in the stored segments and re-renders the transcript. The summary is left untouched.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(func(rt *runtime) error {
				changed, err := rt.orch.RenameSpeaker(cmd.Context(), args[0], args[1], args[2])
				if err != nil {
					return err
				}
				if changed == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No segments with speaker %q\n", args[1])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q in %d segments\n", args[1], args[2], changed)
				return nil
			})
		},
	}
}
