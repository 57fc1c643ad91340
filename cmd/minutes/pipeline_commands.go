package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <meeting>",
		Short: "Transcribe a meeting recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(func(rt *runtime) error {
				cmdCtx, cancel := signal.NotifyContext(runContext(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()
				return rt.orch.Transcribe(cmdCtx, args[0])
			})
		},
	}
}

func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <meeting>",
		Short: "Summarize a transcribed meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(func(rt *runtime) error {
				cmdCtx, cancel := signal.NotifyContext(runContext(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()
				return rt.orch.Summarize(cmdCtx, args[0])
			})
		},
	}
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <meeting>",
		Short: "Run transcription and summarization back to back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(func(rt *runtime) error {
				cmdCtx, cancel := signal.NotifyContext(runContext(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()
				return rt.orch.Process(cmdCtx, args[0])
			})
		},
	}
}
