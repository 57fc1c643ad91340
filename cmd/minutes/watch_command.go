package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"minutes/internal/pipeline"
	"minutes/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the inbox and process new recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(func(rt *runtime) error {
				lock, err := pipeline.AcquireProcessLock(filepath.Join(rt.cfg.Paths.LogDir, "minutes.lock"))
				if err != nil {
					return err
				}
				defer lock.Release()

				handler := func(handlerCtx context.Context, path string) error {
					m, err := rt.orch.Ingest(handlerCtx, path, "")
					if err != nil {
						return err
					}
					return rt.orch.Process(handlerCtx, m.MeetingID)
				}

				watcher, err := watch.New(rt.cfg.Paths.InboxDir, handler, rt.logger)
				if err != nil {
					return err
				}
				defer watcher.Close()

				cmdCtx, cancel := signal.NotifyContext(runContext(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", rt.cfg.Paths.InboxDir)
				err = watcher.Run(cmdCtx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}
