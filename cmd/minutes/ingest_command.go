package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minutes/internal/config"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var title string
	var process bool

	cmd := &cobra.Command{
		Use:   "ingest <recording>",
		Short: "Copy a recording into the library and register it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			return ctx.withRuntime(func(rt *runtime) error {
				cmdCtx := runContext(cmd.Context())
				m, err := rt.orch.Ingest(cmdCtx, path, title)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Ingested %s as %s\n", path, m.MeetingID)
				if !process {
					fmt.Fprintf(out, "Run `minutes process %s` to transcribe and summarize it.\n", m.MeetingID)
					return nil
				}
				return rt.orch.Process(cmdCtx, m.MeetingID)
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Meeting title (defaults to the file name)")
	cmd.Flags().BoolVar(&process, "process", false, "Transcribe and summarize immediately after ingest")
	return cmd
}
