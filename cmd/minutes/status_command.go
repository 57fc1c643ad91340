package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minutes/internal/meeting"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog totals per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(func(rt *runtime) error {
				stats, err := rt.store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				total := 0
				tbl := newCatalogTable([]string{"STATUS", "MEETINGS"}, 1)
				for _, status := range meeting.AllStatuses() {
					count := stats[status]
					total += count
					tbl.addRow(string(status), fmt.Sprintf("%d", count))
				}
				tbl.addRow("total", fmt.Sprintf("%d", total))
				fmt.Fprintln(out, tbl.render())
				return nil
			})
		},
	}
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the catalog and external services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(func(rt *runtime) error {
				report := rt.orch.Health(cmd.Context())

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderProbe("Catalog", report.Catalog, colorize))
				fmt.Fprintln(out, renderProbe("Transcriber", report.Transcriber, colorize))
				fmt.Fprintln(out, renderProbe("Summarizer", report.Summarizer, colorize))

				if !report.Healthy() {
					return fmt.Errorf("one or more health probes failed")
				}
				return nil
			})
		},
	}
}

func renderProbe(label string, err error, colorize bool) string {
	if err != nil {
		return renderStatusLine(label, statusError, err.Error(), colorize)
	}
	return renderStatusLine(label, statusOK, "", colorize)
}
