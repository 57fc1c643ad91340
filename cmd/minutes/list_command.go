package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"minutes/internal/meeting"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meetings in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []meeting.Status
			for _, raw := range strings.Split(statusFilter, ",") {
				raw = strings.TrimSpace(raw)
				if raw == "" {
					continue
				}
				status, err := meeting.ParseStatus(raw)
				if err != nil {
					return err
				}
				statuses = append(statuses, status)
			}

			return ctx.withRuntime(func(rt *runtime) error {
				meetings, err := rt.store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(meetings) == 0 {
					fmt.Fprintln(out, "No meetings found")
					return nil
				}
				tbl := newCatalogTable([]string{"MEETING", "TITLE", "STATUS", "DURATION", "UPDATED"}, 3)
				for _, m := range meetings {
					tbl.addRow(
						m.MeetingID,
						truncate(m.Title, 40),
						string(m.Status),
						formatDuration(m.DurationSeconds),
						m.UpdatedAt.Local().Format("2006-01-02 15:04"),
					)
				}
				fmt.Fprintln(out, tbl.render())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Only show meetings with these statuses (comma separated)")
	return cmd
}
