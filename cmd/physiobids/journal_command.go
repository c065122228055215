package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"physiobids/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent conversion sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg.Paths.JournalPath)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			sessions, err := store.RecentSessions(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No conversions recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				converted, skipped, err := countRunOutcomes(cmd, store, s.ID)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					s.StartedAt.Local().Format(time.DateTime),
					s.Subject,
					s.Session,
					string(s.Status),
					strconv.Itoa(converted),
					strconv.Itoa(skipped),
					s.Message,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Subject", "Session", "Status", "Converted", "Skipped", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of sessions to show")
	return cmd
}

func countRunOutcomes(cmd *cobra.Command, store *journal.Store, sessionID int64) (converted, skipped int, err error) {
	runs, err := store.RunsForSession(cmd.Context(), sessionID)
	if err != nil {
		return 0, 0, fmt.Errorf("read journal runs: %w", err)
	}
	for _, run := range runs {
		switch run.Status {
		case journal.RunConverted:
			converted++
		case journal.RunSkipped:
			skipped++
		}
	}
	return converted, skipped, nil
}
