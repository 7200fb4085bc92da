package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"letterbox/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var prune int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded detect and crop runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			path := cfg.JournalPath()
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			store, err := journal.Open(path)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			if prune > 0 {
				removed, err := store.Prune(cmd.Context(), prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d run(s)\n", removed)
				return nil
			}

			if id := strings.TrimSpace(runID); id != "" {
				run, err := store.GetRun(cmd.Context(), id)
				if err != nil {
					return err
				}
				items, err := store.RunItems(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderRunItems(run, items))
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show the items of one run (id or unique prefix)")
	cmd.Flags().IntVar(&prune, "prune", 0, "Delete all but the newest N runs")
	return cmd
}

func renderRuns(runs []journal.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			titleLabel(run.Pass),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			runDuration(run),
			strconv.Itoa(run.Workers),
			strconv.Itoa(run.Succeeded),
			strconv.Itoa(run.Failed),
			strconv.Itoa(run.Skipped),
			runState(run),
		})
	}
	view := tableView{
		headers: []string{"Run", "Pass", "Started", "Elapsed", "Workers", "OK", "Failed", "Skipped", "State"},
		rows:    rows,
		numeric: map[int]bool{4: true, 5: true, 6: true, 7: true},
	}
	return view.render()
}

func renderRunItems(run journal.Run, items []journal.Item) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		elapsed := ""
		if item.Duration > 0 {
			elapsed = formatElapsed(item.Duration)
		}
		rows = append(rows, []string{
			item.ClipID,
			titleLabel(item.Status),
			item.Crop,
			elapsed,
			truncate(item.Message, maxMessageWidth),
		})
	}
	view := tableView{
		title:   fmt.Sprintf("%s run %s (%s)", titleLabel(run.Pass), run.ID, runState(run)),
		headers: []string{"Clip", "Status", "Crop", "Elapsed", "Message"},
		rows:    rows,
		numeric: map[int]bool{3: true},
	}
	return view.render()
}

func runState(run journal.Run) string {
	switch {
	case !run.Finished():
		return "incomplete"
	case run.Canceled:
		return "interrupted"
	default:
		return "complete"
	}
}

func runDuration(run journal.Run) string {
	if !run.Finished() {
		return "-"
	}
	return formatElapsed(run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
}
