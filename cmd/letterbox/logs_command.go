package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"letterbox/internal/logging"
	"letterbox/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var raw bool
	var filter logs.Filter

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the letterbox log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if strings.TrimSpace(cfg.Paths.LogDir) == "" {
				return errors.New("paths.log_dir is not set; no log file is written")
			}
			filter.Pass = strings.ToLower(strings.TrimSpace(filter.Pass))

			out := cmd.OutOrStdout()
			reader := logs.NewReader(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
			keep := func(line string) bool {
				if filter.Empty() {
					return true
				}
				rec, ok := logs.ParseRecord(line)
				return ok && filter.Match(rec)
			}

			initial, err := reader.LastMatching(lines, keep)
			if err != nil {
				return err
			}
			printLogLines(out, initial, raw)
			if !follow {
				return nil
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			err = reader.Follow(signalCtx, 250*time.Millisecond, func(chunk []string) {
				matched := chunk[:0]
				for _, line := range chunk {
					if keep(line) {
						matched = append(matched, line)
					}
				}
				printLogLines(out, matched, raw)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON lines unformatted")
	cmd.Flags().StringVar(&filter.ClipID, "clip", "", "Only show lines for this ClipID")
	cmd.Flags().StringVar(&filter.RunID, "run", "", "Only show lines for this run (id prefix)")
	cmd.Flags().StringVar(&filter.Pass, "pass", "", "Only show lines for this pass (detect or crop)")
	return cmd
}

func printLogLines(out io.Writer, lines []string, raw bool) {
	for _, line := range lines {
		if !raw {
			if rec, ok := logs.ParseRecord(line); ok {
				line = rec.Format()
			}
		}
		fmt.Fprintln(out, line)
	}
}
