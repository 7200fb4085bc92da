package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"letterbox/internal/config"
	"letterbox/internal/crop"
	"letterbox/internal/deps"
	"letterbox/internal/logging"
	"letterbox/internal/media/ffmpeg"
	"letterbox/internal/media/ffprobe"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "inspect <video>",
		Short: "Run crop detection on a single file without touching the table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			path, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("inspect %s: %w", path, err)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			fmt.Fprintln(out, sectionHeader("Inspect", colorize))
			fmt.Fprintln(out, statusLine("Source", statusInfo, path, colorize))

			width, height, sized := probeSize(cmd, cfg, path, colorize)

			client, err := ffmpeg.NewFromConfig(cfg, ffmpeg.WithLogger(logger))
			if err != nil {
				return err
			}
			detection, err := client.DetectCrop(signalCtx, path)
			if err != nil {
				fmt.Fprintln(out, statusLine("Detection", statusError, err.Error(), colorize))
				return err
			}
			if !detection.Found {
				fmt.Fprintln(out, statusLine("Detection", statusOK, "no border detected", colorize))
				return nil
			}

			rect, err := crop.Parse(detection.Crop)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, statusLine("Crop", statusOK,
				fmt.Sprintf("%s (%d of %d samples)", detection.Crop, detection.Candidates[0].Count, detection.Samples), colorize))
			if ratio := crop.MatchStandardRatio(rect.AspectRatio()); ratio != "" {
				fmt.Fprintln(out, statusLine("Aspect", statusInfo, ratio, colorize))
			}
			if sized {
				fmt.Fprintln(out, statusLine("Removed", statusInfo, removedSummary(width, height, rect), colorize))
			}
			action := "transcode with " + rect.Filter()
			if rect.Degenerate(cfg.Crop.DegenerateThreshold) {
				action = fmt.Sprintf("move unchanged (offset sum %d <= %d)", rect.OffsetSum(), cfg.Crop.DegenerateThreshold)
			}
			fmt.Fprintln(out, statusLine("Crop pass", statusInfo, action, colorize))

			candidates := detection.Candidates
			if !showAll && len(candidates) > 5 {
				candidates = candidates[:5]
			}
			rows := make([][]string, 0, len(candidates))
			for _, c := range candidates {
				rows = append(rows, []string{c.Crop, strconv.Itoa(c.Count), fmt.Sprintf("%.1f%%", c.Percent)})
			}
			view := tableView{
				title:   "Candidates",
				headers: []string{"Crop", "Samples", "Share"},
				rows:    rows,
				numeric: map[int]bool{1: true, 2: true},
			}
			fmt.Fprintln(out, view.render())
			logger.Debug("inspect complete",
				logging.String("path", path),
				logging.String("crop", detection.Crop),
				logging.Int("samples", detection.Samples),
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showAll, "all", false, "List every candidate rectangle")
	return cmd
}

// probeSize reports the source resolution when ffprobe is available.
func probeSize(cmd *cobra.Command, cfg *config.Config, path string, colorize bool) (int, int, bool) {
	out := cmd.OutOrStdout()
	probe := deps.CheckBinaries([]deps.Requirement{{Name: "FFprobe", Command: cfg.FFprobeBinary(), Optional: true}})[0]
	if !probe.Available {
		fmt.Fprintln(out, statusLine("Resolution", statusWarn, probe.Detail, colorize))
		return 0, 0, false
	}
	result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), path)
	if err != nil {
		fmt.Fprintln(out, statusLine("Resolution", statusWarn, err.Error(), colorize))
		return 0, 0, false
	}
	width, height, ok := result.VideoSize()
	if !ok {
		fmt.Fprintln(out, statusLine("Resolution", statusWarn, "no video stream", colorize))
		return 0, 0, false
	}
	detail := fmt.Sprintf("%dx%d", width, height)
	if fps := result.FrameRate(); fps > 0 {
		detail += fmt.Sprintf(" @ %.3g fps", fps)
	}
	if seconds := result.DurationSeconds(); seconds > 0 {
		detail += fmt.Sprintf(", %.0fs", seconds)
	}
	fmt.Fprintln(out, statusLine("Resolution", statusInfo, detail, colorize))
	return width, height, true
}

func removedSummary(width, height int, rect crop.Rect) string {
	removedW := width - rect.Width
	removedH := height - rect.Height
	total := width * height
	if total <= 0 {
		return "unknown"
	}
	kept := rect.Width * rect.Height
	share := 100 * float64(total-kept) / float64(total)
	return fmt.Sprintf("%d px horizontally, %d px vertically (%.1f%% of the frame)", removedW, removedH, share)
}
