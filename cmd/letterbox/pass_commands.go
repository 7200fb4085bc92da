package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"letterbox/internal/batch"
	"letterbox/internal/deps"
	"letterbox/internal/journal"
	"letterbox/internal/logging"
	"letterbox/internal/media/ffmpeg"
	"letterbox/internal/preflight"
	"letterbox/internal/services"
)

var errItemsFailed = errors.New("one or more items failed")

func newDetectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Detect crop rectangles for rows without a CropSize",
		Long: "Sample each source video with ffmpeg cropdetect and record the most frequent\n" +
			"rectangle in the metadata table. Rows that already have a CropSize are skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasses(cmd, ctx, batch.PassDetect)
		},
	}
}

func newCropCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "crop",
		Short: "Produce cropped copies for rows with a recorded CropSize",
		Long: "Transcode each source with its recorded crop rectangle into the crop directory.\n" +
			"Sources whose border offsets fall within crop.degenerate_threshold are moved instead.\n" +
			"Rows without a CropSize fail unless crop.move_unbordered is set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasses(cmd, ctx, batch.PassCrop)
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run detection followed by cropping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasses(cmd, ctx, batch.PassDetect, batch.PassCrop)
		},
	}
}

func runPasses(cmd *cobra.Command, ctx *commandContext, passes ...batch.Pass) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if missing := deps.MissingRequired(deps.CheckBinaries(deps.Requirements(cfg))); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, status := range missing {
			names = append(names, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
		}
		return services.Wrap(services.ErrConfiguration, "preflight", "dependencies",
			"missing required tools: "+strings.Join(names, ", "), nil)
	}
	passNames := make([]string, 0, len(passes))
	for _, pass := range passes {
		passNames = append(passNames, string(pass))
	}
	checks := preflight.RunAll(cfg, passNames...)
	if failed := preflight.Failed(checks); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, res := range failed {
			details = append(details, fmt.Sprintf("%s: %s", res.Name, res.Detail))
		}
		return services.Wrap(services.ErrConfiguration, "preflight", "filesystem", strings.Join(details, "; "), nil)
	}

	var progress *progressObserver
	if !ctx.flags.noProgress && isTerminal(os.Stderr) {
		progress = newProgressObserver(os.Stderr)
		ctx.console = progress
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	for _, res := range preflight.Warnings(checks) {
		logger.Warn("preflight warning",
			logging.String("check", res.Name),
			logging.String("detail", res.Detail),
			logging.String(logging.FieldEventType, "preflight_warning"),
		)
	}

	client, err := ffmpeg.NewFromConfig(cfg, ffmpeg.WithLogger(logger))
	if err != nil {
		return err
	}

	opts := []batch.Option{batch.WithLogger(logger)}
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.JournalPath())
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer store.Close()
		opts = append(opts, batch.WithJournal(store))
	}
	if progress != nil {
		opts = append(opts, batch.WithObserver(progress))
	}

	runner, err := batch.New(cfg, client, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	anyFailed := false
	for _, pass := range passes {
		var report batch.Report
		switch pass {
		case batch.PassDetect:
			report, err = runner.Detect(signalCtx)
		case batch.PassCrop:
			report, err = runner.Crop(signalCtx)
		}
		if report.RunID != "" {
			fmt.Fprintln(out, renderReport(report, isTerminal(out)))
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Warn("pass interrupted; table left unchanged",
					logging.String(logging.FieldPass, string(pass)),
					logging.String(logging.FieldEventType, "pass_canceled"),
				)
			}
			return err
		}
		if report.Counts().Failed > 0 {
			anyFailed = true
		}
	}
	if anyFailed {
		return errItemsFailed
	}
	return nil
}
