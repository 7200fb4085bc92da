package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"letterbox/internal/config"
	"letterbox/internal/fsx"
	"letterbox/internal/journal"
	"letterbox/internal/logging"
	"letterbox/internal/metadata"
	"letterbox/internal/services"
)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for per-item status lines.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver registers a progress observer.
func WithObserver(obs Observer) Option {
	return func(r *Runner) {
		r.observer = obs
	}
}

// WithJournal records every pass in j.
func WithJournal(j Journal) Option {
	return func(r *Runner) {
		r.journal = j
	}
}

// Runner executes detection and cropping passes over the metadata table.
type Runner struct {
	cfg      *config.Config
	tool     Tool
	logger   *slog.Logger
	observer Observer
	journal  Journal
	now      func() time.Time
}

// New constructs a Runner. The metadata path, directories, and worker count
// are read from cfg at the start of every pass.
func New(cfg *config.Config, tool Tool, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if tool == nil {
		return nil, errors.New("video tool required")
	}
	r := &Runner{
		cfg:    cfg,
		tool:   tool,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "batch")
	return r, nil
}

// Detect runs the detection pass: every row without a crop size whose source
// exists is sampled, and found rectangles are written back to the table in a
// single save once all items finish.
func (r *Runner) Detect(ctx context.Context) (Report, error) {
	return r.run(ctx, PassDetect)
}

// Crop runs the cropping pass: every row whose source exists and whose
// destination does not yet exist produces the destination file. The table is
// not modified.
func (r *Runner) Crop(ctx context.Context) (Report, error) {
	return r.run(ctx, PassCrop)
}

func (r *Runner) run(ctx context.Context, pass Pass) (Report, error) {
	paths := r.cfg.Paths
	lock, err := acquireLock(r.cfg.LockPath())
	switch {
	case err == nil:
		defer func() {
			if err := lock.Unlock(); err != nil {
				r.logger.Warn("failed to release table lock", logging.Error(err))
			}
		}()
	case pass == PassCrop && errors.Is(err, errLockUnavailable):
		// Crop never writes the table, and nothing can save it here either.
		r.logger.Warn("metadata directory is read-only; cropping without table lock",
			logging.String(logging.FieldPass, string(pass)),
			logging.Error(err),
		)
	default:
		return Report{}, err
	}

	table, err := metadata.Load(paths.Metadata)
	if err != nil {
		return Report{}, services.Wrap(services.ErrConfiguration, string(pass), "load metadata", "", err)
	}

	var p plan
	switch pass {
	case PassDetect:
		p = planDetect(table, paths.RawDir)
	case PassCrop:
		if err := os.MkdirAll(paths.CropDir, 0o755); err != nil {
			return Report{}, fmt.Errorf("create crop directory: %w", err)
		}
		p = planCrop(table, paths.RawDir, paths.CropDir)
	default:
		return Report{}, fmt.Errorf("unknown pass %q", pass)
	}

	workers := r.cfg.Workflow.Workers
	if workers < 1 {
		workers = 1
	}
	report := Report{
		RunID:   uuid.NewString(),
		Pass:    pass,
		Started: r.now(),
		Workers: workers,
		Items:   make([]ItemResult, 0, len(p.resolved)+len(p.items)),
	}
	ctx = services.WithPass(services.WithRunID(ctx, report.RunID), string(pass))
	logger := logging.WithContext(ctx, r.logger)

	if r.journal != nil {
		if err := r.journal.BeginRun(ctx, journal.Run{ID: report.RunID, Pass: string(pass), StartedAt: report.Started, Workers: workers}); err != nil {
			return Report{}, fmt.Errorf("journal begin run: %w", err)
		}
	}

	logger.Info("pass started",
		logging.Int("rows", table.Len()),
		logging.Int("eligible", len(p.items)),
		logging.Int("workers", workers),
	)
	for _, res := range p.resolved {
		r.record(ctx, logger, &report, res)
	}
	if r.observer != nil {
		r.observer.OnPassStart(pass, len(p.items))
	}

	work := r.detectOne
	if pass == PassCrop {
		work = r.cropOne
	}
	done := 0
	for res := range dispatch(ctx, p.items, workers, work) {
		done++
		if pass == PassDetect && res.Status == StatusSucceeded && res.Crop != "" {
			if err := table.SetCropSize(res.ClipID, res.Crop); err != nil {
				res.Status = StatusFailed
				res.Err = err
				res.Message = err.Error()
			}
		}
		r.record(ctx, logger, &report, res)
		if r.observer != nil {
			r.observer.OnItemDone(done, len(p.items), res)
		}
	}

	runErr := ctx.Err()
	if runErr == nil && pass == PassDetect && table.Dirty() {
		if err := table.Save(paths.Metadata); err != nil {
			runErr = fmt.Errorf("save metadata: %w", err)
		}
	}
	report.Finished = r.now()
	report.Canceled = errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded)
	r.finishJournal(context.WithoutCancel(ctx), logger, report)

	counts := report.Counts()
	logger.Info("pass finished",
		logging.Int("succeeded", counts.Succeeded),
		logging.Int("failed", counts.Failed),
		logging.Int("skipped", counts.Skipped),
		logging.Duration("elapsed", report.Duration()),
		logging.Bool("canceled", report.Canceled),
	)
	return report, runErr
}

func (r *Runner) detectOne(ctx context.Context, item WorkItem) ItemResult {
	ctx = services.WithClipID(ctx, item.ClipID)
	detection, err := r.tool.DetectCrop(ctx, item.Source)
	if err != nil {
		return failed(err)
	}
	if !detection.Found {
		return ItemResult{Status: StatusSucceeded, Message: "no border detected"}
	}
	return ItemResult{
		Status:  StatusSucceeded,
		Message: fmt.Sprintf("crop detected from %d samples", detection.Samples),
		Crop:    detection.Crop,
	}
}

func (r *Runner) cropOne(ctx context.Context, item WorkItem) ItemResult {
	ctx = services.WithClipID(ctx, item.ClipID)
	if item.CropSize == "" {
		if !r.cfg.Crop.MoveUnbordered {
			return failed(services.Wrap(services.ErrValidation, string(PassCrop), "crop",
				"no crop size recorded (no border detected, or detect not run); nothing to crop", nil))
		}
		if err := fsx.Move(item.Source, item.Destination); err != nil {
			return failed(fmt.Errorf("relocate source: %w", err))
		}
		return ItemResult{Status: StatusSucceeded, Moved: true, Message: "moved without cropping (no border recorded)"}
	}
	outcome, err := r.tool.Crop(ctx, item.Source, item.Destination, item.CropSize)
	if err != nil {
		return failed(err)
	}
	res := ItemResult{Status: StatusSucceeded, Crop: item.CropSize, Moved: outcome.Moved}
	if outcome.Moved {
		res.Message = "moved without cropping (border within threshold)"
	} else {
		res.Message = "cropped"
	}
	return res
}

func failed(err error) ItemResult {
	return ItemResult{Status: StatusFailed, Message: err.Error(), Err: err}
}

// record appends res to the report, writes its status line, and journals it.
func (r *Runner) record(ctx context.Context, logger *slog.Logger, report *Report, res ItemResult) {
	report.Items = append(report.Items, res)

	attrs := []logging.Attr{
		logging.String(logging.FieldClipID, res.ClipID),
		logging.String("status", string(res.Status)),
	}
	if res.Crop != "" {
		attrs = append(attrs, logging.String("crop", res.Crop))
	}
	if res.Duration > 0 {
		attrs = append(attrs, logging.Duration("elapsed", res.Duration))
	}
	switch res.Status {
	case StatusFailed:
		attrs = append(attrs,
			logging.Error(res.Err),
			logging.String(logging.FieldErrorHint, services.Hint(res.Err)),
		)
		logging.WarnWithContext(logger, res.Message, "item_failed", attrs...)
	case StatusSkipped:
		logger.Debug(res.Message, logging.Args(attrs...)...)
	default:
		logger.Info(res.Message, logging.Args(attrs...)...)
	}

	if r.journal == nil {
		return
	}
	err := r.journal.RecordItem(context.WithoutCancel(ctx), journal.Item{
		RunID:    report.RunID,
		ClipID:   res.ClipID,
		Status:   string(res.Status),
		Message:  res.Message,
		Crop:     res.Crop,
		Duration: res.Duration,
	})
	if err != nil {
		logger.Warn("journal record failed", logging.Error(err))
	}
}

func (r *Runner) finishJournal(ctx context.Context, logger *slog.Logger, report Report) {
	if r.journal == nil {
		return
	}
	counts := report.Counts()
	err := r.journal.FinishRun(ctx, journal.Run{
		ID:         report.RunID,
		Pass:       string(report.Pass),
		StartedAt:  report.Started,
		FinishedAt: report.Finished,
		Workers:    report.Workers,
		Succeeded:  counts.Succeeded,
		Failed:     counts.Failed,
		Skipped:    counts.Skipped,
		Canceled:   report.Canceled,
	})
	if err != nil {
		logger.Warn("journal finish failed", logging.Error(err))
	}
}
