package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"letterbox/internal/config"
	"letterbox/internal/crop"
	"letterbox/internal/fsx"
	"letterbox/internal/logging"
	"letterbox/internal/services"
)

const (
	defaultSeek     = 900 * time.Second
	defaultDuration = 60 * time.Second
	tailLines       = 5
)

// Executor abstracts command execution for testability. onLine receives every
// line the process writes to stdout or stderr.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithDetectWindow overrides the sampled window. A negative seek or a
// non-positive duration keeps the default.
func WithDetectWindow(seek, duration time.Duration) Option {
	return func(c *Client) {
		if seek >= 0 {
			c.seek = seek
		}
		if duration > 0 {
			c.duration = duration
		}
	}
}

// WithTranscode sets the hardware acceleration method and video encoder used
// when a crop has to be applied. An empty hwaccel omits the flag.
func WithTranscode(hwaccel, codec string) Option {
	return func(c *Client) {
		c.hwaccel = strings.TrimSpace(hwaccel)
		if codec = strings.TrimSpace(codec); codec != "" {
			c.codec = codec
		}
	}
}

// WithDegenerateThreshold sets the offset sum at or below which a crop is
// treated as a no-op and the source is relocated.
func WithDegenerateThreshold(threshold int) Option {
	return func(c *Client) {
		if threshold >= 0 {
			c.threshold = threshold
		}
	}
}

// WithLogger attaches a logger for diagnostic output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps the ffmpeg CLI for crop detection and cropping.
type Client struct {
	binary    string
	seek      time.Duration
	duration  time.Duration
	hwaccel   string
	codec     string
	threshold int
	exec      Executor
	logger    *slog.Logger
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	client := &Client{
		binary:    binary,
		seek:      defaultSeek,
		duration:  defaultDuration,
		hwaccel:   "cuda",
		codec:     "h264_nvenc",
		threshold: crop.DefaultDegenerateThreshold,
		exec:      commandExecutor{},
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig constructs a client from the ffmpeg and crop configuration
// sections. Additional options are applied last.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	base := []Option{
		WithDetectWindow(
			time.Duration(cfg.FFmpeg.DetectSeekSeconds)*time.Second,
			time.Duration(cfg.FFmpeg.DetectDurationSeconds)*time.Second,
		),
		WithTranscode(cfg.FFmpeg.HWAccel, cfg.FFmpeg.VideoCodec),
		WithDegenerateThreshold(cfg.Crop.DegenerateThreshold),
	}
	return New(cfg.FFmpegBinary(), append(base, opts...)...)
}

// Binary returns the configured ffmpeg executable.
func (c *Client) Binary() string {
	return c.binary
}

// Detection is the outcome of a cropdetect run.
type Detection struct {
	// Crop is the most frequent W:H:X:Y token. Empty when Found is false.
	Crop       string
	Found      bool
	Samples    int
	Candidates []crop.Candidate
}

// DetectCrop samples the configured window of path with ffmpeg's cropdetect
// filter and returns the most frequently suggested rectangle. A run that
// produces no suggestions is not an error; Found is false.
func (c *Client) DetectCrop(ctx context.Context, path string) (Detection, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Detection{}, services.Wrap(services.ErrValidation, "detect", "cropdetect", "source path required", nil)
	}

	var tokens []string
	tail := newLineTail(tailLines)
	err := c.exec.Run(ctx, c.binary, c.detectArgs(path), func(line string) {
		tail.add(line)
		tokens = append(tokens, crop.ParseLine(line)...)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Detection{}, ctxErr
		}
		if len(tokens) == 0 {
			return Detection{}, services.Wrap(services.ErrExternalTool, "detect", "cropdetect", tail.summary(), err)
		}
		c.logger.Debug("ffmpeg exited with error after producing crop samples",
			logging.String("path", path),
			logging.Int("samples", len(tokens)),
			logging.Error(err),
		)
	}

	detection := Detection{Samples: len(tokens)}
	detection.Crop, detection.Found = crop.MostFrequent(tokens)
	if detection.Found {
		detection.Candidates = crop.Tally(tokens)
	}
	return detection, nil
}

func (c *Client) detectArgs(path string) []string {
	return []string{
		"-hide_banner",
		"-ss", formatSeconds(c.seek),
		"-i", path,
		"-vf", "cropdetect",
		"-t", formatSeconds(c.duration),
		"-an",
		"-f", "null",
		"-",
	}
}

// CropOutcome describes how Crop produced the destination.
type CropOutcome struct {
	// Moved is true when the source was relocated without transcoding.
	Moved bool
}

// Crop produces dst from src using the W:H:X:Y rectangle in cropSize. When
// the rectangle's offsets are within the degenerate threshold the source is
// moved to dst unchanged; otherwise ffmpeg transcodes a cropped copy and the
// source stays in place.
func (c *Client) Crop(ctx context.Context, src, dst, cropSize string) (CropOutcome, error) {
	rect, err := crop.Parse(cropSize)
	if err != nil {
		return CropOutcome{}, services.Wrap(services.ErrValidation, "crop", "parse crop size", "", err)
	}

	if rect.Degenerate(c.threshold) {
		if err := fsx.Move(src, dst); err != nil {
			return CropOutcome{}, fmt.Errorf("relocate source: %w", err)
		}
		return CropOutcome{Moved: true}, nil
	}

	tail := newLineTail(tailLines)
	err = c.exec.Run(ctx, c.binary, c.cropArgs(src, dst, rect), tail.add)
	if err != nil {
		if removeErr := os.Remove(dst); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			c.logger.Warn("failed to remove partial output",
				logging.String("path", dst),
				logging.Error(removeErr),
				logging.String(logging.FieldEventType, "partial_output_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "delete the file before the next crop run"),
			)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return CropOutcome{}, ctxErr
		}
		return CropOutcome{}, services.Wrap(services.ErrExternalTool, "crop", "transcode", tail.summary(), err)
	}
	return CropOutcome{}, nil
}

func (c *Client) cropArgs(src, dst string, rect crop.Rect) []string {
	args := []string{"-hide_banner"}
	if c.hwaccel != "" {
		args = append(args, "-hwaccel", c.hwaccel)
	}
	return append(args,
		"-i", src,
		"-vf", rect.Filter(),
		"-c:a", "copy",
		"-c:v", c.codec,
		"-y", dst,
	)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// lineTail keeps the last few output lines for error messages.
type lineTail struct {
	lines []string
	limit int
}

func newLineTail(limit int) *lineTail {
	return &lineTail{limit: limit}
}

func (t *lineTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if len(t.lines) == t.limit {
		t.lines = t.lines[1:]
	}
	t.lines = append(t.lines, line)
}

func (t *lineTail) summary() string {
	if len(t.lines) == 0 {
		return "ffmpeg produced no output"
	}
	return strings.Join(t.lines, " | ")
}
