package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"letterbox/internal/config"
)

// LogFileName is the name of the JSON log file written under paths.log_dir.
const LogFileName = "letterbox.log"

// Options describes logger construction parameters.
type Options struct {
	Level string
	// Format applies to stdout/stderr outputs: "console" (default) or "json".
	Format string
	// OutputPaths lists "stdout", "stderr" or file paths. Files always
	// receive JSON. Defaults to stderr.
	OutputPaths []string
	Development bool
	// Console, when set, replaces os.Stdout/os.Stderr for the console
	// outputs. The CLI uses it to keep log lines clear of the progress bar.
	Console io.Writer
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	addSource := opts.Development || levelVar.Level() <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	paths := opts.OutputPaths
	if len(paths) == 0 {
		paths = []string{"stderr"}
	}

	var handlers []slog.Handler
	seen := make(map[string]struct{}, len(paths))
	for _, raw := range paths {
		target := strings.TrimSpace(raw)
		if target == "" {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}

		switch target {
		case "stdout", "stderr":
			var w io.Writer = os.Stderr
			switch {
			case opts.Console != nil:
				w = opts.Console
			case target == "stdout":
				w = os.Stdout
			}
			if format == "json" {
				handlers = append(handlers, newJSONHandler(w, levelVar, addSource))
			} else {
				handlers = append(handlers, newPrettyHandler(w, levelVar, addSource))
			}
		default:
			file, err := openLogFile(target)
			if err != nil {
				return nil, err
			}
			handlers = append(handlers, newJSONHandler(file, levelVar, true))
		}
	}
	return slog.New(newFanoutHandler(handlers...)), nil
}

// NewFromConfig creates a logger writing to stderr and, when paths.log_dir is
// set, to letterbox.log inside it.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	return NewFromConfigWithConsole(cfg, nil)
}

// NewFromConfigWithConsole is NewFromConfig with console output sent to w
// instead of stderr. A nil w means stderr.
func NewFromConfigWithConsole(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Console: w})
	}
	outputs := []string{"stderr"}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		outputs = append(outputs, filepath.Join(dir, LogFileName))
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		Console:     w,
	})
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339Nano))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	})
}
