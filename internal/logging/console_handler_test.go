package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(level)
	return slog.New(newPrettyHandler(buf, lvl, false))
}

func TestPrettyHandlerLayout(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo)

	logger.With(String(FieldComponent, "batch")).Info("crop detected",
		String(FieldClipID, "vidA/0001"),
		String("crop", "1920:800:0:140"),
		Duration("elapsed", 1500*time.Millisecond),
		Error(errors.New("exit status 1")),
	)

	line := buf.String()
	for _, want := range []string{
		"INFO  batch: [vidA/0001] crop detected",
		"crop=1920:800:0:140",
		"elapsed=1.5s",
		`error="exit status 1"`,
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") || strings.Contains(line, "clip_id=") {
		t.Fatalf("component and clip should be rendered in the header: %q", line)
	}
}

func TestPrettyHandlerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "WARN  shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestPrettyHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo)
	logger.WithGroup("ffmpeg").Info("run", slog.Group("args", String("vf", "cropdetect")), Int("exit", 0))
	if !strings.Contains(buf.String(), "ffmpeg.args.vf=cropdetect") || !strings.Contains(buf.String(), "ffmpeg.exit=0") {
		t.Fatalf("unexpected grouped output %q", buf.String())
	}
}

func TestFanoutHandlerDeliversToEnabledHandlers(t *testing.T) {
	var infoBuf, errBuf bytes.Buffer
	info := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	errs := slog.NewJSONHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError})

	logger := slog.New(newFanoutHandler(nil, info, errs))
	logger.Info("first")
	logger.Error("second")

	if strings.Count(infoBuf.String(), "\n") != 2 {
		t.Fatalf("expected two info lines, got %q", infoBuf.String())
	}
	if strings.Count(errBuf.String(), "\n") != 1 || !strings.Contains(errBuf.String(), "second") {
		t.Fatalf("expected only the error line, got %q", errBuf.String())
	}
}

func TestFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for nil handlers")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if newFanoutHandler(nil, inner) != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
