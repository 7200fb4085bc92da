package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"letterbox/internal/logs"
)

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
}

func TestReaderLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letterbox.log")
	appendLog(t, path, "a\nb\nc\n")

	r := logs.NewReader(path)
	lines, err := r.Last(2)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if r.Offset() != 6 {
		t.Fatalf("expected offset at end of file, got %d", r.Offset())
	}
}

func TestReaderMissingFile(t *testing.T) {
	r := logs.NewReader(filepath.Join(t.TempDir(), "absent.log"))
	lines, err := r.Last(10)
	if err != nil || len(lines) != 0 {
		t.Fatalf("expected no lines and no error, got %v %v", lines, err)
	}
	if lines, err := r.Next(); err != nil || len(lines) != 0 {
		t.Fatalf("expected no lines and no error, got %v %v", lines, err)
	}
}

func TestReaderNextHoldsPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letterbox.log")
	appendLog(t, path, "one\ntw")

	r := logs.NewReader(path)
	lines, err := r.Next()
	if err != nil || len(lines) != 1 || lines[0] != "one" {
		t.Fatalf("unexpected first read: %#v %v", lines, err)
	}
	appendLog(t, path, "o\nthree\n")
	lines, err = r.Next()
	if err != nil || len(lines) != 2 || lines[0] != "two" || lines[1] != "three" {
		t.Fatalf("unexpected second read: %#v %v", lines, err)
	}
}

func TestReaderRestartsAfterTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letterbox.log")
	appendLog(t, path, "old line that is long\n")
	r := logs.NewReader(path)
	if _, err := r.Last(1); err != nil {
		t.Fatalf("Last: %v", err)
	}
	if err := os.WriteFile(path, []byte("new\n"), 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	lines, err := r.Next()
	if err != nil || len(lines) != 1 || lines[0] != "new" {
		t.Fatalf("expected read from start after truncate, got %#v %v", lines, err)
	}
}

func TestReaderFollow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letterbox.log")
	appendLog(t, path, "start\n")
	r := logs.NewReader(path)
	if _, err := r.Last(1); err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got := make(chan []string, 1)
	go func() {
		time.Sleep(50 * time.Millisecond)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		_, _ = f.WriteString("later\n")
		f.Close()
	}()
	err := r.Follow(ctx, 10*time.Millisecond, func(lines []string) {
		got <- lines
		cancel()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	lines := <-got
	if len(lines) != 1 || lines[0] != "later" {
		t.Fatalf("unexpected follow lines: %#v", lines)
	}
}

func TestReaderLastMatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letterbox.log")
	appendLog(t, path, "keep 1\nskip\nkeep 2\nkeep 3\nskip\n")

	lines, err := logs.NewReader(path).LastMatching(2, func(line string) bool {
		return line != "skip"
	})
	if err != nil {
		t.Fatalf("LastMatching: %v", err)
	}
	if len(lines) != 2 || lines[0] != "keep 2" || lines[1] != "keep 3" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}
