package main

import (
	"bytes"
	"strings"
	"testing"

	"letterbox/internal/batch"
)

func TestProgressObserverPassesLinesThroughWithoutBar(t *testing.T) {
	var buf bytes.Buffer
	obs := newProgressObserver(&buf)
	if _, err := obs.Write([]byte("line one\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "line one\n" {
		t.Fatalf("expected unchanged line, got %q", buf.String())
	}
}

func TestProgressObserverClearsBarAroundLogLines(t *testing.T) {
	var buf bytes.Buffer
	obs := newProgressObserver(&buf)
	obs.OnPassStart(batch.PassDetect, 3)
	obs.OnItemDone(1, 3, batch.ItemResult{})

	buf.Reset()
	const line = "WARN batch: [vidA/0001] source missing\n"
	if _, err := obs.Write([]byte(line)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	idx := strings.Index(out, line)
	if idx <= 0 {
		t.Fatalf("expected bar to be cleared before the log line, got %q", out)
	}
	if out[idx-1] != '\r' {
		t.Fatalf("expected log line to start at column 0, got %q", out[:idx])
	}
	if rest := out[idx+len(line):]; !strings.Contains(rest, "Detect") {
		t.Fatalf("expected bar to be redrawn after the log line, got %q", rest)
	}

	obs.OnItemDone(3, 3, batch.ItemResult{})
	buf.Reset()
	if _, err := obs.Write([]byte(line)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != line {
		t.Fatalf("expected finished bar to stay out of the way, got %q", buf.String())
	}
}
