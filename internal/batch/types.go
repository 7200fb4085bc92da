package batch

import (
	"context"
	"time"

	"letterbox/internal/journal"
	"letterbox/internal/media/ffmpeg"
)

// Pass names one of the two batch operations.
type Pass string

const (
	PassDetect Pass = "detect"
	PassCrop   Pass = "crop"
)

// Status is the lifecycle state of a work item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Detector runs crop detection on one source file.
type Detector interface {
	DetectCrop(ctx context.Context, path string) (ffmpeg.Detection, error)
}

// Cropper produces a cropped (or relocated) destination file.
type Cropper interface {
	Crop(ctx context.Context, src, dst, cropSize string) (ffmpeg.CropOutcome, error)
}

// Tool is the external video tool used by both passes.
type Tool interface {
	Detector
	Cropper
}

// Journal records run history. *journal.Store satisfies it.
type Journal interface {
	BeginRun(ctx context.Context, run journal.Run) error
	RecordItem(ctx context.Context, item journal.Item) error
	FinishRun(ctx context.Context, run journal.Run) error
}

// Observer receives progress notifications. Calls arrive from the
// orchestrator goroutine only.
type Observer interface {
	OnPassStart(pass Pass, total int)
	OnItemDone(done, total int, result ItemResult)
}

// WorkItem is one eligible row scheduled for a pass.
type WorkItem struct {
	Index       int
	ClipID      string
	Stem        string
	Source      string
	Destination string
	CropSize    string
}

// ItemResult is the outcome of one row in a pass.
type ItemResult struct {
	ClipID   string
	Status   Status
	Message  string
	Crop     string
	Moved    bool
	Duration time.Duration
	Err      error
}

// Report summarizes a pass.
type Report struct {
	RunID    string
	Pass     Pass
	Started  time.Time
	Finished time.Time
	Workers  int
	Canceled bool
	Items    []ItemResult
}

// Counts tallies item outcomes.
type Counts struct {
	Succeeded int
	Failed    int
	Skipped   int
	Total     int
}

// Counts returns the per-status totals of the report.
func (r Report) Counts() Counts {
	var c Counts
	for _, item := range r.Items {
		switch item.Status {
		case StatusSucceeded:
			c.Succeeded++
		case StatusFailed:
			c.Failed++
		case StatusSkipped:
			c.Skipped++
		}
	}
	c.Total = len(r.Items)
	return c
}

// Duration returns the wall-clock time of the pass.
func (r Report) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
