package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"letterbox/internal/journal"
)

func openStore(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(filepath.Join(t.TempDir(), "state", "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	run := journal.Run{ID: "0f6c1c9e-1111-4a4a-9c9c-000000000001", Pass: "detect", StartedAt: started, Workers: 4}
	if err := store.BeginRun(ctx, run); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	items := []journal.Item{
		{RunID: run.ID, ClipID: "vidA/0001", Status: "succeeded", Crop: "1920:800:0:140", Duration: 2500 * time.Millisecond},
		{RunID: run.ID, ClipID: "vidB/0001", Status: "skipped", Message: "source missing"},
		{RunID: run.ID, ClipID: "vidC/0001", Status: "failed", Message: "exit status 1", Duration: 40 * time.Millisecond},
	}
	for _, item := range items {
		if err := store.RecordItem(ctx, item); err != nil {
			t.Fatalf("RecordItem: %v", err)
		}
	}

	run.FinishedAt = started.Add(time.Minute)
	run.Succeeded, run.Skipped, run.Failed = 1, 1, 1
	if err := store.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !got.Finished() || got.Pass != "detect" || got.Workers != 4 || got.Succeeded != 1 || got.Failed != 1 || got.Skipped != 1 || got.Canceled {
		t.Fatalf("unexpected run: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("unexpected start time %v", got.StartedAt)
	}

	recorded, err := store.RunItems(ctx, run.ID)
	if err != nil {
		t.Fatalf("RunItems: %v", err)
	}
	if len(recorded) != 3 {
		t.Fatalf("expected 3 items, got %d", len(recorded))
	}
	if recorded[0].Crop != "1920:800:0:140" || recorded[0].Duration != 2500*time.Millisecond {
		t.Fatalf("unexpected first item: %+v", recorded[0])
	}
	if recorded[1].Message != "source missing" || recorded[1].Crop != "" {
		t.Fatalf("unexpected second item: %+v", recorded[1])
	}
}

func TestGetRunByPrefix(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	for i, id := range []string{"abc-111", "abd-222"} {
		if err := store.BeginRun(ctx, journal.Run{ID: id, Pass: "crop", StartedAt: now.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatalf("BeginRun: %v", err)
		}
	}

	run, err := store.GetRun(ctx, "abd")
	if err != nil || run.ID != "abd-222" {
		t.Fatalf("expected abd-222, got %+v err=%v", run, err)
	}
	if _, err := store.GetRun(ctx, "ab"); err == nil {
		t.Fatal("expected ambiguity error")
	}
	if _, err := store.GetRun(ctx, "zzz"); !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if run, _ := store.GetRun(ctx, "abc-111"); run.Finished() {
		t.Fatal("unfinished run reported as finished")
	}
}

func TestListRunsNewestFirstAndPrune(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		if err := store.BeginRun(ctx, journal.Run{ID: id, Pass: "detect", StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("BeginRun: %v", err)
		}
		if err := store.RecordItem(ctx, journal.Item{RunID: id, ClipID: "v/1", Status: "succeeded"}); err != nil {
			t.Fatalf("RecordItem: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-3" || runs[1].ID != "run-2" {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	removed, err := store.Prune(ctx, 1)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 runs pruned, got %d", removed)
	}
	all, err := store.ListRuns(ctx, 0)
	if err != nil || len(all) != 1 || all[0].ID != "run-3" {
		t.Fatalf("unexpected remaining runs: %+v err=%v", all, err)
	}
	items, err := store.RunItems(ctx, "run-1")
	if err != nil || len(items) != 0 {
		t.Fatalf("expected pruned items gone, got %+v err=%v", items, err)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openStore(t)
	err := store.FinishRun(context.Background(), journal.Run{ID: "missing", FinishedAt: time.Now()})
	if !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.BeginRun(context.Background(), journal.Run{ID: "keep", Pass: "crop", StartedAt: time.Now()}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := journal.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetRun(context.Background(), "keep"); err != nil {
		t.Fatalf("GetRun after reopen: %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := journal.Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
