package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"letterbox/internal/batch"
	"letterbox/internal/config"
	"letterbox/internal/journal"
	"letterbox/internal/testsupport"
)

func TestRunDetectsThenCrops(t *testing.T) {
	env := setupCLIEnv(t)
	testsupport.WriteMetadata(t, env.cfg, "ClipID,Caption\nvidA/0001,a man walks\nvidA/0002,a man sits\n")
	src := testsupport.WriteSource(t, env.cfg, "vidA", "raw")

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	requireContains(t, out, "Detect pass")
	requireContains(t, out, "Crop pass")

	want := "ClipID,Caption,CropSize\nvidA/0001,a man walks,1920:800:0:140\nvidA/0002,a man sits,1920:800:0:140\n"
	if got := testsupport.ReadMetadata(t, env.cfg); got != want {
		t.Fatalf("unexpected table:\n%s", got)
	}
	data, err := os.ReadFile(batch.DestinationPath(env.cfg.Paths.CropDir, "vidA"))
	if err != nil || string(data) != "cropped" {
		t.Fatalf("expected transcoded output, got %q err=%v", data, err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source should remain after transcode: %v", err)
	}

	// A second run has nothing left to do.
	out, _, err = runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	requireContains(t, out, "Skipped")
}

func TestDetectExitsNonZeroWhenItemsFail(t *testing.T) {
	env := setupCLIEnv(t)
	testsupport.WriteMetadata(t, env.cfg, "ClipID\nbroken/0001\nfine/0001\n")
	testsupport.WriteSource(t, env.cfg, "broken", "x")
	testsupport.WriteSource(t, env.cfg, "fine", "y")

	out, _, err := runCLI(t, []string{"detect"}, env.configPath)
	if !errors.Is(err, errItemsFailed) {
		t.Fatalf("expected errItemsFailed, got %v", err)
	}
	requireContains(t, out, "Failures")
	requireContains(t, out, "broken/0001")

	if got := testsupport.ReadMetadata(t, env.cfg); got != "ClipID,CropSize\nbroken/0001,\nfine/0001,1920:800:0:140\n" {
		t.Fatalf("unexpected table:\n%s", got)
	}
}

func TestDetectWithMissingRawDirSkipsRows(t *testing.T) {
	env := setupCLIEnv(t)
	testsupport.WriteMetadata(t, env.cfg, "ClipID\nvidA/0001\n")
	if err := os.RemoveAll(env.cfg.Paths.RawDir); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"detect"}, env.configPath)
	if err != nil {
		t.Fatalf("detect with missing raw dir: %v\n%s", err, out)
	}
	requireContains(t, out, "Skipped")
	if got := testsupport.ReadMetadata(t, env.cfg); got != "ClipID\nvidA/0001\n" {
		t.Fatalf("table should be untouched:\n%s", got)
	}

	store, err := journal.Open(env.cfg.JournalPath())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	runs, err := store.ListRuns(context.Background(), 1)
	store.Close()
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one run, got %d err=%v", len(runs), err)
	}
	if runs[0].Skipped != 1 || runs[0].Failed != 0 {
		t.Fatalf("expected the row to be skipped, got %+v", runs[0])
	}

	out, _, err = runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check should only warn about the raw directory: %v\n%s", err, out)
	}
	requireContains(t, out, "does not exist; every row will be skipped")
}

func TestCropAcceptsReadOnlyTable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	env := setupCLIEnv(t)
	testsupport.WriteMetadata(t, env.cfg, "ClipID,CropSize\nvidA/0001,1920:800:0:140\n")
	testsupport.WriteSource(t, env.cfg, "vidA", "raw")
	if err := os.Chmod(env.cfg.Paths.Metadata, 0o444); err != nil {
		t.Fatal(err)
	}

	if out, _, err := runCLI(t, []string{"crop"}, env.configPath); err != nil {
		t.Fatalf("crop with read-only table: %v\n%s", err, out)
	}
	if _, err := os.Stat(batch.DestinationPath(env.cfg.Paths.CropDir, "vidA")); err != nil {
		t.Fatalf("expected cropped output: %v", err)
	}

	_, _, err := runCLI(t, []string{"detect"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "Metadata table") {
		t.Fatalf("expected detect preflight to reject the read-only table, got %v", err)
	}
}

func TestHistoryListsJournalRuns(t *testing.T) {
	env := setupCLIEnv(t)
	testsupport.WriteMetadata(t, env.cfg, "ClipID\nvidA/0001\n")
	testsupport.WriteSource(t, env.cfg, "vidA", "raw")

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history before runs: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	if _, _, err := runCLI(t, []string{"detect"}, env.configPath); err != nil {
		t.Fatalf("detect: %v", err)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Detect")
	requireContains(t, out, "complete")

	store, err := journal.Open(env.cfg.JournalPath())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	runs, err := store.ListRuns(context.Background(), 1)
	store.Close()
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one run, got %d err=%v", len(runs), err)
	}

	out, _, err = runCLI(t, []string{"history", "--run", runs[0].ID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("history --run: %v", err)
	}
	requireContains(t, out, "vidA/0001")
	requireContains(t, out, "1920:800:0:140")
}

func TestJournalDisabledSkipsHistory(t *testing.T) {
	env := setupCLIEnv(t, func(cfg *config.Config) { cfg.Journal.Enabled = false })
	testsupport.WriteMetadata(t, env.cfg, "ClipID\nvidA/0001\n")
	testsupport.WriteSource(t, env.cfg, "vidA", "raw")

	if _, _, err := runCLI(t, []string{"detect"}, env.configPath); err != nil {
		t.Fatalf("detect: %v", err)
	}
	if _, err := os.Stat(env.cfg.JournalPath()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("journal should not be created, err=%v", err)
	}
}

func TestInspectReportsCandidates(t *testing.T) {
	env := setupCLIEnv(t)
	src := testsupport.WriteSource(t, env.cfg, "vidA", "raw")

	out, _, err := runCLI(t, []string{"inspect", src}, env.configPath)
	if err != nil {
		t.Fatalf("inspect: %v\n%s", err, out)
	}
	requireContains(t, out, "1920:800:0:140 (3 of 3 samples)")
	requireContains(t, out, "2.40:1")
	requireContains(t, out, "transcode with crop=1920:800:0:140")
	requireContains(t, out, "Candidates")
	requireContains(t, out, "[WARN]")
}

func TestCheckCommand(t *testing.T) {
	env := setupCLIEnv(t)
	testsupport.WriteMetadata(t, env.cfg, "ClipID\nvidA/0001\n")

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "All checks passed")

	missing := setupCLIEnv(t, func(cfg *config.Config) {
		cfg.FFmpeg.Binary = filepath.Join(t.TempDir(), "no-ffmpeg")
	})
	out, _, err = runCLI(t, []string{"check"}, missing.configPath)
	if err == nil {
		t.Fatal("expected check to fail without ffmpeg and metadata")
	}
	requireContains(t, out, "[ERROR]")
	requireContains(t, out, "FFmpeg")
}

func TestPassRefusesToStartWithoutFFmpeg(t *testing.T) {
	env := setupCLIEnv(t, func(cfg *config.Config) {
		cfg.FFmpeg.Binary = filepath.Join(t.TempDir(), "no-ffmpeg")
	})
	testsupport.WriteMetadata(t, env.cfg, "ClipID\nvidA/0001\n")

	_, _, err := runCLI(t, []string{"crop"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "missing required tools") {
		t.Fatalf("expected missing tool error, got %v", err)
	}
}

func TestWorkersFlagIsValidated(t *testing.T) {
	env := setupCLIEnv(t)
	_, _, err := runCLI(t, []string{"--workers=-1", "config", "show"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "workflow.workers") {
		t.Fatalf("expected workers validation error, got %v", err)
	}
}

func TestConfigInitValidateShow(t *testing.T) {
	env := setupCLIEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, []string{"--workers", "7", "config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "workers = 7")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
}

func TestLogsFiltersByClip(t *testing.T) {
	env := setupCLIEnv(t, func(cfg *config.Config) { cfg.Logging.Level = "info" })
	testsupport.WriteMetadata(t, env.cfg, "ClipID\nvidA/0001\nvidB/0001\n")
	testsupport.WriteSource(t, env.cfg, "vidA", "a")
	testsupport.WriteSource(t, env.cfg, "vidB", "b")

	if _, _, err := runCLI(t, []string{"detect"}, env.configPath); err != nil {
		t.Fatalf("detect: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--clip", "vidA/0001"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "[vidA/0001] crop detected from 3 samples")
	if strings.Contains(out, "vidB/0001") {
		t.Fatalf("filtered output should not mention vidB:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"logs", "--raw", "--lines", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("logs --raw: %v", err)
	}
	requireContains(t, out, `"msg":"pass finished"`)
}
