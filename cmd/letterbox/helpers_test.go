package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"letterbox/internal/config"
	"letterbox/internal/testsupport"
)

// fakeFFmpeg emits three identical cropdetect samples for detection runs,
// fails on any source named broken.mp4, and writes its last argument for
// crop runs.
const fakeFFmpeg = `#!/bin/sh
for arg; do last="$arg"; done
case "$*" in
  *broken.mp4*)
    echo "broken.mp4: Invalid data found when processing input" >&2
    exit 1
    ;;
  *cropdetect*)
    for i in 0 1 2; do
      echo "[Parsed_cropdetect_0 @ 0x5581] x1:0 x2:1919 y1:140 y2:939 w:1920 h:800 x:0 y:140 pts:$i t:$i.000000 crop=1920:800:0:140" >&2
    done
    exit 0
    ;;
esac
printf 'cropped' > "$last"
`

type cliEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLIEnv(t *testing.T, mutate ...func(*config.Config)) *cliEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("LETTERBOX_FFMPEG", "")
	t.Setenv("LETTERBOX_WORKERS", "")

	cfg := testsupport.NewConfig(t)
	binary := filepath.Join(testsupport.BaseDir(cfg), "bin", "ffmpeg")
	if err := os.MkdirAll(filepath.Dir(binary), 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	if err := os.WriteFile(binary, []byte(fakeFFmpeg), 0o755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}
	cfg.FFmpeg.Binary = binary
	cfg.FFmpeg.FFprobeBinary = filepath.Join(base, "missing-ffprobe")
	cfg.Logging.Level = "error"
	for _, fn := range mutate {
		fn(cfg)
	}

	configPath := filepath.Join(base, "letterbox.toml")
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--no-progress"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
