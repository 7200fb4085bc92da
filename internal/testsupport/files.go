package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"letterbox/internal/config"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = 0x42
	}
	writeBytes(t, path, data)
}

// WriteMetadata writes the metadata table for cfg.
func WriteMetadata(t testing.TB, cfg *config.Config, content string) {
	t.Helper()
	writeBytes(t, cfg.Paths.Metadata, []byte(content))
}

// ReadMetadata returns the current metadata table contents for cfg.
func ReadMetadata(t testing.TB, cfg *config.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.Paths.Metadata)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	return string(data)
}

// WriteSource creates <raw_dir>/<stem>.mp4 with content and returns its path.
func WriteSource(t testing.TB, cfg *config.Config, stem, content string) string {
	t.Helper()
	path := filepath.Join(cfg.Paths.RawDir, stem+".mp4")
	writeBytes(t, path, []byte(content))
	return path
}

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
