package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the dataset locations and the tool's own state directories.
type Paths struct {
	Metadata string `toml:"metadata"`
	RawDir   string `toml:"raw_dir"`
	CropDir  string `toml:"crop_dir"`
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// FFmpeg contains the external tool invocation settings.
type FFmpeg struct {
	Binary                string `toml:"binary"`
	FFprobeBinary         string `toml:"ffprobe_binary"`
	DetectSeekSeconds     int    `toml:"detect_seek_seconds"`
	DetectDurationSeconds int    `toml:"detect_duration_seconds"`
	// HWAccel is passed as -hwaccel when non-empty (e.g. "cuda").
	HWAccel    string `toml:"hwaccel"`
	VideoCodec string `toml:"video_codec"`
}

// Crop contains the crop decision policy.
type Crop struct {
	// DegenerateThreshold is the largest x+y offset sum treated as noise.
	// Rectangles at or below it are relocated instead of transcoded.
	DegenerateThreshold int `toml:"degenerate_threshold"`
	// MoveUnbordered relocates rows with an empty CropSize unchanged instead
	// of failing them.
	MoveUnbordered bool `toml:"move_unbordered"`
}

// Workflow contains batch scheduling settings.
type Workflow struct {
	Workers int `toml:"workers"`
}

// Journal contains configuration for the run history database.
type Journal struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for letterbox.
//
// Configuration sections by subsystem:
//   - Paths: metadata table, raw/crop video directories, log and state dirs
//   - FFmpeg: binaries, detection window, transcode codec settings
//   - Crop: degenerate border threshold, unbordered row handling
//   - Workflow: worker pool size
//   - Journal: run history database
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	FFmpeg   FFmpeg   `toml:"ffmpeg"`
	Crop     Crop     `toml:"crop"`
	Workflow Workflow `toml:"workflow"`
	Journal  Journal  `toml:"journal"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/letterbox/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("letterbox.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the tool itself owns. The raw
// video directory is input and is never created here.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JournalPath returns the run history database location.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// LockPath returns the advisory lock guarding the metadata table.
func (c *Config) LockPath() string {
	return c.Paths.Metadata + ".lock"
}

// FFmpegBinary returns the ffmpeg executable used for detection and cropping.
func (c *Config) FFmpegBinary() string {
	if b := strings.TrimSpace(c.FFmpeg.Binary); b != "" {
		return b
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable name used for source inspection.
func (c *Config) FFprobeBinary() string {
	if b := strings.TrimSpace(c.FFmpeg.FFprobeBinary); b != "" {
		return b
	}
	return defaultFFprobeBinary
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
