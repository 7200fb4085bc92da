package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateCrop(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.Metadata) == "" {
		return errors.New("paths.metadata must be set")
	}
	if strings.TrimSpace(c.Paths.RawDir) == "" {
		return errors.New("paths.raw_dir must be set")
	}
	if strings.TrimSpace(c.Paths.CropDir) == "" {
		return errors.New("paths.crop_dir must be set")
	}
	if filepath.Clean(c.Paths.RawDir) == filepath.Clean(c.Paths.CropDir) {
		return errors.New("paths.crop_dir must differ from paths.raw_dir")
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if err := ensurePositiveMap(map[string]int{
		"ffmpeg.detect_duration_seconds": c.FFmpeg.DetectDurationSeconds,
	}); err != nil {
		return err
	}
	if c.FFmpeg.DetectSeekSeconds < 0 {
		return errors.New("ffmpeg.detect_seek_seconds must be >= 0")
	}
	if strings.TrimSpace(c.FFmpeg.VideoCodec) == "" {
		return errors.New("ffmpeg.video_codec must be set")
	}
	return nil
}

func (c *Config) validateCrop() error {
	if c.Crop.DegenerateThreshold < 0 {
		return errors.New("crop.degenerate_threshold must be >= 0")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.workers": c.Workflow.Workers,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
