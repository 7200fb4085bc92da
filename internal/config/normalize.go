package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeFFmpeg(); err != nil {
		return err
	}
	if err := c.normalizeWorkflow(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Metadata) == "" {
		c.Paths.Metadata = defaultMetadataPath
	}
	if c.Paths.Metadata, err = expandPath(c.Paths.Metadata); err != nil {
		return fmt.Errorf("paths.metadata: %w", err)
	}
	if strings.TrimSpace(c.Paths.RawDir) == "" {
		c.Paths.RawDir = defaultRawDir
	}
	if c.Paths.RawDir, err = expandPath(c.Paths.RawDir); err != nil {
		return fmt.Errorf("paths.raw_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CropDir) == "" {
		c.Paths.CropDir = defaultCropDir
	}
	if c.Paths.CropDir, err = expandPath(c.Paths.CropDir); err != nil {
		return fmt.Errorf("paths.crop_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFFmpeg() error {
	if value, ok := os.LookupEnv("LETTERBOX_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.FFmpeg.Binary = strings.TrimSpace(value)
	}
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if c.FFmpeg.FFprobeBinary == "" {
		c.FFmpeg.FFprobeBinary = defaultFFprobeBinary
	}
	c.FFmpeg.HWAccel = strings.TrimSpace(c.FFmpeg.HWAccel)
	c.FFmpeg.VideoCodec = strings.TrimSpace(c.FFmpeg.VideoCodec)
	if c.FFmpeg.VideoCodec == "" {
		c.FFmpeg.VideoCodec = defaultVideoCodec
	}
	return nil
}

func (c *Config) normalizeWorkflow() error {
	value, ok := os.LookupEnv("LETTERBOX_WORKERS")
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	workers, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("LETTERBOX_WORKERS: %w", err)
	}
	c.Workflow.Workers = workers
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
