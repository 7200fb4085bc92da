package config

import "letterbox/internal/crop"

const (
	defaultMetadataPath          = "./metadata.csv"
	defaultRawDir                = "./DATA/raw"
	defaultCropDir               = "./DATA/crop"
	defaultLogDir                = "~/.local/share/letterbox/logs"
	defaultStateDir              = "~/.local/share/letterbox"
	defaultFFmpegBinary          = "ffmpeg"
	defaultFFprobeBinary         = "ffprobe"
	defaultDetectSeekSeconds     = 900
	defaultDetectDurationSeconds = 60
	defaultHWAccel               = "cuda"
	defaultVideoCodec            = "h264_nvenc"
	defaultWorkers               = 4
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Metadata: defaultMetadataPath,
			RawDir:   defaultRawDir,
			CropDir:  defaultCropDir,
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		FFmpeg: FFmpeg{
			Binary:                defaultFFmpegBinary,
			FFprobeBinary:         defaultFFprobeBinary,
			DetectSeekSeconds:     defaultDetectSeekSeconds,
			DetectDurationSeconds: defaultDetectDurationSeconds,
			HWAccel:               defaultHWAccel,
			VideoCodec:            defaultVideoCodec,
		},
		Crop: Crop{
			DegenerateThreshold: crop.DefaultDegenerateThreshold,
		},
		Workflow: Workflow{
			Workers: defaultWorkers,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
