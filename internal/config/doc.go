// Package config loads, normalizes, and validates letterbox configuration data.
//
// It supplies repository defaults (matching the dataset layout the tool was
// built for: ./metadata.csv, ./DATA/raw, ./DATA/crop), expands user paths
// including tilde shortcuts, reads TOML files, and honours environment
// fallbacks such as LETTERBOX_FFMPEG and LETTERBOX_WORKERS.
//
// Always obtain settings through this package so the batch passes receive
// absolute paths and clear validation errors.
package config
