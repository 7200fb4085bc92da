// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// letterbox uses it for diagnostics only: the inspect command reports the
// source resolution next to the detected crop rectangle. Batch passes never
// call ffprobe.
package ffprobe
