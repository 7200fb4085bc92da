// Package logging assembles the slog loggers used by letterbox.
//
// Console output uses a compact human-readable handler (or JSON when
// logging.format is "json"); the log file under paths.log_dir always receives
// JSON lines so past batch runs can be grepped or parsed. Context helpers tag
// lines with the clip, pass, and run being processed.
package logging
