// Package logs reads the JSON log file written by letterbox.
//
// Reader tracks a byte offset so callers can print the last N lines and then
// poll for appended ones; a file that shrinks (rotated or truncated) is read
// again from the start. ParseRecord decodes one JSON line into the fields the
// CLI filters on (clip, run, pass, level) and Record.Format renders it in the
// console layout.
package logs
