// Package fsx wraps the filesystem operations whose failure modes matter to
// the batch passes: moving a source video into the crop directory (with a
// copy fallback across filesystems) and atomically replacing the metadata
// table.
package fsx
