// Package metadata loads and saves the dataset's metadata table, a CSV file
// with one row per clip.
//
// The table is read once per pass into a Table, mutated only through
// SetCropSize, and persisted with a single Save call that atomically replaces
// the file. Columns other than CropSize round-trip untouched.
package metadata
