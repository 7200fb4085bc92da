// Package journal records the history of letterbox passes in a SQLite
// database under paths.state_dir.
//
// Each pass is a Run identified by a UUID, with one Item per dispatched or
// skipped row. The journal is informational: eligibility is always decided
// from the metadata table and the filesystem, never from past runs.
package journal
