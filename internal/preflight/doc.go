// Package preflight provides readiness checks for the filesystem paths a
// letterbox pass reads and writes.
//
// The check command prints every result; the pass commands abort before
// loading the metadata table when a check fails, so a permission problem
// surfaces once instead of as one failed item per clip.
package preflight
