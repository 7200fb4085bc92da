// Package main hosts the letterbox CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, runs
// dependency and filesystem preflight before touching the dataset, and hands
// the detect and crop passes to internal/batch. Pass commands print a summary
// table on stdout and exit non-zero when any item failed; logs go to stderr and
// the log file so the tables stay pipeable.
//
// Keep this package lean: new behaviour belongs in the internal packages and
// is only surfaced here through commands and flags.
package main
