// Package batch orchestrates the detection and cropping passes over the
// metadata table.
//
// A pass locks the table, loads it once, decides eligibility for every row in
// table order, and dispatches the eligible rows to a fixed pool of workers.
// Workers only call the external tool and return results; the orchestrator
// goroutine applies them in arrival order and is the only code that touches
// the table. The detection pass saves the table once at the end; a canceled
// pass saves nothing.
//
// Re-running a pass is the recovery mechanism: rows with a recorded crop size
// and stems whose destination file exists are skipped.
package batch
