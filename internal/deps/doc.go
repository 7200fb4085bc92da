// Package deps checks that the external binaries letterbox shells out to are
// resolvable on PATH before a pass starts.
package deps
