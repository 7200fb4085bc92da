// Package services defines shared utilities consumed by the batch passes and
// the ffmpeg integration.
//
// Key responsibilities:
//   - Context helpers that stamp clip IDs, pass names, and run identifiers
//     for logging.
//   - Structured error markers plus the Wrap helper so per-item failures can
//     be classified (external tool, validation, not found) and paired with an
//     operator hint.
//
// Use these helpers when wiring new pass logic so error handling and
// observability stay uniform across detection and cropping.
package services
