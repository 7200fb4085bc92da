// Package ffmpeg wraps the ffmpeg CLI for the two operations letterbox needs:
// sampling a clip with the cropdetect filter and applying a crop rectangle.
//
// Detection scans every diagnostic line for crop= tokens and resolves them
// with crop.MostFrequent. Cropping either relocates the source unchanged
// (offsets within the degenerate threshold) or transcodes a cropped copy.
// Command execution goes through the Executor interface so tests can inject
// canned output with WithExecutor.
package ffmpeg
