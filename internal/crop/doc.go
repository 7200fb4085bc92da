// Package crop holds the pure parts of border detection: the Rect type,
// extraction of crop suggestions from ffmpeg cropdetect output, and the
// exact-string majority vote that reduces them to one rectangle.
//
// Nothing here runs a process or touches the filesystem, so detection policy
// can be tested by feeding diagnostic text directly.
package crop
