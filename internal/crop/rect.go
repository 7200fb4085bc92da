package crop

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultDegenerateThreshold is the largest x+y offset sum treated as border
// noise rather than a real letterbox/pillarbox.
const DefaultDegenerateThreshold = 6

// Rect is a crop rectangle in ffmpeg's W:H:X:Y order.
type Rect struct {
	Width  int
	Height int
	X      int
	Y      int
}

// Parse converts "W:H:X:Y" (optionally prefixed with "crop=") into a Rect.
func Parse(value string) (Rect, error) {
	s := strings.TrimPrefix(strings.TrimSpace(value), "crop=")
	if s == "" {
		return Rect{}, fmt.Errorf("parse crop %q: empty value", value)
	}
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("parse crop %q: expected 4 fields, got %d", value, len(parts))
	}
	var nums [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Rect{}, fmt.Errorf("parse crop %q: field %d: %w", value, i+1, err)
		}
		if n < 0 {
			return Rect{}, fmt.Errorf("parse crop %q: field %d is negative", value, i+1)
		}
		nums[i] = n
	}
	return Rect{Width: nums[0], Height: nums[1], X: nums[2], Y: nums[3]}, nil
}

// String renders the rectangle as W:H:X:Y.
func (r Rect) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", r.Width, r.Height, r.X, r.Y)
}

// Filter renders the rectangle as an ffmpeg crop filter expression.
func (r Rect) Filter() string {
	return "crop=" + r.String()
}

// OffsetSum returns X+Y.
func (r Rect) OffsetSum() int {
	return r.X + r.Y
}

// Degenerate reports whether the offsets are small enough to be treated as noise.
// Width and height are not considered.
func (r Rect) Degenerate(threshold int) bool {
	return r.OffsetSum() <= threshold
}

// AspectRatio returns width/height, or 0 when height is zero.
func (r Rect) AspectRatio() float64 {
	if r.Height == 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}
