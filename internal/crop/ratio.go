package crop

import (
	"fmt"
	"math"
)

// MatchStandardRatio returns a human-readable name for the closest standard
// aspect ratio within 2% tolerance, or a numeric label like "1.78:1".
func MatchStandardRatio(ratio float64) string {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return ""
	}
	type standard struct {
		name  string
		value float64
	}
	standards := []standard{
		{"4:3", 4.0 / 3.0},
		{"16:9", 16.0 / 9.0},
		{"1.85:1", 1.85},
		{"2.00:1", 2.00},
		{"2.20:1", 2.20},
		{"2.35:1", 2.35},
		{"2.39:1", 2.39},
		{"2.40:1", 2.40},
	}

	bestName := ""
	bestDist := math.MaxFloat64
	for _, s := range standards {
		dist := math.Abs(ratio - s.value)
		if dist < bestDist {
			bestDist = dist
			bestName = s.name
		}
	}

	if bestName != "" && bestDist/ratio <= 0.02 {
		return bestName
	}

	return fmt.Sprintf("%.2f:1", ratio)
}
