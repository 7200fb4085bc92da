package crop

import (
	"sort"
	"strings"
	"unicode"
)

const marker = "crop="

// ParseDiagnostics extracts every W:H:X:Y token that follows "crop=" in the
// given cropdetect output lines, in the order they appear.
func ParseDiagnostics(lines []string) []string {
	var tokens []string
	for _, line := range lines {
		tokens = appendTokens(tokens, line)
	}
	return tokens
}

// ParseLine extracts the crop tokens from a single diagnostic line.
func ParseLine(line string) []string {
	return appendTokens(nil, line)
}

func appendTokens(dst []string, line string) []string {
	rest := line
	for {
		idx := strings.Index(rest, marker)
		if idx < 0 {
			return dst
		}
		rest = rest[idx+len(marker):]
		end := strings.IndexFunc(rest, unicode.IsSpace)
		token := rest
		if end >= 0 {
			token = rest[:end]
		}
		if token != "" {
			dst = append(dst, token)
		}
		rest = rest[len(token):]
	}
}

// MostFrequent returns the token with the highest count. Among tokens tied
// for the highest count, the one seen first wins. ok is false when tokens is
// empty.
func MostFrequent(tokens []string) (string, bool) {
	if len(tokens) == 0 {
		return "", false
	}
	counts := make(map[string]int, 8)
	order := make([]string, 0, 8)
	for _, token := range tokens {
		if _, seen := counts[token]; !seen {
			order = append(order, token)
		}
		counts[token]++
	}
	best := order[0]
	for _, token := range order[1:] {
		if counts[token] > counts[best] {
			best = token
		}
	}
	return best, true
}

// Resolve parses raw cropdetect lines and returns the majority rectangle.
// ok is false when no crop suggestion was emitted ("no border detected").
func Resolve(lines []string) (string, bool) {
	return MostFrequent(ParseDiagnostics(lines))
}

// Candidate is one distinct crop suggestion and how often it was seen.
type Candidate struct {
	Crop    string
	Count   int
	Percent float64
}

// Tally groups tokens into candidates ordered by count, then first appearance.
func Tally(tokens []string) []Candidate {
	if len(tokens) == 0 {
		return nil
	}
	index := make(map[string]int, 8)
	candidates := make([]Candidate, 0, 8)
	for _, token := range tokens {
		if i, ok := index[token]; ok {
			candidates[i].Count++
			continue
		}
		index[token] = len(candidates)
		candidates = append(candidates, Candidate{Crop: token, Count: 1})
	}
	total := float64(len(tokens))
	for i := range candidates {
		candidates[i].Percent = float64(candidates[i].Count) * 100 / total
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Count > candidates[j].Count
	})
	return candidates
}
