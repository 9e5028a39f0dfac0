package grading

import "strings"

// normalize maps a free-text answer to its canonical comparable form:
// surrounding whitespace dropped, case folded.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// equalNormalized compares two sequences element-wise after per-element
// normalization; lengths must match.
func equalNormalized(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if normalize(a[i]) != normalize(b[i]) {
			return false
		}
	}
	return true
}
