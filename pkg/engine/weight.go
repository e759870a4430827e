package engine

import "strconv"

// formatWeight renders a weight as an integer when it has no fractional
// part, and as a minimal decimal otherwise. Part of the reason-string
// contract: "SPLIT; weight=30" not "SPLIT; weight=30.000000".
func formatWeight(w float64) string {
	if w == float64(int64(w)) {
		return strconv.FormatInt(int64(w), 10)
	}
	return strconv.FormatFloat(w, 'f', -1, 64)
}
