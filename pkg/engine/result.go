package engine

import "github.com/flagforge/flagcore/pkg/value"

// Reason strings are part of the external interface; callers match on
// them verbatim.
const (
	ReasonDefault = "DEFAULT"
)

// ReasonTargetingMatch formats the reason for a feature resolved from a
// matching segment override.
func ReasonTargetingMatch(segmentName string) string {
	return "TARGETING_MATCH; segment=" + segmentName
}

// ReasonSplit formats the reason for a feature resolved by multivariate
// split, with weight rendered in its minimal representation (integer if
// integer-valued, otherwise decimal).
func ReasonSplit(weight float64) string {
	return "SPLIT; weight=" + formatWeight(weight)
}

// FlagResult is the resolved state of a single feature.
type FlagResult struct {
	Enabled  bool            `json:"enabled"`
	Name     string          `json:"name"`
	Value    value.Value     `json:"value"`
	Reason   string          `json:"reason"`
	Metadata FeatureMetadata `json:"metadata"`
}

// SegmentResult records a segment whose rules matched the context.
type SegmentResult struct {
	Name     string          `json:"name"`
	Metadata SegmentMetadata `json:"metadata"`
}

// EvaluationResult is the total output of Evaluate: one FlagResult per
// feature named in the context, and the segments that matched it.
type EvaluationResult struct {
	Flags    map[string]FlagResult `json:"flags"`
	Segments []SegmentResult       `json:"segments"`
}
