// Package engine implements the pure, deterministic feature-flag
// evaluation core: segment rule matching, priority-ordered override
// resolution, and multivariate/percentage-split flag production.
package engine

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/flagforge/flagcore/pkg/value"
)

// OperatorKind is the closed set of condition operators the engine
// understands.
type OperatorKind string

const (
	OperatorEqual                OperatorKind = "EQUAL"
	OperatorNotEqual             OperatorKind = "NOT_EQUAL"
	OperatorGreaterThan          OperatorKind = "GREATER_THAN"
	OperatorGreaterThanInclusive OperatorKind = "GREATER_THAN_INCLUSIVE"
	OperatorLessThan             OperatorKind = "LESS_THAN"
	OperatorLessThanInclusive    OperatorKind = "LESS_THAN_INCLUSIVE"
	OperatorContains             OperatorKind = "CONTAINS"
	OperatorNotContains          OperatorKind = "NOT_CONTAINS"
	OperatorIn                   OperatorKind = "IN"
	OperatorRegex                OperatorKind = "REGEX"
	OperatorPercentageSplit      OperatorKind = "PERCENTAGE_SPLIT"
	OperatorModulo               OperatorKind = "MODULO"
	OperatorIsSet                OperatorKind = "IS_SET"
	OperatorIsNotSet             OperatorKind = "IS_NOT_SET"
)

// RuleType selects the combinator a SegmentRule applies to its
// conditions.
type RuleType string

const (
	RuleAll  RuleType = "ALL"
	RuleAny  RuleType = "ANY"
	RuleNone RuleType = "NONE"
)

// SegmentSource records where a SegmentContext originated.
type SegmentSource string

const (
	SourceAPI              SegmentSource = "API"
	SourceIdentityOverride SegmentSource = "IDENTITY_OVERRIDE"
)

// PriorityWeakest is the effective priority of a FeatureContext or
// FeatureValue whose Priority field is absent: weaker than any explicit
// priority.
const PriorityWeakest = math.MaxFloat64

// PriorityIdentityOverride is the priority the context mapper assigns to
// overrides sourced from an identity override segment: stronger than any
// segment-sourced priority.
const PriorityIdentityOverride = -math.MaxFloat64

// ConditionValue disambiguates a single condition operand from an
// ordered list of operands. IN conditions, in particular, must tell a
// single comma-joined string apart from a true list of candidates.
type ConditionValue struct {
	Single   string
	Multiple []string
	isMulti  bool
}

// IsMultiple reports whether this value carries an ordered list rather
// than a single string.
func (c ConditionValue) IsMultiple() bool {
	return c.isMulti
}

// NewSingleConditionValue wraps a single string operand.
func NewSingleConditionValue(s string) ConditionValue {
	return ConditionValue{Single: s}
}

// NewMultipleConditionValue wraps an ordered list operand.
func NewMultipleConditionValue(items []string) ConditionValue {
	return ConditionValue{Multiple: items, isMulti: true}
}

// Text returns the value's single-string form, joining a Multiple value
// with commas. Used when a condition operator treats the value as plain
// text (e.g. MODULO, REGEX, PERCENTAGE_SPLIT).
func (c ConditionValue) Text() string {
	if c.isMulti {
		out := ""
		for i, s := range c.Multiple {
			if i > 0 {
				out += ","
			}
			out += s
		}
		return out
	}
	return c.Single
}

// UnmarshalJSON implements the ambiguity rule from the data model: a
// JSON array stays Multiple; a string that itself looks like a JSON
// string array (starts with '[' and parses as one) becomes Multiple;
// every other string stays Single.
func (c *ConditionValue) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*c = NewMultipleConditionValue(arr)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("condition value must be a string or string array: %w", err)
	}

	if len(s) > 0 && s[0] == '[' {
		var nested []string
		if err := json.Unmarshal([]byte(s), &nested); err == nil {
			*c = NewMultipleConditionValue(nested)
			return nil
		}
	}

	*c = NewSingleConditionValue(s)
	return nil
}

// MarshalJSON renders Multiple as a JSON array and Single as a JSON
// string, mirroring UnmarshalJSON's discrimination.
func (c ConditionValue) MarshalJSON() ([]byte, error) {
	if c.isMulti {
		return json.Marshal(c.Multiple)
	}
	return json.Marshal(c.Single)
}

// Condition is one (operator, property, value) triple evaluated against
// a context.
type Condition struct {
	Operator OperatorKind   `json:"operator"`
	Property string         `json:"property"`
	Value    ConditionValue `json:"value"`
}

// SegmentRule recursively combines conditions and nested rules. Top
// level conditions combine by RuleType; nested rules always combine by
// AND regardless of RuleType (see matchesRule in rule.go).
type SegmentRule struct {
	RuleType   RuleType      `json:"rule_type"`
	Conditions []Condition   `json:"conditions"`
	Rules      []SegmentRule `json:"rules"`
}

// SegmentMetadata carries optional provenance for a segment.
type SegmentMetadata struct {
	SegmentID *int32        `json:"segment_id,omitempty"`
	Source    SegmentSource `json:"source,omitempty"`
}

// SegmentContext is one segment definition: a rule tree plus the
// feature overrides it supplies when matched.
type SegmentContext struct {
	Key       string           `json:"key"`
	Name      string           `json:"name"`
	Metadata  SegmentMetadata  `json:"metadata"`
	Overrides []FeatureContext `json:"overrides"`
	Rules     []SegmentRule    `json:"rules"`
}

// FeatureMetadata carries optional provenance for a feature.
type FeatureMetadata struct {
	FeatureID uint32 `json:"feature_id"`
}

// FeatureValue is one multivariate variant: a value, its share of the
// split, and an optional tie-break priority.
type FeatureValue struct {
	Value    value.Value `json:"value"`
	Weight   float64     `json:"weight"`
	Priority *float64    `json:"priority,omitempty"`
}

// EffectivePriority returns Priority, or PriorityWeakest when absent.
func (fv FeatureValue) EffectivePriority() float64 {
	if fv.Priority == nil {
		return PriorityWeakest
	}
	return *fv.Priority
}

// FeatureContext is a feature's definition: either the environment
// default or a segment/identity override of it.
type FeatureContext struct {
	Key      string          `json:"key"`
	Name     string          `json:"name"`
	Enabled  bool            `json:"enabled"`
	Value    value.Value     `json:"value"`
	Priority *float64        `json:"priority,omitempty"`
	Variants []FeatureValue  `json:"variants"`
	Metadata FeatureMetadata `json:"metadata"`
}

// EffectivePriority returns Priority, or PriorityWeakest when absent.
func (fc FeatureContext) EffectivePriority() float64 {
	if fc.Priority == nil {
		return PriorityWeakest
	}
	return *fc.Priority
}

// EnvironmentContext identifies the environment an evaluation runs
// against. It is immutable for the life of an evaluation.
type EnvironmentContext struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// IdentityContext is the optional subject of an evaluation.
type IdentityContext struct {
	Identifier string                 `json:"identifier"`
	Key        string                 `json:"key,omitempty"`
	Traits     map[string]value.Value `json:"traits,omitempty"`
}

// EffectiveKey returns Key if set, or the synthesized
// "{environmentKey}_{identifier}" form otherwise. This mirrors the
// synthesis the context mapper performs when attaching an identity to a
// context (see pkg/contextmapper); the flag producer repeats it here as
// a defensive fallback for contexts assembled without the mapper.
func (ic IdentityContext) EffectiveKey(environmentKey string) string {
	if ic.Key != "" {
		return ic.Key
	}
	return environmentKey + "_" + ic.Identifier
}

// EngineEvaluationContext is the complete input to Evaluate.
type EngineEvaluationContext struct {
	Environment EnvironmentContext        `json:"environment"`
	Features    map[string]FeatureContext `json:"features,omitempty"`
	Segments    map[string]SegmentContext `json:"segments,omitempty"`
	Identity    *IdentityContext          `json:"identity,omitempty"`
}
