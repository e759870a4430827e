// Package contextmapper implements the "mapping collaborator" the
// evaluation engine assumes exists but does not build itself: it
// converts a legacy, denormalized environment document into the
// canonical engine.EngineEvaluationContext, synthesizing identity-key
// defaults and identity-override segments the way the reference
// implementation's mapper does.
package contextmapper

import "github.com/flagforge/flagcore/pkg/value"

// LegacyEnvironment is the denormalized document shape an environment
// API or snapshot would hand the mapper: feature defaults flattened
// into FeatureStates, and segment rule trees still expressed with
// their legacy string-typed operator literals.
type LegacyEnvironment struct {
	Key           string
	Name          string
	FeatureStates []LegacyFeatureState
	Segments      []LegacySegment
}

// LegacyFeatureState is one feature's environment-level default.
type LegacyFeatureState struct {
	FeatureStateUUID   string
	FeatureID          uint32
	FeatureName        string
	FeatureKey         string
	Enabled            bool
	Value              LegacyValue
	Priority           *float64
	MultivariateValues []LegacyMultivariateValue
}

// LegacyMultivariateValue is one multivariate variant in its legacy
// shape.
type LegacyMultivariateValue struct {
	Value    LegacyValue
	Weight   float64
	Priority *float64
}

// LegacyValue is a loosely-typed scalar as it appears in the legacy
// document: Type selects which one of the value fields is read; the
// others are ignored.
type LegacyValue struct {
	Type    string // "string" | "integer" | "float" | "boolean" | ""
	String  string
	Integer int64
	Float   float64
	Boolean bool
}

// ToValue converts a LegacyValue to the engine's tagged Value.
func (lv LegacyValue) ToValue() value.Value {
	switch lv.Type {
	case "string":
		return value.NewString(lv.String)
	case "integer":
		return value.NewInteger(lv.Integer)
	case "float":
		return value.NewFloat(lv.Float)
	case "boolean":
		return value.NewBool(lv.Boolean)
	default:
		return value.Null
	}
}

// LegacySegment is a segment in its legacy shape: an integer database
// id rather than the engine's string key, and a rule tree using
// string-typed operator literals.
type LegacySegment struct {
	ID        int32
	Name      string
	Rules     []LegacySegmentRule
	Overrides []LegacyFeatureState
}

// LegacySegmentRule mirrors engine.SegmentRule but with a string
// RuleType, matching how it travels over the wire from older API
// versions.
type LegacySegmentRule struct {
	Type       string // "ALL" | "ANY" | "NONE", case-insensitive
	Conditions []LegacyCondition
	Rules      []LegacySegmentRule
}

// LegacyCondition mirrors engine.Condition but with a string Operator
// literal that may not be one of the engine's canonical names (e.g.
// older clients send lowercase or hyphenated variants).
type LegacyCondition struct {
	Operator string
	Property string
	Value    string
}

// LegacyTrait is one identity trait in its legacy shape.
type LegacyTrait struct {
	Key   string
	Value LegacyValue
}
