package engine

import "fmt"

// SchemaErrorKind distinguishes the ways a context can fail the core's
// schema assumptions. Unlike condition-level failures, which the
// evaluator silently coerces to false, a schema error is fatal and
// caller-visible. The context mapper collaborator reports them while
// building a context; Evaluate itself never returns one.
type SchemaErrorKind int

const (
	// DuplicateFeatureOverride marks two feature states with the same
	// feature name in an environment's defaults. Duplicate names within
	// one segment's override list are not checked.
	DuplicateFeatureOverride SchemaErrorKind = iota
	// UnknownOperator marks a Condition.Operator outside OperatorKind's
	// closed set.
	UnknownOperator
	// RuleDepthExceeded marks a SegmentRule tree nested too deeply. No
	// code path returns it: the core has no depth cap, and the mapper
	// truncates rules beyond Config.MaxRuleDepth instead of failing.
	RuleDepthExceeded
)

func (k SchemaErrorKind) String() string {
	switch k {
	case DuplicateFeatureOverride:
		return "duplicate feature override"
	case UnknownOperator:
		return "unknown operator"
	case RuleDepthExceeded:
		return "rule depth exceeded"
	default:
		return "schema error"
	}
}

// ContextSchemaError is the engine's single fatal error category: a
// well-formed context never produces one. The context mapper returns it
// for a legacy document it cannot map; Evaluate does not return it.
type ContextSchemaError struct {
	Kind   SchemaErrorKind
	Detail string
}

func (e *ContextSchemaError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}
