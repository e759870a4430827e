package engine

import (
	"testing"

	"github.com/flagforge/flagcore/pkg/value"
	"github.com/stretchr/testify/assert"
)

func condEq(property, operand string) Condition {
	return Condition{Operator: OperatorEqual, Property: property, Value: NewSingleConditionValue(operand)}
}

func TestMatchesRule_VacuousTruth(t *testing.T) {
	ctx := &EngineEvaluationContext{}

	assert.True(t, matchesRule(ctx, SegmentRule{RuleType: RuleAll}, ""), "ALL over no conditions is vacuously true")
	assert.True(t, matchesRule(ctx, SegmentRule{RuleType: RuleNone}, ""), "NONE over no conditions is vacuously true")
	assert.False(t, matchesRule(ctx, SegmentRule{RuleType: RuleAny}, ""), "ANY over no conditions is vacuously false")
}

func TestMatchesRule_ShortCircuit(t *testing.T) {
	ctx := ctxWithTrait("a", value.NewString("1"))

	t.Run("ALL short circuits on first false", func(t *testing.T) {
		rule := SegmentRule{RuleType: RuleAll, Conditions: []Condition{condEq("a", "1"), condEq("missing", "x")}}
		assert.False(t, matchesRule(ctx, rule, ""))
	})

	t.Run("ANY short circuits on first true", func(t *testing.T) {
		rule := SegmentRule{RuleType: RuleAny, Conditions: []Condition{condEq("a", "1"), condEq("missing", "x")}}
		assert.True(t, matchesRule(ctx, rule, ""))
	})

	t.Run("NONE fails on first true", func(t *testing.T) {
		rule := SegmentRule{RuleType: RuleNone, Conditions: []Condition{condEq("a", "1")}}
		assert.False(t, matchesRule(ctx, rule, ""))
	})
}

func TestMatchesRule_NestedRulesAlwaysAND(t *testing.T) {
	ctx := ctxWithTrait("a", value.NewString("1"))

	rule := SegmentRule{
		RuleType:   RuleAny, // sibling combinator is ANY, but nested rules still AND
		Conditions: []Condition{condEq("a", "1")},
		Rules: []SegmentRule{
			{RuleType: RuleAll, Conditions: []Condition{condEq("a", "1")}},
			{RuleType: RuleAll, Conditions: []Condition{condEq("a", "not-1")}},
		},
	}

	assert.False(t, matchesRule(ctx, rule, ""), "one of two AND-ed nested rules failed")
}

func TestIsContextInSegment_EmptyRulesNeverMatch(t *testing.T) {
	ctx := &EngineEvaluationContext{}
	assert.False(t, isContextInSegment(ctx, SegmentContext{}))
}

func TestIsContextInSegment_AllTopLevelRulesMustMatch(t *testing.T) {
	ctx := ctxWithTrait("a", value.NewString("1"))

	segment := SegmentContext{
		Rules: []SegmentRule{
			{RuleType: RuleAll, Conditions: []Condition{condEq("a", "1")}},
			{RuleType: RuleAll, Conditions: []Condition{condEq("a", "2")}},
		},
	}

	assert.False(t, isContextInSegment(ctx, segment))
}
