package engine

import (
	"math"
	"strconv"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/flagforge/flagcore/pkg/hashing"
	"github.com/flagforge/flagcore/pkg/value"
)

const semverSuffix = ":semver"

// resolveContextValue implements the three-step lookup from the
// condition evaluator design: empty property resolves to nothing;
// "$."-prefixed properties query the serialized context by JSON path,
// falling back to trait lookup on failure; everything else is a direct
// trait lookup.
func resolveContextValue(ctx *EngineEvaluationContext, property string) (value.Value, bool) {
	if property == "" {
		return value.Null, false
	}

	if strings.HasPrefix(property, "$.") {
		if v, ok := evaluateJSONPath(ctx, property); ok {
			return v, true
		}
		return traitValue(ctx, property)
	}

	return traitValue(ctx, property)
}

func traitValue(ctx *EngineEvaluationContext, property string) (value.Value, bool) {
	if ctx.Identity == nil {
		return value.Null, false
	}
	v, ok := ctx.Identity.Traits[property]
	return v, ok
}

// matchesCondition evaluates one condition against ctx. segmentKey
// salts PERCENTAGE_SPLIT; it is the empty string outside a segment's
// rule tree (which never happens in practice, since conditions only
// ever live inside segment rules, but keeps the signature honest).
func matchesCondition(ctx *EngineEvaluationContext, cond Condition, segmentKey string) bool {
	switch cond.Operator {
	case OperatorIsSet:
		_, ok := resolveContextValue(ctx, cond.Property)
		return ok
	case OperatorIsNotSet:
		_, ok := resolveContextValue(ctx, cond.Property)
		return !ok
	case OperatorPercentageSplit:
		return matchesPercentageSplit(ctx, cond, segmentKey)
	case OperatorIn:
		return matchesIn(ctx, cond)
	case OperatorModulo:
		return matchesModulo(ctx, cond)
	case OperatorRegex:
		return matchesRegex(ctx, cond)
	case OperatorContains, OperatorNotContains:
		return matchesContains(ctx, cond)
	default:
		return matchesComparison(ctx, cond)
	}
}

func matchesPercentageSplit(ctx *EngineEvaluationContext, cond Condition, segmentKey string) bool {
	threshold, err := strconv.ParseFloat(cond.Value.Text(), 64)
	if err != nil {
		return false
	}

	var objectIDs []string
	if v, ok := resolveContextValue(ctx, cond.Property); ok {
		objectIDs = []string{segmentKey, v.Text}
	} else if ctx.Identity != nil {
		objectIDs = []string{segmentKey, ctx.Identity.EffectiveKey(ctx.Environment.Key)}
	} else {
		return false
	}

	return hashing.HashedPercentage(objectIDs, 1) <= threshold
}

func matchesIn(ctx *EngineEvaluationContext, cond Condition) bool {
	v, ok := resolveContextValue(ctx, cond.Property)
	if !ok || v.Tag == value.TagBool || v.Tag == value.TagFloat {
		return false
	}

	candidate := v.Text // Integer values are already canonical text.

	if cond.Value.IsMultiple() {
		for _, item := range cond.Value.Multiple {
			if item == candidate {
				return true
			}
		}
		return false
	}

	for _, token := range strings.Split(cond.Value.Single, ",") {
		if strings.TrimSpace(token) == candidate {
			return true
		}
	}
	return false
}

func matchesModulo(ctx *EngineEvaluationContext, cond Condition) bool {
	v, ok := resolveContextValue(ctx, cond.Property)
	if !ok {
		return false
	}
	traitFloat, ok := v.Float()
	if !ok {
		return false
	}

	parts := strings.SplitN(cond.Value.Text(), "|", 2)
	if len(parts) != 2 {
		return false
	}
	divisor, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return false
	}
	remainder, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return false
	}
	if divisor == 0 {
		return false
	}

	return math.Abs(math.Mod(traitFloat, divisor)-remainder) < 1e-10
}

func matchesRegex(ctx *EngineEvaluationContext, cond Condition) bool {
	v, ok := resolveContextValue(ctx, cond.Property)
	if !ok {
		return false
	}
	re := compileRegex(cond.Value.Text())
	if re == nil {
		return false
	}
	return re.MatchString(v.Text)
}

func matchesContains(ctx *EngineEvaluationContext, cond Condition) bool {
	v, ok := resolveContextValue(ctx, cond.Property)
	if !ok {
		return false
	}
	contains := strings.Contains(v.Text, cond.Value.Text())
	if cond.Operator == OperatorNotContains {
		return !contains
	}
	return contains
}

// matchesComparison implements type-directed comparison (4.2.3): the
// semver-suffix check runs before any type dispatch, for every context
// value tag; failing that, the context value's tag selects the
// comparison strategy.
func matchesComparison(ctx *EngineEvaluationContext, cond Condition) bool {
	v, ok := resolveContextValue(ctx, cond.Property)
	if !ok {
		return false
	}

	if conditionText, isSemver := strings.CutSuffix(cond.Value.Text(), semverSuffix); isSemver {
		return matchesSemver(v.Text, conditionText, cond.Operator)
	}

	switch v.Tag {
	case value.TagBool:
		return matchesBool(v, cond)
	case value.TagInteger:
		return matchesInteger(v, cond)
	case value.TagFloat:
		return matchesFloat(v, cond)
	case value.TagString:
		return matchesString(v, cond)
	default:
		return false
	}
}

// parseBool implements the historical asymmetry: "1" parses as true
// when int conversion is allowed, but "0" never parses as false.
func parseBool(s string, allowIntConversion bool) (bool, bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	case "1":
		if allowIntConversion {
			return true, true
		}
		return false, false
	default:
		return false, false
	}
}

func matchesBool(v value.Value, cond Condition) bool {
	left, ok := parseBool(v.Text, true)
	if !ok {
		return false
	}
	right, ok := parseBool(cond.Value.Text(), true)
	if !ok {
		return false
	}
	switch cond.Operator {
	case OperatorEqual:
		return left == right
	case OperatorNotEqual:
		return left != right
	default:
		return false
	}
}

func matchesInteger(v value.Value, cond Condition) bool {
	left, ok := v.Int()
	if !ok {
		return false
	}
	right, err := strconv.ParseInt(cond.Value.Text(), 10, 64)
	if err != nil {
		return false
	}
	return dispatchOrderedInt(cond.Operator, left, right)
}

func matchesFloat(v value.Value, cond Condition) bool {
	left, ok := v.Float()
	if !ok {
		return false
	}
	right, err := strconv.ParseFloat(cond.Value.Text(), 64)
	if err != nil {
		return false
	}
	return dispatchOrdered(cond.Operator, left, right)
}

// matchesString tries, in order: strict boolean equality (no int
// conversion), integer parse, float parse, and finally lexicographic
// string comparison. This fallback order is part of the contract.
func matchesString(v value.Value, cond Condition) bool {
	conditionText := cond.Value.Text()

	if left, ok := parseBool(v.Text, false); ok {
		if right, ok := parseBool(conditionText, false); ok {
			switch cond.Operator {
			case OperatorEqual:
				return left == right
			case OperatorNotEqual:
				return left != right
			default:
				return false
			}
		}
	}

	if leftInt, err := strconv.ParseInt(v.Text, 10, 64); err == nil {
		if rightInt, err := strconv.ParseInt(conditionText, 10, 64); err == nil {
			return dispatchOrderedInt(cond.Operator, leftInt, rightInt)
		}
	}

	if leftFloat, err := strconv.ParseFloat(v.Text, 64); err == nil {
		if rightFloat, err := strconv.ParseFloat(conditionText, 64); err == nil {
			return dispatchOrdered(cond.Operator, leftFloat, rightFloat)
		}
	}

	return dispatchLexicographic(cond.Operator, v.Text, conditionText)
}

func dispatchOrdered(op OperatorKind, left, right float64) bool {
	switch op {
	case OperatorEqual:
		return left == right
	case OperatorNotEqual:
		return left != right
	case OperatorGreaterThan:
		return left > right
	case OperatorGreaterThanInclusive:
		return left >= right
	case OperatorLessThan:
		return left < right
	case OperatorLessThanInclusive:
		return left <= right
	default:
		return false
	}
}

// dispatchOrderedInt mirrors dispatchOrdered but compares as signed
// 64-bit integers, so operands beyond float64's 2^53 precision ceiling
// still compare exactly.
func dispatchOrderedInt(op OperatorKind, left, right int64) bool {
	switch op {
	case OperatorEqual:
		return left == right
	case OperatorNotEqual:
		return left != right
	case OperatorGreaterThan:
		return left > right
	case OperatorGreaterThanInclusive:
		return left >= right
	case OperatorLessThan:
		return left < right
	case OperatorLessThanInclusive:
		return left <= right
	default:
		return false
	}
}

func dispatchLexicographic(op OperatorKind, left, right string) bool {
	switch op {
	case OperatorEqual:
		return left == right
	case OperatorNotEqual:
		return left != right
	case OperatorGreaterThan:
		return left > right
	case OperatorGreaterThanInclusive:
		return left >= right
	case OperatorLessThan:
		return left < right
	case OperatorLessThanInclusive:
		return left <= right
	default:
		return false
	}
}

func matchesSemver(traitText, conditionText string, op OperatorKind) bool {
	left, err := semver.Parse(traitText)
	if err != nil {
		return false
	}
	right, err := semver.Parse(conditionText)
	if err != nil {
		return false
	}

	cmp := left.Compare(right)
	switch op {
	case OperatorEqual:
		return cmp == 0
	case OperatorNotEqual:
		return cmp != 0
	case OperatorGreaterThan:
		return cmp > 0
	case OperatorGreaterThanInclusive:
		return cmp >= 0
	case OperatorLessThan:
		return cmp < 0
	case OperatorLessThanInclusive:
		return cmp <= 0
	default:
		return false
	}
}
