package engine

import (
	"sort"

	"github.com/flagforge/flagcore/pkg/hashing"
	"github.com/flagforge/flagcore/pkg/value"
)

// Evaluate is the engine's single entry point: a pure function from a
// prepared context to its complete evaluation result. It never mutates
// ctx, performs no I/O, and returns a total result for any schema-valid
// context.
func Evaluate(ctx EngineEvaluationContext) (EvaluationResult, error) {
	matchedSegments, overridesByFeature := resolveOverrides(&ctx, ctx.Segments)

	flags := make(map[string]FlagResult, len(ctx.Features))
	for name, defaultFeature := range ctx.Features {
		override, found := overridesByFeature[name]
		flags[name] = evaluateFlag(&ctx, name, defaultFeature, override, found)
	}

	return EvaluationResult{
		Flags:    flags,
		Segments: matchedSegments,
	}, nil
}

// evaluateFlag runs one feature through the Defaulted -> Overridden ->
// Split pipeline. enabled and metadata always come from whichever
// feature context was ultimately chosen (default or override), even
// when a multivariate split supplies a different value.
func evaluateFlag(ctx *EngineEvaluationContext, name string, defaultFeature FeatureContext, override overrideChoice, hasOverride bool) FlagResult {
	chosen := defaultFeature
	reason := ReasonDefault

	if hasOverride {
		chosen = override.feature
		reason = ReasonTargetingMatch(override.segmentName)
	}

	result := FlagResult{
		Enabled:  chosen.Enabled,
		Name:     name,
		Value:    chosen.Value,
		Reason:   reason,
		Metadata: chosen.Metadata,
	}

	if splitValue, splitReason, ok := multivariateSplit(ctx, chosen); ok {
		result.Value = splitValue
		result.Reason = splitReason
	}

	return result
}

// multivariateSplit applies only when the chosen feature has variants,
// an identity key exists, and the feature's key is non-empty. It sorts
// variants by priority ascending (absent last, stable among ties), walks
// the cumulative weight, and returns the first variant whose cumulative
// weight reaches the hashed percentage of [feature.key, identity.key].
func multivariateSplit(ctx *EngineEvaluationContext, chosen FeatureContext) (value.Value, string, bool) {
	if len(chosen.Variants) == 0 || chosen.Key == "" || ctx.Identity == nil {
		return value.Null, "", false
	}

	identityKey := ctx.Identity.EffectiveKey(ctx.Environment.Key)

	variants := make([]FeatureValue, len(chosen.Variants))
	copy(variants, chosen.Variants)
	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].EffectivePriority() < variants[j].EffectivePriority()
	})

	p := hashing.HashedPercentage([]string{chosen.Key, identityKey}, 1)

	cumulative := 0.0
	for _, variant := range variants {
		cumulative += variant.Weight
		if cumulative >= p {
			return variant.Value, ReasonSplit(variant.Weight), true
		}
	}

	return value.Null, "", false
}
