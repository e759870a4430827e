package contextmapper

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/mitchellh/copystructure"

	"github.com/flagforge/flagcore/pkg/engine"
	"github.com/flagforge/flagcore/pkg/value"
)

// AddIdentity attaches an identity to an already-mapped context,
// returning a new context and leaving ctx untouched. The identity's
// effective key is synthesized once, here, as
// "{environment.key}_{identifier}" — the same formula the flag
// producer falls back to for contexts that skip the mapper. If
// overrides is non-empty, a synthetic segment is added carrying those
// overrides at engine.PriorityIdentityOverride, the strongest possible
// priority, exactly as identity-origin overrides are supposed to be.
func (m *Mapper) AddIdentity(ctx engine.EngineEvaluationContext, identifier string, traits []LegacyTrait, overrides []LegacyFeatureState) (engine.EngineEvaluationContext, error) {
	cloned, err := copystructure.Copy(ctx)
	if err != nil {
		return engine.EngineEvaluationContext{}, fmt.Errorf("cloning context before identity attachment: %w", err)
	}
	newCtx := cloned.(engine.EngineEvaluationContext)

	traitMap := make(map[string]value.Value, len(traits))
	for _, trait := range traits {
		traitMap[trait.Key] = trait.Value.ToValue()
	}

	key := newCtx.Environment.Key + "_" + identifier
	newCtx.Identity = &engine.IdentityContext{
		Identifier: identifier,
		Key:        key,
		Traits:     traitMap,
	}

	if len(overrides) == 0 {
		return newCtx, nil
	}

	segment := identityOverrideSegment(identifier, overrides)
	if newCtx.Segments == nil {
		newCtx.Segments = make(map[string]engine.SegmentContext, 1)
	}
	newCtx.Segments[segment.Key] = segment

	return newCtx, nil
}

// identityOverrideSegment builds the synthetic, key-less segment that
// makes "identity overrides win outright" a concrete mechanism rather
// than a rule the engine has to special-case: a single ALL rule with
// one IN condition against the identity's own identifier, and every
// override stamped at engine.PriorityIdentityOverride (-math.MaxFloat64,
// the most negative finite float64).
func identityOverrideSegment(identifier string, overrides []LegacyFeatureState) engine.SegmentContext {
	mapped := make([]engine.FeatureContext, 0, len(overrides))
	for _, o := range overrides {
		fc := mapFeatureState(o)
		priority := engine.PriorityIdentityOverride
		fc.Priority = &priority
		mapped = append(mapped, fc)
	}

	return engine.SegmentContext{
		Key:  "", // never used for percentage split: identity overrides don't split by segment.
		Name: "identity_overrides",
		Metadata: engine.SegmentMetadata{
			Source: engine.SourceIdentityOverride,
		},
		Overrides: mapped,
		Rules: []engine.SegmentRule{
			{
				RuleType: engine.RuleAll,
				Conditions: []engine.Condition{
					{
						Operator: engine.OperatorIn,
						Property: "$.identity.identifier",
						Value:    engine.NewMultipleConditionValue([]string{identifier}),
					},
				},
			},
		},
	}
}

// overrideDigest produces a stable fingerprint of an override set,
// mirroring the reference mapper's grouping key for identities that
// share an identical set of overrides. Unused by AddIdentity directly
// (each identity here is mapped independently) but kept as the hook a
// batch-mapping caller would use to dedupe synthetic segments across
// many identities without re-hashing their override lists.
func overrideDigest(overrides []LegacyFeatureState) string {
	keys := make([]string, 0, len(overrides))
	for _, o := range overrides {
		keys = append(keys, fmt.Sprintf("%d:%s:%v:%s", o.FeatureID, o.FeatureName, o.Enabled, o.Value.Type))
	}
	sort.Strings(keys)

	h := sha256.Sum256([]byte(fmt.Sprintf("%v", keys)))
	return hex.EncodeToString(h[:])[:16]
}
