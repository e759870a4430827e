package contextmapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagforge/flagcore/pkg/engine"
)

func TestMapEnvironment_Basic(t *testing.T) {
	m := New(Config{})

	env := LegacyEnvironment{
		Key:  "env",
		Name: "Production",
		FeatureStates: []LegacyFeatureState{
			{
				FeatureStateUUID: "fs-1",
				FeatureID:        1,
				FeatureName:      "my_feature",
				Enabled:          true,
				Value:            LegacyValue{Type: "string", String: "on"},
			},
		},
		Segments: []LegacySegment{
			{
				ID:   1,
				Name: "beta-users",
				Rules: []LegacySegmentRule{
					{
						Type: "ALL",
						Conditions: []LegacyCondition{
							{Operator: "EQUAL", Property: "plan", Value: "beta"},
						},
					},
				},
			},
		},
	}

	ctx, err := m.MapEnvironment(env)

	require.NoError(t, err)
	require.Contains(t, ctx.Features, "my_feature")
	assert.True(t, ctx.Features["my_feature"].Enabled)
	require.Contains(t, ctx.Segments, "1")
	assert.Equal(t, "beta-users", ctx.Segments["1"].Name)
	assert.Equal(t, engine.OperatorEqual, ctx.Segments["1"].Rules[0].Conditions[0].Operator)
}

func TestMapEnvironment_DuplicateFeatureIsSchemaError(t *testing.T) {
	m := New(Config{})

	env := LegacyEnvironment{
		Key: "env",
		FeatureStates: []LegacyFeatureState{
			{FeatureName: "dup", Value: LegacyValue{Type: "string", String: "a"}},
			{FeatureName: "dup", Value: LegacyValue{Type: "string", String: "b"}},
		},
	}

	_, err := m.MapEnvironment(env)

	require.Error(t, err)
	var schemaErr *engine.ContextSchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, engine.DuplicateFeatureOverride, schemaErr.Kind)
}

func TestMapEnvironment_UnknownOperatorCoercedByDefault(t *testing.T) {
	m := New(Config{})

	env := LegacyEnvironment{
		Key: "env",
		Segments: []LegacySegment{
			{
				ID:   2,
				Name: "legacy",
				Rules: []LegacySegmentRule{
					{Type: "ALL", Conditions: []LegacyCondition{{Operator: "MATCHES_LEGACY", Property: "x", Value: "y"}}},
				},
			},
		},
	}

	ctx, err := m.MapEnvironment(env)

	require.NoError(t, err)
	assert.Equal(t, engine.OperatorEqual, ctx.Segments["2"].Rules[0].Conditions[0].Operator)
}

func TestMapEnvironment_UnknownOperatorStrictModeFails(t *testing.T) {
	m := New(Config{StrictOperators: true})

	env := LegacyEnvironment{
		Key: "env",
		Segments: []LegacySegment{
			{
				ID:   2,
				Name: "legacy",
				Rules: []LegacySegmentRule{
					{Type: "ALL", Conditions: []LegacyCondition{{Operator: "MATCHES_LEGACY", Property: "x", Value: "y"}}},
				},
			},
		},
	}

	_, err := m.MapEnvironment(env)

	require.Error(t, err)
	var schemaErr *engine.ContextSchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, engine.UnknownOperator, schemaErr.Kind)
}

func TestMapEnvironment_RuleDepthCap(t *testing.T) {
	m := New(Config{MaxRuleDepth: 2})

	deep := LegacySegmentRule{Type: "ALL", Rules: []LegacySegmentRule{
		{Type: "ALL", Rules: []LegacySegmentRule{
			{Type: "ALL", Rules: []LegacySegmentRule{
				{Type: "ALL", Conditions: []LegacyCondition{{Operator: "EQUAL", Property: "x", Value: "1"}}},
			}},
		}},
	}}

	env := LegacyEnvironment{
		Key:      "env",
		Segments: []LegacySegment{{ID: 3, Name: "deep", Rules: []LegacySegmentRule{deep}}},
	}

	ctx, err := m.MapEnvironment(env)

	require.NoError(t, err)
	// the truncated branch carries no conditions and no further nesting
	top := ctx.Segments["3"].Rules[0]
	assert.NotEmpty(t, top.Rules)
	require.NotEmpty(t, top.Rules[0].Rules)
	truncated := top.Rules[0].Rules[0]
	assert.Empty(t, truncated.Conditions)
	assert.Empty(t, truncated.Rules)
}

func TestAddIdentity_SynthesizesKeyAndDoesNotMutateOriginal(t *testing.T) {
	m := New(Config{})
	base := engine.EngineEvaluationContext{
		Environment: engine.EnvironmentContext{Key: "env", Name: "env"},
		Features:    map[string]engine.FeatureContext{},
		Segments:    map[string]engine.SegmentContext{},
	}

	withIdentity, err := m.AddIdentity(base, "42", []LegacyTrait{
		{Key: "plan", Value: LegacyValue{Type: "string", String: "pro"}},
	}, nil)

	require.NoError(t, err)
	require.NotNil(t, withIdentity.Identity)
	assert.Equal(t, "env_42", withIdentity.Identity.Key)
	assert.Nil(t, base.Identity, "original context must not be mutated")
}

func TestAddIdentity_OverridesGetIdentityPriority(t *testing.T) {
	m := New(Config{})
	base := engine.EngineEvaluationContext{
		Environment: engine.EnvironmentContext{Key: "env"},
		Features:    map[string]engine.FeatureContext{},
		Segments:    map[string]engine.SegmentContext{},
	}

	withIdentity, err := m.AddIdentity(base, "1", nil, []LegacyFeatureState{
		{FeatureName: "f", Enabled: true, Value: LegacyValue{Type: "string", String: "override"}},
	})

	require.NoError(t, err)
	require.Len(t, withIdentity.Segments, 1)
	for _, seg := range withIdentity.Segments {
		require.Len(t, seg.Overrides, 1)
		require.NotNil(t, seg.Overrides[0].Priority)
		assert.Equal(t, engine.PriorityIdentityOverride, *seg.Overrides[0].Priority)
		assert.Equal(t, engine.SourceIdentityOverride, seg.Metadata.Source)
	}
}
