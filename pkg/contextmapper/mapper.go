package contextmapper

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flagforge/flagcore/pkg/engine"
)

// Mapper converts legacy environment documents into the engine's
// canonical context, logging every recovery it performs along the way.
type Mapper struct {
	cfg    Config
	logger zerolog.Logger
}

// New builds a Mapper. A zero Config is valid; LoadConfig's defaults
// apply whenever a field is left unset.
func New(cfg Config) *Mapper {
	if cfg.MaxRuleDepth <= 0 {
		cfg.MaxRuleDepth = 32
	}
	return &Mapper{
		cfg:    cfg,
		logger: log.With().Str("component", "contextmapper").Logger(),
	}
}

// MapEnvironment converts a LegacyEnvironment into an
// engine.EngineEvaluationContext with no identity attached. Call
// AddIdentity afterward to evaluate for a specific identity.
func (m *Mapper) MapEnvironment(env LegacyEnvironment) (engine.EngineEvaluationContext, error) {
	requestID := uuid.NewString()
	logger := m.logger.With().Str("request_id", requestID).Str("environment", env.Key).Logger()

	features := make(map[string]engine.FeatureContext, len(env.FeatureStates))
	seen := make(map[string]bool, len(env.FeatureStates))
	for _, fs := range env.FeatureStates {
		name := fs.FeatureName
		if seen[name] {
			return engine.EngineEvaluationContext{}, &engine.ContextSchemaError{
				Kind:   engine.DuplicateFeatureOverride,
				Detail: fmt.Sprintf("duplicate feature state for %q in environment defaults", name),
			}
		}
		seen[name] = true
		features[name] = mapFeatureState(fs)
	}

	segments := make(map[string]engine.SegmentContext, len(env.Segments))
	for _, seg := range env.Segments {
		mapped, err := m.mapSegment(seg, logger)
		if err != nil {
			return engine.EngineEvaluationContext{}, err
		}
		segments[mapped.Key] = mapped
	}

	logger.Debug().
		Int("feature_count", len(features)).
		Int("segment_count", len(segments)).
		Msg("mapped legacy environment to evaluation context")

	return engine.EngineEvaluationContext{
		Environment: engine.EnvironmentContext{Key: env.Key, Name: env.Name},
		Features:    features,
		Segments:    segments,
	}, nil
}

func mapFeatureState(fs LegacyFeatureState) engine.FeatureContext {
	key := fs.FeatureStateUUID
	if key == "" {
		key = fs.FeatureKey
	}

	variants := make([]engine.FeatureValue, 0, len(fs.MultivariateValues))
	for _, mv := range fs.MultivariateValues {
		variants = append(variants, engine.FeatureValue{
			Value:    mv.Value.ToValue(),
			Weight:   mv.Weight,
			Priority: mv.Priority,
		})
	}

	return engine.FeatureContext{
		Key:      key,
		Name:     fs.FeatureName,
		Enabled:  fs.Enabled,
		Value:    fs.Value.ToValue(),
		Priority: fs.Priority,
		Variants: variants,
		Metadata: engine.FeatureMetadata{FeatureID: fs.FeatureID},
	}
}

func (m *Mapper) mapSegment(seg LegacySegment, logger zerolog.Logger) (engine.SegmentContext, error) {
	segmentID := seg.ID
	rules := make([]engine.SegmentRule, 0, len(seg.Rules))
	for _, r := range seg.Rules {
		mapped, err := m.mapSegmentRule(r, 1, logger)
		if err != nil {
			return engine.SegmentContext{}, err
		}
		rules = append(rules, mapped)
	}

	overrides := make([]engine.FeatureContext, 0, len(seg.Overrides))
	for _, o := range seg.Overrides {
		overrides = append(overrides, mapFeatureState(o))
	}

	return engine.SegmentContext{
		Key:  fmt.Sprintf("%d", segmentID),
		Name: seg.Name,
		Metadata: engine.SegmentMetadata{
			SegmentID: &segmentID,
			Source:    engine.SourceAPI,
		},
		Overrides: overrides,
		Rules:     rules,
	}, nil
}

func (m *Mapper) mapSegmentRule(rule LegacySegmentRule, depth int, logger zerolog.Logger) (engine.SegmentRule, error) {
	if depth > m.cfg.MaxRuleDepth {
		logger.Warn().Int("depth", depth).Int("max_depth", m.cfg.MaxRuleDepth).
			Msg("segment rule nesting exceeded configured cap, truncating")
		return engine.SegmentRule{RuleType: mapRuleType(rule.Type)}, nil
	}

	conditions := make([]engine.Condition, 0, len(rule.Conditions))
	for _, c := range rule.Conditions {
		mapped, err := m.mapCondition(c, logger)
		if err != nil {
			return engine.SegmentRule{}, err
		}
		conditions = append(conditions, mapped)
	}

	nested := make([]engine.SegmentRule, 0, len(rule.Rules))
	for _, r := range rule.Rules {
		mappedRule, err := m.mapSegmentRule(r, depth+1, logger)
		if err != nil {
			return engine.SegmentRule{}, err
		}
		nested = append(nested, mappedRule)
	}

	return engine.SegmentRule{
		RuleType:   mapRuleType(rule.Type),
		Conditions: conditions,
		Rules:      nested,
	}, nil
}

func mapRuleType(t string) engine.RuleType {
	switch strings.ToUpper(t) {
	case "ANY":
		return engine.RuleAny
	case "NONE":
		return engine.RuleNone
	default:
		return engine.RuleAll
	}
}

var legacyOperators = map[string]engine.OperatorKind{
	"EQUAL":                  engine.OperatorEqual,
	"NOT_EQUAL":              engine.OperatorNotEqual,
	"GREATER_THAN":           engine.OperatorGreaterThan,
	"GREATER_THAN_INCLUSIVE": engine.OperatorGreaterThanInclusive,
	"LESS_THAN":              engine.OperatorLessThan,
	"LESS_THAN_INCLUSIVE":    engine.OperatorLessThanInclusive,
	"CONTAINS":               engine.OperatorContains,
	"NOT_CONTAINS":           engine.OperatorNotContains,
	"IN":                     engine.OperatorIn,
	"REGEX":                  engine.OperatorRegex,
	"PERCENTAGE_SPLIT":       engine.OperatorPercentageSplit,
	"MODULO":                 engine.OperatorModulo,
	"IS_SET":                 engine.OperatorIsSet,
	"IS_NOT_SET":             engine.OperatorIsNotSet,
}

func (m *Mapper) mapCondition(c LegacyCondition, logger zerolog.Logger) (engine.Condition, error) {
	operator, ok := legacyOperators[strings.ToUpper(c.Operator)]
	if !ok {
		if m.cfg.StrictOperators {
			return engine.Condition{}, &engine.ContextSchemaError{
				Kind:   engine.UnknownOperator,
				Detail: c.Operator,
			}
		}
		logger.Warn().Str("operator", c.Operator).Msg("unknown operator literal, coercing to EQUAL")
		operator = engine.OperatorEqual
	}

	return engine.Condition{
		Operator: operator,
		Property: c.Property,
		Value:    engine.NewSingleConditionValue(c.Value),
	}, nil
}
