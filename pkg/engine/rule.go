package engine

// matchesRule evaluates one SegmentRule against ctx. Conditions combine
// by rule.RuleType (ALL/ANY/NONE, with ALL/NONE passing vacuously on an
// empty condition list and ANY failing vacuously); nested rules always
// combine by AND regardless of rule.RuleType. This asymmetry — siblings
// at the condition level obey RuleType, children are unconditionally
// AND-ed — is intentional.
func matchesRule(ctx *EngineEvaluationContext, rule SegmentRule, segmentKey string) bool {
	if !matchesConditionsByRuleType(ctx, rule, segmentKey) {
		return false
	}

	for _, nested := range rule.Rules {
		if !matchesRule(ctx, nested, segmentKey) {
			return false
		}
	}
	return true
}

func matchesConditionsByRuleType(ctx *EngineEvaluationContext, rule SegmentRule, segmentKey string) bool {
	switch rule.RuleType {
	case RuleAny:
		for _, cond := range rule.Conditions {
			if matchesCondition(ctx, cond, segmentKey) {
				return true
			}
		}
		return false
	case RuleNone:
		for _, cond := range rule.Conditions {
			if matchesCondition(ctx, cond, segmentKey) {
				return false
			}
		}
		return true
	default: // RuleAll, and any unrecognized type defaults to ALL semantics
		for _, cond := range rule.Conditions {
			if !matchesCondition(ctx, cond, segmentKey) {
				return false
			}
		}
		return true
	}
}

// isContextInSegment reports whether every top-level rule in segment
// matches ctx. A segment with no rules never matches.
func isContextInSegment(ctx *EngineEvaluationContext, segment SegmentContext) bool {
	if len(segment.Rules) == 0 {
		return false
	}
	for _, rule := range segment.Rules {
		if !matchesRule(ctx, rule, segment.Key) {
			return false
		}
	}
	return true
}
