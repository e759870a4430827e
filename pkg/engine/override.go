package engine

import "sort"

// resolveOverrides walks every segment that matches ctx and returns the
// matched SegmentResults plus, per feature name, the override with the
// strictly smallest priority (absent priority treated as PriorityWeakest,
// math.MaxFloat64). Ties keep the first seen. The mapper assigns
// identity overrides PriorityIdentityOverride (-math.MaxFloat64), which
// wins over every larger priority.
func resolveOverrides(ctx *EngineEvaluationContext, segments map[string]SegmentContext) ([]SegmentResult, map[string]overrideChoice) {
	var matched []SegmentResult
	best := make(map[string]overrideChoice)

	for _, segment := range segments {
		if !isContextInSegment(ctx, segment) {
			continue
		}

		matched = append(matched, SegmentResult{Name: segment.Name, Metadata: segment.Metadata})

		for _, override := range segment.Overrides {
			priority := override.EffectivePriority()
			existing, ok := best[override.Name]
			if !ok || priority < existing.priority {
				best[override.Name] = overrideChoice{
					feature:     override,
					segmentName: segment.Name,
					priority:    priority,
				}
			}
		}
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	return matched, best
}

type overrideChoice struct {
	feature     FeatureContext
	segmentName string
	priority    float64
}
