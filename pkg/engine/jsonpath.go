package engine

import (
	"encoding/json"
	"strings"

	"github.com/flagforge/flagcore/pkg/value"
	"github.com/tidwall/gjson"
)

// evaluateJSONPath resolves a "$."-prefixed property selector against
// the context itself, serialized to JSON. The first match wins; other
// JSON types (arrays, objects) resolve to no value. A query that fails
// to parse or finds nothing reports ok=false so the caller can fall back
// to trait lookup by the literal property string.
func evaluateJSONPath(ctx *EngineEvaluationContext, path string) (value.Value, bool) {
	dotted := strings.TrimPrefix(path, "$.")
	if dotted == path {
		return value.Null, false
	}

	raw, err := json.Marshal(ctx)
	if err != nil {
		return value.Null, false
	}

	result := gjson.GetBytes(raw, dotted)
	if !result.Exists() {
		return value.Null, false
	}

	switch result.Type {
	case gjson.String:
		return value.NewString(result.String()), true
	case gjson.Number:
		if strings.ContainsAny(result.Raw, ".eE") {
			return value.NewFloat(result.Float()), true
		}
		return value.NewInteger(result.Int()), true
	case gjson.True, gjson.False:
		return value.NewBool(result.Bool()), true
	default:
		// Null, JSON, or multi-value results carry no usable scalar.
		return value.Null, false
	}
}
