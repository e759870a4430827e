package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromJSON_ShapeDiscrimination(t *testing.T) {
	cases := []struct {
		name string
		json string
		tag  Tag
	}{
		{"positive integer", `10`, TagInteger},
		{"negative integer", `-10`, TagInteger},
		{"positive float", `10.1`, TagFloat},
		{"negative float", `-10.1`, TagFloat},
		{"true", `true`, TagBool},
		{"false", `false`, TagBool},
		{"null", `null`, TagNull},
		{"plain string", `"string"`, TagString},
		{"numeric-looking string stays string", `"10"`, TagString},
		{"bool-looking string stays string", `"true"`, TagString},
		{"float-looking string stays string", `"10.1"`, TagString},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tc.json), &v))
			assert.Equal(t, tc.tag, v.Tag)
		})
	}
}

func TestValue_MarshalRoundTrip(t *testing.T) {
	cases := []string{`10`, `-10`, `10.1`, `true`, `false`, `null`, `"string"`, `"10"`}
	for _, raw := range cases {
		var v Value
		require.NoError(t, json.Unmarshal([]byte(raw), &v))
		out, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
	}
}

func TestValue_Constructors(t *testing.T) {
	assert.Equal(t, "true", NewBool(true).Text)
	assert.Equal(t, "false", NewBool(false).Text)
	assert.Equal(t, "42", NewInteger(42).Text)
	assert.Equal(t, "3.5", NewFloat(3.5).Text)
	assert.True(t, Null.IsNull())
}
