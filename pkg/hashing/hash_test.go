package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Pinned values guard the wire-level contract: every language
// implementation of this engine must reproduce these exact floats for
// the same object-id sequence.
func TestHashedPercentage_PinnedValues(t *testing.T) {
	cases := []struct {
		name string
		ids  []string
		want float64
	}{
		{"single pair", []string{"1", "env_2"}, 22.874574914982997},
		{"segment and identity key", []string{"segment", "identity_key"}, 31.83636727345469},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := HashedPercentage(tc.ids, 1)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestHashedPercentage_DeterministicAndIdempotent(t *testing.T) {
	ids := []string{"feature-key", "identity-key"}
	first := HashedPercentage(ids, 1)
	second := HashedPercentage(ids, 1)
	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first, 0.0)
	assert.Less(t, first, 100.0)
}

func TestHashedPercentage_IterationsOffByOneQuirk(t *testing.T) {
	ids := []string{"a", "b"}
	// iterations=1 leaves the joined string untouched: no concatenation
	// happens until the second iteration.
	assert.Equal(t, HashedPercentage([]string{"a,b"}, 1), HashedPercentage(ids, 1))
	// iterations=2 hashes "a,b" twice over, i.e. "a,ba,b".
	assert.Equal(t, HashedPercentage([]string{"a", "ba", "b"}, 1), HashedPercentage(ids, 2))

	h := NewHasher()
	assert.Equal(t, HashedPercentage(ids, 1), h.HashedPercentage(ids, 1))
}
