// Package hashing implements the deterministic percentage hash that
// underlies both PERCENTAGE_SPLIT conditions and multivariate value
// selection. The algorithm is a wire-level contract: every implementation
// of the engine, in every language, must produce byte-identical floats
// for the same object-id sequence.
package hashing

import (
	"crypto/md5"
	"math/big"
	"strings"
)

// Hasher computes the deterministic percentage hash used throughout the
// engine. It carries no state and wraps the package-level
// HashedPercentage, which is what the engine itself calls.
type Hasher struct{}

// NewHasher returns a ready-to-use Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// modulus and divisor are fixed points of the wire contract, not tunables:
// changing either breaks cross-language agreement on existing hashes.
const (
	modulus = 9999
	divisor = 9998.0
)

// HashedPercentage returns a float in [0, 100] deterministically derived
// from objectIDs. Equal inputs always produce equal outputs, in this
// implementation and in every other language's engine.
//
// Algorithm: join objectIDs with "," to get s. For iterations > 1,
// concatenate s to itself iterations-1 more times (iterations == 1 leaves
// s unchanged — the loop that performs the extra concatenation only runs
// from the second iteration on, a historical quirk preserved for wire
// compatibility). Take the MD5 digest of the resulting string, interpret
// the 16 digest bytes as a big-endian unsigned integer, reduce it modulo
// 9999, then scale to a percentage by dividing by 9998 and multiplying by
// 100.
func (h *Hasher) HashedPercentage(objectIDs []string, iterations uint32) float64 {
	return HashedPercentage(objectIDs, iterations)
}

// HashedPercentage is the package-level form of (*Hasher).HashedPercentage,
// usable without constructing a Hasher.
func HashedPercentage(objectIDs []string, iterations uint32) float64 {
	joined := strings.Join(objectIDs, ",")
	var b strings.Builder
	b.WriteString(joined)
	for i := uint32(1); i < iterations; i++ {
		b.WriteString(joined)
	}

	digest := md5.Sum([]byte(b.String()))
	n := new(big.Int).SetBytes(digest[:])
	m := new(big.Int).Mod(n, big.NewInt(modulus))

	return float64(m.Int64()) / divisor * 100.0
}
