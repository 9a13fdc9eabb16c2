package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// NewSeededRand creates a seeded random number generator for one generation
// call. A zero seed draws a high-entropy one from crypto/rand, falling back
// to the clock; the returned seed is the one actually used, so callers can
// report it for reproducibility.
func NewSeededRand(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = newSeed()
	}
	return rand.New(rand.NewSource(seed)), seed
}

func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	seed := int64(binary.LittleEndian.Uint64(b[:]))
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return seed
}
