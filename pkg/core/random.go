package core

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// RandomInRange returns a vector with each component drawn uniformly from [lo, hi)
func RandomInRange(random *rand.Rand, lo, hi float64) Vec3 {
	span := hi - lo
	return Vec3{
		X: lo + random.Float64()*span,
		Y: lo + random.Float64()*span,
		Z: lo + random.Float64()*span,
	}
}

// NewSeededRand returns a deterministic generator for the given seed
func NewSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewEntropyRand returns a generator seeded from the operating system's entropy source
func NewEntropyRand() *rand.Rand {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		panic("core: entropy source unavailable: " + err.Error())
	}
	return NewSeededRand(int64(binary.LittleEndian.Uint64(buf[:])))
}
