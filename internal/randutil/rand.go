package randutil

import (
	"encoding/binary"
	"io"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The helper centralises how we derive the two 64-bit seeds required by rand/v2
// so that all call sites get reproducible sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewReader returns a deterministic byte stream for seed. It feeds id
// generation in seeded runs so that card and player ids repeat too.
func NewReader(seed int64) io.Reader {
	var key [32]byte
	u := uint64(seed)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(key[i*8:], mix(u+uint64(i+1)*goldenRatio64))
	}
	return rand.NewChaCha8(key)
}

// Derive returns the seed for the i-th independent stream under seed.
// Simulations use it to give every game its own reproducible source.
func Derive(seed int64, i int) int64 {
	return int64(mix(uint64(seed) ^ mix(uint64(i)+goldenRatio64)))
}

// Shuffle permutes s in place. A nil rng uses the process-wide source.
func Shuffle[T any](rng *rand.Rand, s []T) {
	swap := func(i, j int) { s[i], s[j] = s[j], s[i] }
	if rng == nil {
		rand.Shuffle(len(s), swap)
		return
	}
	rng.Shuffle(len(s), swap)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
