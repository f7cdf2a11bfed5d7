package ladder

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource decides match outcomes. Float64 must be uniform on [0, 1).
// *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// entropy is a rand.Source drawing every value from crypto/rand.
type entropy struct{}

func (entropy) Uint64() uint64 {
	var b [8]byte
	_, _ = cryptorand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// DefaultRNG is used wherever a caller passes a nil source. Two calls never
// share a stream, so unseeded runs differ.
func DefaultRNG() RandomSource { return rand.New(entropy{}) }

// NewSeededRNG replays the same match outcomes for the same seed.
func NewSeededRNG(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, 0))
}

func won(winrate float64, rng RandomSource) bool {
	return rng.Float64() < winrate
}
