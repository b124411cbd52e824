package simulation

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"

	"github.com/mcdev12/matchday/go/internal/models"
)

// NewSeed draws a match seed from the system entropy source.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to read match seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:]) & math.MaxInt64), nil
}

// NewRand returns the generator a match with the given seed is replayed from.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Run simulates a match from its seed. A panic inside the engine is returned as an error.
func Run(seed int64, home, away Squad, kind models.MatchKind) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("simulation panicked: %v", r)
		}
	}()
	return Simulate(NewRand(seed), home, away, kind)
}
