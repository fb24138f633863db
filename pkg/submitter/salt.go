package submitter

import (
	"math/big"
	"math/rand"
	"sync"
	"time"
)

// saltRange bounds the random salt draw. Salts only need to be unique per
// sender within the initiator contract's intent-ID derivation, so a small
// range is enough.
const saltRange = 1000000

// SaltSource supplies salts for intent-ID derivation. Injectable so tests
// can run with deterministic salts.
type SaltSource interface {
	Next() *big.Int
}

// randomSaltSource draws salts from a seeded PRNG.
type randomSaltSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSaltSource returns a salt source seeded from the wall clock.
func NewRandomSaltSource() SaltSource {
	return &randomSaltSource{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *randomSaltSource) Next() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return big.NewInt(int64(s.rnd.Intn(saltRange)))
}

// FixedSaltSource always returns the same salt. For tests.
type FixedSaltSource struct {
	Salt int64
}

func (s FixedSaltSource) Next() *big.Int {
	return big.NewInt(s.Salt)
}
