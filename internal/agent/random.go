// Package agent provides the built-in automated player: a seeded uniform
// random policy over the legal-action set. It exists for self-play data
// generation and for integration tests that need full games without a model.
package agent

import (
	"math/rand"

	"github.com/zedmor/mafia-token-engine/internal/token"
)

// Random picks uniformly among the legal action sequences. The same seed
// produces the same choices, so whole self-play games replay byte-identically.
type Random struct {
	rng *rand.Rand
}

// NewRandom creates an agent with its own deterministic source.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

// Choose returns one of the legal sequences, or nil when none are offered.
// The returned slice is a copy; callers may keep it across turns.
func (a *Random) Choose(legal [][]token.Token) []token.Token {
	if len(legal) == 0 {
		return nil
	}
	pick := legal[a.rng.Intn(len(legal))]
	return append([]token.Token(nil), pick...)
}
