package engine

import (
	"testing"

	"github.com/zedmor/mafia-token-engine/internal/token"
)

func mustApply(t *testing.T, s *State, player int, toks ...token.Token) {
	t.Helper()
	if err := s.Apply(toks, player); err != nil {
		t.Fatalf("apply %s as player %d: %v", token.FormatSequence(toks), player, err)
	}
}

// endTurnAll walks the remaining day rotation with bare End-Turns.
func endTurnAll(t *testing.T, s *State) {
	t.Helper()
	for s.Phase.Kind == PhaseDay {
		mustApply(t, s, s.Active, token.EndTurn)
	}
}

// voteAll casts one ballot per alive voter using pick to select the target.
func voteAll(t *testing.T, s *State, pick func(voter int) int) {
	t.Helper()
	round := s.Phase.Round
	for s.Phase.Kind == PhaseVoting && s.Phase.Round == round && s.speech == nil {
		voter := s.Active
		mustApply(t, s, voter, token.Vote, token.PlayerToken(pick(voter)))
	}
}

// count returns the occurrences of tok in seq.
func count(seq []token.Token, tok token.Token) int {
	n := 0
	for _, t := range seq {
		if t == tok {
			n++
		}
	}
	return n
}

// containsRun reports whether needle appears as a contiguous run in seq.
func containsRun(seq, needle []token.Token) bool {
	if len(needle) == 0 {
		return true
	}
	for i := 0; i+len(needle) <= len(seq); i++ {
		if token.Equal(seq[i:i+len(needle)], needle) {
			return true
		}
	}
	return false
}
