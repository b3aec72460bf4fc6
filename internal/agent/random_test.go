package agent

import (
	"testing"

	"github.com/zedmor/mafia-token-engine/internal/token"
)

func TestChooseIsDeterministicPerSeed(t *testing.T) {
	legal := [][]token.Token{
		{token.EndTurn},
		{token.Say, token.Player1, token.Red},
		{token.Nominate, token.Player2, token.EndTurn},
	}
	a := NewRandom(99)
	b := NewRandom(99)
	for i := 0; i < 50; i++ {
		if !token.Equal(a.Choose(legal), b.Choose(legal)) {
			t.Fatalf("same seed diverged at pick %d", i)
		}
	}
}

func TestChooseStaysWithinLegalSet(t *testing.T) {
	legal := [][]token.Token{
		{token.Vote, token.Player4},
		{token.Vote, token.Player5},
	}
	a := NewRandom(1)
	for i := 0; i < 100; i++ {
		pick := a.Choose(legal)
		if !token.Equal(pick, legal[0]) && !token.Equal(pick, legal[1]) {
			t.Fatalf("pick %v not in legal set", pick)
		}
	}
}

func TestChooseReturnsCopy(t *testing.T) {
	legal := [][]token.Token{{token.EndTurn}}
	a := NewRandom(1)
	pick := a.Choose(legal)
	pick[0] = token.Kill
	if legal[0][0] != token.EndTurn {
		t.Errorf("Choose returned a view into the legal set")
	}
}

func TestChooseEmpty(t *testing.T) {
	a := NewRandom(1)
	if pick := a.Choose(nil); pick != nil {
		t.Errorf("Choose(nil) = %v, want nil", pick)
	}
}
