package token

import (
	"errors"
	"testing"
)

// allActions enumerates every valid action value.
func allActions() []Action {
	out := []Action{
		EndTurnAction(),
		ClaimSheriffAction(),
		DenySheriffAction(),
		VoteEliminateAllAction(),
		VoteKeepAllAction(),
	}
	for t := 0; t < NumPlayers; t++ {
		out = append(out,
			NominateAction(t),
			VoteAction(t),
			KillAction(t),
			SheriffCheckAction(t),
			DonCheckAction(t),
			SayAction(t, Red),
			SayAction(t, Black),
			ClaimSheriffCheckAction(t, Red),
			ClaimSheriffCheckAction(t, Black),
		)
	}
	return out
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, a := range allActions() {
		got, err := Decode(a.Encode())
		if err != nil {
			t.Fatalf("Decode(Encode(%v)): %v", a, err)
		}
		if got != a {
			t.Errorf("round trip mismatch: %v != %v", got, a)
		}
	}
}

func TestEncodeTemplates(t *testing.T) {
	tests := []struct {
		action Action
		want   []Token
	}{
		{EndTurnAction(), []Token{EndTurn}},
		{NominateAction(3), []Token{Nominate, Player3}},
		{VoteAction(7), []Token{Vote, Player7}},
		{KillAction(1), []Token{Kill, Player1}},
		{ClaimSheriffAction(), []Token{ClaimSheriff}},
		{DenySheriffAction(), []Token{DenySheriff}},
		{ClaimSheriffCheckAction(2, Black), []Token{ClaimSheriffCheck, Player2, Black}},
		{SayAction(9, Red), []Token{Say, Player9, Red}},
		{VoteEliminateAllAction(), []Token{VoteEliminateAll}},
		{VoteKeepAllAction(), []Token{VoteKeepAll}},
	}
	for _, tc := range tests {
		if got := tc.action.Encode(); !Equal(got, tc.want) {
			t.Errorf("Encode(%v) = %v, want %v", tc.action, got, tc.want)
		}
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
	}{
		{"empty", nil},
		{"missing target", []Token{Vote}},
		{"non-verb lead", []Token{Player3, Vote}},
		{"color for player slot", []Token{Nominate, Red}},
		{"player for color slot", []Token{Say, Player1, Player2}},
		{"trailing tokens", []Token{ClaimSheriff, Player1}},
		{"unknown verb", []Token{Killed, Player1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.tokens); !errors.Is(err, ErrInvalidTokenSequence) {
				t.Errorf("Decode(%v) err = %v, want ErrInvalidTokenSequence", tc.tokens, err)
			}
		})
	}
}

func TestParseSequenceMultiAction(t *testing.T) {
	seq := []Token{Say, Player1, Red, Nominate, Player3, EndTurn}
	atoms, err := ParseSequence(seq)
	if err != nil {
		t.Fatalf("ParseSequence: %v", err)
	}
	want := []Action{SayAction(1, Red), NominateAction(3), EndTurnAction()}
	if len(atoms) != len(want) {
		t.Fatalf("got %d atoms, want %d", len(atoms), len(want))
	}
	for i := range want {
		if atoms[i] != want[i] {
			t.Errorf("atom %d = %v, want %v", i, atoms[i], want[i])
		}
	}
}

func TestParseSequenceRejectsInternalEndTurn(t *testing.T) {
	seq := []Token{EndTurn, Say, Player1, Red}
	if _, err := ParseSequence(seq); !errors.Is(err, ErrInvalidTokenSequence) {
		t.Errorf("internal END_TURN err = %v, want ErrInvalidTokenSequence", err)
	}
}

func TestEncodeSequence(t *testing.T) {
	atoms := []Action{SayAction(2, Black), EndTurnAction()}
	want := []Token{Say, Player2, Black, EndTurn}
	if got := EncodeSequence(atoms); !Equal(got, want) {
		t.Errorf("EncodeSequence = %v, want %v", got, want)
	}
}
