package engine

import (
	"errors"
	"testing"

	"github.com/zedmor/mafia-token-engine/internal/token"
)

func TestMultiActionDayTurn(t *testing.T) {
	s := Initialize(0)
	lengthBefore := s.Log.Len(0)

	mustApply(t, s, 0,
		token.Say, token.Player1, token.Red,
		token.Nominate, token.Player3,
		token.EndTurn)

	want := []token.Token{
		token.Player0, token.Say, token.Player1, token.Red,
		token.Nominate, token.Player3, token.EndTurn, token.Player1,
	}
	for i := 0; i < NumPlayers; i++ {
		got := s.Log.Player(i)
		tail := got[len(got)-len(want):]
		if !token.Equal(tail, want) {
			t.Errorf("player %d tail = %s\nwant %s", i, token.FormatSequence(tail), token.FormatSequence(want))
		}
	}
	if got := s.Log.Player(0); count(got[lengthBefore:], token.Player0) != 1 {
		t.Errorf("duplicate actor prefix in %s", token.FormatSequence(got[lengthBefore:]))
	}
	if s.Active != 1 {
		t.Errorf("active = %d, want 1", s.Active)
	}
	if len(s.Nominations) != 1 || s.Nominations[0] != 3 {
		t.Errorf("nominations = %v, want [3]", s.Nominations)
	}
}

func TestSecondNominationRejected(t *testing.T) {
	s := Initialize(0)
	before := s.Log.Player(0)

	err := s.Apply([]token.Token{
		token.Nominate, token.Player3,
		token.Nominate, token.Player4,
		token.EndTurn,
	}, 0)
	if !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("err = %v, want ErrIllegalAction", err)
	}
	if !token.Equal(s.Log.Player(0), before) {
		t.Errorf("rejected sequence mutated the log")
	}
	if len(s.Nominations) != 0 {
		t.Errorf("rejected sequence recorded a nomination")
	}
}

func TestNominationQuotaSpansSubmissions(t *testing.T) {
	s := Initialize(0)
	mustApply(t, s, 0, token.Nominate, token.Player3)
	err := s.Apply([]token.Token{token.Nominate, token.Player4, token.EndTurn}, 0)
	if !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("second nomination in same turn err = %v, want ErrIllegalAction", err)
	}
}

func TestDuplicateAtomRejected(t *testing.T) {
	s := Initialize(0)
	err := s.Apply([]token.Token{
		token.Say, token.Player1, token.Red,
		token.Say, token.Player1, token.Red,
		token.EndTurn,
	}, 0)
	if !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("err = %v, want ErrIllegalAction", err)
	}
}

func TestDayActionLimit(t *testing.T) {
	s := Initialize(0)
	// Seven distinct declarations fill the quota.
	seq := []token.Token{}
	for i := 1; i <= 7; i++ {
		seq = append(seq, token.Say, token.PlayerToken(i), token.Red)
	}
	seq = append(seq, token.EndTurn)
	mustApply(t, s, 0, seq...)

	s2 := Initialize(0)
	seq = append(seq[:len(seq)-1], token.Say, token.Player8, token.Red, token.EndTurn)
	if err := s2.Apply(seq, 0); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("eighth atom err = %v, want ErrIllegalAction", err)
	}
}

func TestQuotaPersistsAcrossSubmissionsOfOneTurn(t *testing.T) {
	s := Initialize(0)
	for i := 1; i <= 7; i++ {
		mustApply(t, s, 0, token.Say, token.PlayerToken(i), token.Red)
	}
	err := s.Apply([]token.Token{token.Say, token.Player8, token.Red}, 0)
	if !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("atom beyond quota err = %v, want ErrIllegalAction", err)
	}
	// The turn can still be closed.
	mustApply(t, s, 0, token.EndTurn)
	if s.Active != 1 {
		t.Errorf("active = %d, want 1", s.Active)
	}
}

func TestSelfTargetingForbidden(t *testing.T) {
	s := Initialize(0)
	tests := [][]token.Token{
		{token.Say, token.Player0, token.Red, token.EndTurn},
		{token.ClaimSheriffCheck, token.Player0, token.Black, token.EndTurn},
		{token.Nominate, token.Player0, token.EndTurn},
	}
	for _, seq := range tests {
		if err := s.Apply(seq, 0); !errors.Is(err, ErrIllegalAction) {
			t.Errorf("%s err = %v, want ErrIllegalAction", token.FormatSequence(seq), err)
		}
	}
}

func TestRenominationForbidden(t *testing.T) {
	s := Initialize(0)
	mustApply(t, s, 0, token.Nominate, token.Player3, token.EndTurn)
	err := s.Apply([]token.Token{token.Nominate, token.Player3, token.EndTurn}, 1)
	if !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("renomination err = %v, want ErrIllegalAction", err)
	}
}

func TestMultiActionWithoutEndTurnRejected(t *testing.T) {
	s := Initialize(0)
	err := s.Apply([]token.Token{
		token.Say, token.Player1, token.Red,
		token.Say, token.Player2, token.Red,
	}, 0)
	if !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("err = %v, want ErrIllegalAction", err)
	}
}

func TestTurnContinuationAfterSingleAtom(t *testing.T) {
	s := Initialize(0)
	mustApply(t, s, 0, token.Say, token.Player1, token.Red)
	if s.Active != 0 {
		t.Fatalf("single atom should keep the turn, active = %d", s.Active)
	}
	mustApply(t, s, 0, token.Say, token.Player2, token.Black)
	mustApply(t, s, 0, token.EndTurn)
	if s.Active != 1 {
		t.Errorf("active = %d, want 1", s.Active)
	}

	// The continuation never repeats the actor prefix.
	seq := s.Log.Player(4)
	want := []token.Token{
		token.Player0, token.Say, token.Player1, token.Red,
		token.Say, token.Player2, token.Black, token.EndTurn, token.Player1,
	}
	tail := seq[len(seq)-len(want):]
	if !token.Equal(tail, want) {
		t.Errorf("tail = %s\nwant %s", token.FormatSequence(tail), token.FormatSequence(want))
	}
}

func TestDayRotationIntoVoting(t *testing.T) {
	s := Initialize(0)
	mustApply(t, s, 0, token.Nominate, token.Player4, token.EndTurn)
	endTurnAll(t, s)

	if s.Phase.Kind != PhaseVoting || s.Phase.Round != 0 {
		t.Fatalf("phase = %v, want voting round 0", s.Phase)
	}
	if s.Active != 0 {
		t.Errorf("voting starts at %d, want 0", s.Active)
	}
	seq := s.Log.Player(2)
	if count(seq, token.VotingPhaseStart) != 1 {
		t.Errorf("voting phase marker missing: %s", token.FormatSequence(seq))
	}
}
