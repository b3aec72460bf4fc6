package engine

import (
	"fmt"

	"github.com/zedmor/mafia-token-engine/internal/game"
	"github.com/zedmor/mafia-token-engine/internal/token"
)

// PhaseKind enumerates the variants of the phase union.
type PhaseKind int

const (
	PhaseDay PhaseKind = iota
	PhaseVoting
	PhaseNightKill
	PhaseNightDon
	PhaseNightSheriff
	PhaseGameOver
)

// Phase is the tagged phase value. Cycle is the day-cycle index (1-based);
// Round is meaningful only for PhaseVoting (0..2, where 2 is the
// eliminate-all vote).
type Phase struct {
	Kind  PhaseKind
	Cycle int
	Round int
}

func (p Phase) String() string {
	switch p.Kind {
	case PhaseDay:
		return fmt.Sprintf("day_%d", p.Cycle)
	case PhaseVoting:
		return fmt.Sprintf("voting_%d_round_%d", p.Cycle, p.Round)
	case PhaseNightKill:
		return fmt.Sprintf("night_%d_kill", p.Cycle)
	case PhaseNightDon:
		return fmt.Sprintf("night_%d_don", p.Cycle)
	case PhaseNightSheriff:
		return fmt.Sprintf("night_%d_sheriff", p.Cycle)
	case PhaseGameOver:
		return "game_over"
	default:
		return "invalid"
	}
}

// MetricLabel buckets the phase kind for metrics cardinality.
func (k PhaseKind) MetricLabel() string {
	switch k {
	case PhaseDay:
		return "day"
	case PhaseVoting:
		return "voting"
	case PhaseNightKill, PhaseNightDon, PhaseNightSheriff:
		return "night"
	default:
		return "game_over"
	}
}

// IsNight reports whether the phase is one of the night sub-phases.
func (p Phase) IsNight() bool {
	return p.Kind == PhaseNightKill || p.Kind == PhaseNightDon || p.Kind == PhaseNightSheriff
}

// setActive hands the turn to a new seat and stores the public transition cue
// when the holder actually changed. The ephemeral YourTurn that follows the
// cue is injected at observation time only.
func (s *State) setActive(player int) {
	changed := s.Active != player
	s.Active = player
	if changed {
		s.Log.AppendAll(token.PlayerToken(player))
	}
}

// finishDayTurn handles an End-Turn in the day phase after its tokens have
// been appended: speech holders hand over to the day rotation, alive players
// advance it, and a completed rotation opens voting.
func (s *State) finishDayTurn() {
	if s.speech != nil {
		final := s.speech.Final
		s.speech = nil
		s.resetTurnState()
		if final {
			s.enterNight()
			return
		}
		// Death speech ends; the regular rotation begins at the day's
		// starting seat.
		s.setActive(s.dayStart)
		return
	}

	s.endTurns++
	s.resetTurnState()
	if s.endTurns >= s.AliveCount() {
		s.startVoting()
		return
	}
	s.setActive(s.nextAliveAfter(s.Active))
}

// startVoting transitions Day(n) to Voting(n, 0).
func (s *State) startVoting() {
	s.Phase = Phase{Kind: PhaseVoting, Cycle: s.Phase.Cycle, Round: 0}
	s.Votes = nil
	s.Tied = nil
	s.Log.AppendAll(token.VotingPhaseStart)
	s.setActive(s.firstAliveFrom(0))
}

// startRevote opens the next voting round over the tied set.
func (s *State) startRevote(round int, tied []int) {
	s.Phase = Phase{Kind: PhaseVoting, Cycle: s.Phase.Cycle, Round: round}
	s.Tied = tied
	s.Votes = nil
	s.Log.AppendAll(token.RevotePhase)
	s.setActive(s.firstAliveFrom(0))
}

// enterNight transitions into NightKill(n). The killer is the Don when alive,
// otherwise the lowest-indexed living Mafia.
func (s *State) enterNight() {
	s.Nominations = nil
	s.Votes = nil
	s.Tied = nil
	s.Phase = Phase{Kind: PhaseNightKill, Cycle: s.Phase.Cycle}
	s.Log.AppendAll(token.NightToken(s.Phase.Cycle), token.NightPhaseStart)
	s.setActive(s.nightKiller())
}

// nightKiller selects the acting Black player for NightKill.
func (s *State) nightKiller() int {
	don := -1
	mafia := -1
	for i := range s.Players {
		if !s.IsAlive(i) {
			continue
		}
		switch s.Players[i].Role {
		case game.RoleDon:
			don = i
		case game.RoleMafia:
			if mafia == -1 {
				mafia = i
			}
		}
	}
	if don != -1 {
		return don
	}
	return mafia
}

// roleSeat finds the alive seat holding the role; -1 when dead or absent.
func (s *State) roleSeat(r game.Role) int {
	for i := range s.Players {
		if s.IsAlive(i) && s.Players[i].Role == r {
			return i
		}
	}
	return -1
}

// advanceNight moves from the completed night sub-phase to the next one,
// skipping sub-phases whose actor is no longer alive, and closes the night
// when the sheriff slot is done.
func (s *State) advanceNight() {
	switch s.Phase.Kind {
	case PhaseNightKill:
		if don := s.roleSeat(game.RoleDon); don != -1 {
			s.Phase.Kind = PhaseNightDon
			s.setActive(don)
			return
		}
		fallthrough
	case PhaseNightDon:
		if sheriff := s.roleSeat(game.RoleSheriff); sheriff != -1 {
			s.Phase.Kind = PhaseNightSheriff
			s.setActive(sheriff)
			return
		}
		fallthrough
	default:
		s.endNight()
	}
}

// endNight is the synthetic End transition: night-kill victims are promoted to
// Dead, end conditions are checked, the cycle counter advances (Black wins a
// game still undecided at the cap), and the next day opens with any owed
// death speech preempting the rotation.
func (s *State) endNight() {
	promoted := -1
	for i := range s.Players {
		if s.Players[i].Alive == MarkedForNightKill {
			s.Players[i].Alive = Dead
			promoted = i
		}
	}

	if s.decideWinner() {
		return
	}

	next := s.Phase.Cycle + 1
	if next > MaxCycles {
		s.Winner = game.TeamBlack
		s.Decided = true
		s.Phase = Phase{Kind: PhaseGameOver, Cycle: s.Phase.Cycle}
		s.Log.AppendAll(token.BlackTeamWon)
		return
	}
	s.enterDay(next, promoted)
}

// enterDay opens Day(cycle). A player promoted to Dead this night holds the
// death-speech slot before the rotation starts.
func (s *State) enterDay(cycle int, deathSpeech int) {
	s.Phase = Phase{Kind: PhaseDay, Cycle: cycle}
	s.endTurns = 0
	s.resetTurnState()
	s.dayStart = s.firstAliveFrom((s.dayStart + 1) % NumPlayers)
	s.Log.AppendAll(token.DayToken(cycle), token.DayPhaseStart)

	if deathSpeech != -1 {
		s.speech = &speechSlot{Player: deathSpeech, Final: false}
		s.setActive(deathSpeech)
	} else {
		s.setActive(s.dayStart)
	}
}
