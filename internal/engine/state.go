// Package engine owns the game aggregate: players, phase machine, legal-action
// computation, vote resolution and the apply-action entry point. State is
// mutated only through Apply; everything a rejected action might have touched
// is validated up front so a rejection leaves the aggregate untouched.
package engine

import (
	"errors"

	"github.com/zedmor/mafia-token-engine/internal/game"
	"github.com/zedmor/mafia-token-engine/internal/sequence"
	"github.com/zedmor/mafia-token-engine/internal/token"
)

// Error kinds surfaced to callers. ErrInvalidTokenSequence lives in the token
// package next to the codec that raises it.
var (
	ErrIllegalAction      = errors.New("illegal action")
	ErrWrongPlayer        = errors.New("wrong player")
	ErrGameNotInitialized = errors.New("game not initialized")
	ErrGameAlreadyOver    = errors.New("game already over")
	ErrDeserialization    = errors.New("state failed invariants on reload")
)

// NumPlayers is fixed at ten for this ruleset.
const NumPlayers = token.NumPlayers

// MaxDayActions caps the atomic actions in a single day turn, End-Turn
// excluded.
const MaxDayActions = 7

// MaxCycles forces termination: a game still undecided when the night of this
// cycle ends is scored for the Black team (legacy engine policy).
const MaxCycles = 10

// AliveState distinguishes a player killed this night, who is still owed a
// death speech, from one long dead.
type AliveState int

const (
	Alive AliveState = iota
	MarkedForNightKill
	Dead
)

// CheckRecord is one private night-check result, indexed by the day cycle it
// was made in. Result is Red/Black for sheriff checks and Sheriff/NotSheriff
// for don checks.
type CheckRecord struct {
	Cycle  int
	Target int
	Result token.Token
}

// Player is one seat. Other players are referred to by index only; the struct
// carries no references.
type Player struct {
	Role  game.Role
	Alive AliveState

	// Private memory. MafiaTeam lists every Black seat (own included) and is
	// identical across all Black players' memories.
	MafiaTeam     []int
	SheriffChecks []CheckRecord
	DonChecks     []CheckRecord
}

// VoteRecord is one cast vote in the current round, in cast order. Target is
// -1 in the eliminate-all round, where Eliminate carries the ballot.
type VoteRecord struct {
	Voter     int
	Target    int
	Eliminate bool
}

// speechSlot marks a dead player who still owes a speech: a death speech at
// day start, or a final speech right after a voting elimination.
type speechSlot struct {
	Player int
	Final  bool
}

// turnState tracks quotas within the active player's current day turn.
type turnState struct {
	Performed   []token.Action
	Nominations int
}

// State is the complete game aggregate. It is created by Initialize and
// mutated only through Apply.
type State struct {
	Seed    int
	Players [NumPlayers]Player
	Phase   Phase
	Active  int

	// dayStart is the seat that opened the current day rotation; the next day
	// starts at the first alive seat after it.
	dayStart int
	// endTurns counts End-Turn occurrences by alive players in the current day
	// phase and drives the day-to-voting transition.
	endTurns int

	Nominations []int
	Votes       []VoteRecord
	Tied        []int

	speech *speechSlot
	turn   turnState

	Winner  game.Team
	Decided bool

	Log *sequence.Log
}

// Initialize builds the deterministic starting state for a seed: roles from
// the arrangement table, mafia team memory for Black players, Day 1 with
// Player 0 active, and the ten opening sequences.
func Initialize(seed int) *State {
	roles := game.ArrangementForSeed(seed)
	mafia := game.MafiaIndices(roles)

	s := &State{
		Seed:     seed,
		Phase:    Phase{Kind: PhaseDay, Cycle: 1},
		Active:   0,
		dayStart: 0,
		Log:      sequence.NewLog(NumPlayers),
	}
	for i := range s.Players {
		s.Players[i] = Player{Role: roles[i], Alive: Alive}
		if roles[i].IsBlack() {
			team := make([]int, len(mafia))
			copy(team, mafia)
			s.Players[i].MafiaTeam = team
		}
	}

	for i := 0; i < NumPlayers; i++ {
		opening := []token.Token{token.GameStart, token.PlayerToken(i), token.YourRole, roles[i].Token()}
		if roles[i].IsBlack() {
			opening = append(opening, token.MafiaTeam)
			for _, m := range mafia {
				if m != i {
					opening = append(opening, token.PlayerToken(m))
				}
			}
		}
		opening = append(opening, token.Day1, token.DayPhaseStart)
		s.Log.AppendTo(i, opening...)
	}
	// The opening differs per seat, so the public stream carries only the
	// shared phase framing.
	s.Log.AppendPublic(token.GameStart, token.Day1, token.DayPhaseStart)
	return s
}

// Clone deep-copies the aggregate. The engine is pure enough that lookahead
// callers can fork a game by cloning.
func (s *State) Clone() *State {
	cp := *s
	for i := range cp.Players {
		cp.Players[i].MafiaTeam = append([]int(nil), s.Players[i].MafiaTeam...)
		cp.Players[i].SheriffChecks = append([]CheckRecord(nil), s.Players[i].SheriffChecks...)
		cp.Players[i].DonChecks = append([]CheckRecord(nil), s.Players[i].DonChecks...)
	}
	cp.Nominations = append([]int(nil), s.Nominations...)
	cp.Votes = append([]VoteRecord(nil), s.Votes...)
	cp.Tied = append([]int(nil), s.Tied...)
	if s.speech != nil {
		slot := *s.speech
		cp.speech = &slot
	}
	cp.turn.Performed = append([]token.Action(nil), s.turn.Performed...)
	cp.Log = s.Log.Clone()
	return &cp
}

// IsOver reports whether a winner has been decided.
func (s *State) IsOver() bool { return s.Decided }

// WinnerToken returns the terminal token once the game is decided.
func (s *State) WinnerToken() (token.Token, bool) {
	if !s.Decided {
		return 0, false
	}
	if s.Winner == game.TeamRed {
		return token.RedTeamWon, true
	}
	return token.BlackTeamWon, true
}

// IsAlive reports whether the seat is fully alive (not night-marked, not dead).
func (s *State) IsAlive(i int) bool { return s.Players[i].Alive == Alive }

// AliveCount counts fully alive players.
func (s *State) AliveCount() int {
	n := 0
	for i := range s.Players {
		if s.IsAlive(i) {
			n++
		}
	}
	return n
}

// AlivePlayers lists fully alive seats in ascending order.
func (s *State) AlivePlayers() []int {
	var out []int
	for i := range s.Players {
		if s.IsAlive(i) {
			out = append(out, i)
		}
	}
	return out
}

// teamCounts tallies alive players per side.
func (s *State) teamCounts() (red, black int) {
	for i := range s.Players {
		if !s.IsAlive(i) {
			continue
		}
		if s.Players[i].Role.IsBlack() {
			black++
		} else {
			red++
		}
	}
	return red, black
}

// decideWinner checks the end conditions: Red wins with no Black players left,
// Black wins once it matches the Red count. Returns true if the game ended.
func (s *State) decideWinner() bool {
	if s.Decided {
		return true
	}
	red, black := s.teamCounts()
	switch {
	case black == 0:
		s.Winner = game.TeamRed
	case black >= red:
		s.Winner = game.TeamBlack
	default:
		return false
	}
	s.Decided = true
	s.Phase = Phase{Kind: PhaseGameOver, Cycle: s.Phase.Cycle}
	if tok, ok := s.WinnerToken(); ok {
		s.Log.AppendAll(tok)
	}
	return true
}

// nextAliveAfter returns the first alive seat strictly after i, wrapping; -1
// when nobody is alive.
func (s *State) nextAliveAfter(i int) int {
	for step := 1; step <= NumPlayers; step++ {
		j := (i + step) % NumPlayers
		if s.IsAlive(j) {
			return j
		}
	}
	return -1
}

// firstAliveFrom returns the first alive seat at or after i, wrapping.
func (s *State) firstAliveFrom(i int) int {
	for step := 0; step < NumPlayers; step++ {
		j := (i + step) % NumPlayers
		if s.IsAlive(j) {
			return j
		}
	}
	return -1
}

// InSpeech reports whether the active seat holds a death or final speech slot.
func (s *State) InSpeech() bool { return s.speech != nil }

// resetTurnState clears per-turn day quotas when the active player advances.
func (s *State) resetTurnState() {
	s.turn = turnState{}
}

// Validate rechecks structural invariants. Used when a state is reloaded from
// a snapshot rather than built by Initialize.
func (s *State) Validate() error {
	var don, mafia, sheriff, citizens int
	for i := range s.Players {
		switch s.Players[i].Role {
		case game.RoleDon:
			don++
		case game.RoleMafia:
			mafia++
		case game.RoleSheriff:
			sheriff++
		case game.RoleCitizen:
			citizens++
		}
	}
	if don != 1 || mafia != 2 || sheriff != 1 || citizens != 6 {
		return ErrDeserialization
	}
	if s.Active < 0 || s.Active >= NumPlayers {
		return ErrDeserialization
	}
	if !s.Decided && s.speech == nil && !s.IsAlive(s.Active) {
		return ErrDeserialization
	}
	if s.Log == nil || s.Log.Size() != NumPlayers {
		return ErrDeserialization
	}
	return nil
}
