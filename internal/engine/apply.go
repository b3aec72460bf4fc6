package engine

import (
	"fmt"

	"github.com/zedmor/mafia-token-engine/internal/game"
	"github.com/zedmor/mafia-token-engine/internal/token"
)

// Apply decodes, validates and executes one submission from player. Every
// check runs before the first mutation, so a returned error means the
// aggregate is unchanged.
func (s *State) Apply(toks []token.Token, player int) error {
	if s.Decided {
		return ErrGameAlreadyOver
	}
	if player != s.Active {
		return fmt.Errorf("%w: expected player %d, got %d", ErrWrongPlayer, s.Active, player)
	}
	atoms, err := token.ParseSequence(toks)
	if err != nil {
		return err
	}

	// A speech slot preempts the surrounding phase: a final speech after a
	// voting elimination runs while the phase is still Voting.
	if s.speech != nil {
		return s.applyDay(atoms, player)
	}

	switch s.Phase.Kind {
	case PhaseDay:
		return s.applyDay(atoms, player)
	case PhaseVoting:
		return s.applyVote(atoms, player)
	case PhaseNightKill, PhaseNightDon, PhaseNightSheriff:
		return s.applyNight(atoms, player)
	default:
		return ErrGameAlreadyOver
	}
}

// isDayAtomKind reports the action kinds a day turn may contain besides End-Turn.
func isDayAtomKind(k token.ActionKind) bool {
	switch k {
	case token.ActionSay, token.ActionClaimSheriff, token.ActionDenySheriff,
		token.ActionClaimSheriffCheck, token.ActionNominate:
		return true
	}
	return false
}

// applyDay handles day turns and speech slots: zero or more atoms, optionally
// closed by End-Turn. Multi-atom submissions must end with End-Turn.
func (s *State) applyDay(atoms []token.Action, player int) error {
	hasEnd := atoms[len(atoms)-1].Kind == token.ActionEndTurn
	body := atoms
	if hasEnd {
		body = atoms[:len(atoms)-1]
	}

	if len(body) > 1 && !hasEnd {
		return fmt.Errorf("%w: multi-action day sequence must end with END_TURN", ErrIllegalAction)
	}
	if len(s.turn.Performed)+len(body) > MaxDayActions {
		return fmt.Errorf("%w: day turn exceeds %d actions", ErrIllegalAction, MaxDayActions)
	}

	nominations := s.turn.Nominations
	for i, a := range body {
		if !isDayAtomKind(a.Kind) {
			return fmt.Errorf("%w: %s not allowed in day phase", ErrIllegalAction, a.Kind)
		}
		if err := s.checkDayAtom(a, player); err != nil {
			return err
		}
		if a.Kind == token.ActionNominate {
			if s.speech != nil {
				return fmt.Errorf("%w: speeches cannot nominate", ErrIllegalAction)
			}
			nominations++
			if nominations > 1 {
				return fmt.Errorf("%w: only one nomination per day turn", ErrIllegalAction)
			}
		}
		for _, done := range s.turn.Performed {
			if done == a {
				return fmt.Errorf("%w: duplicate action %s", ErrIllegalAction, a.Kind)
			}
		}
		for _, other := range body[:i] {
			if other == a {
				return fmt.Errorf("%w: duplicate action %s", ErrIllegalAction, a.Kind)
			}
		}
	}
	if s.speech != nil && !hasEnd {
		return fmt.Errorf("%w: speech must end with END_TURN", ErrIllegalAction)
	}

	for _, a := range body {
		s.appendActorPrefix(player)
		s.Log.AppendAll(a.Encode()...)
		s.turn.Performed = append(s.turn.Performed, a)
		if a.Kind == token.ActionNominate {
			s.turn.Nominations++
			s.Nominations = append(s.Nominations, a.Target)
		}
	}

	if hasEnd {
		s.appendActorPrefix(player)
		s.Log.AppendAll(token.EndTurn)
		s.finishDayTurn()
	}
	return nil
}

// appendActorPrefix opens the actor's public turn segment with their player
// token, once: later atoms of the same turn continue the open segment, and a
// stored transition cue already ending the streams serves as the prefix.
func (s *State) appendActorPrefix(player int) {
	if len(s.turn.Performed) > 0 {
		return
	}
	if last, ok := s.Log.Last(); ok && last == token.PlayerToken(player) {
		return
	}
	s.Log.AppendAll(token.PlayerToken(player))
}

// checkDayAtom validates one atom's target against the live table and the
// self-targeting rules.
func (s *State) checkDayAtom(a token.Action, player int) error {
	switch a.Kind {
	case token.ActionSay, token.ActionClaimSheriffCheck:
		if a.Target == player {
			return fmt.Errorf("%w: cannot target self", ErrIllegalAction)
		}
		if !s.IsAlive(a.Target) {
			return fmt.Errorf("%w: target %d is not alive", ErrIllegalAction, a.Target)
		}
	case token.ActionNominate:
		if a.Target == player {
			return fmt.Errorf("%w: cannot nominate self", ErrIllegalAction)
		}
		if !s.IsAlive(a.Target) {
			return fmt.Errorf("%w: target %d is not alive", ErrIllegalAction, a.Target)
		}
		if s.isNominated(a.Target) {
			return fmt.Errorf("%w: player %d already nominated today", ErrIllegalAction, a.Target)
		}
	}
	return nil
}

// applyVote handles a voting-phase submission: exactly one ballot, never
// End-Turn (ballots end the turn on their own).
func (s *State) applyVote(atoms []token.Action, player int) error {
	if len(atoms) != 1 {
		return fmt.Errorf("%w: voting accepts a single ballot", ErrIllegalAction)
	}
	a := atoms[0]

	if s.Phase.Round == 2 {
		switch a.Kind {
		case token.ActionVoteEliminateAll:
			s.castVote(VoteRecord{Voter: player, Target: -1, Eliminate: true})
		case token.ActionVoteKeepAll:
			s.castVote(VoteRecord{Voter: player, Target: -1})
		default:
			return fmt.Errorf("%w: %s not allowed in eliminate-all round", ErrIllegalAction, a.Kind)
		}
		return nil
	}

	if a.Kind != token.ActionVote {
		return fmt.Errorf("%w: %s not allowed in voting phase", ErrIllegalAction, a.Kind)
	}
	for _, c := range s.voteCandidates(player) {
		if c == a.Target {
			s.castVote(VoteRecord{Voter: player, Target: a.Target})
			return nil
		}
	}
	return fmt.Errorf("%w: player %d is not on the ballot", ErrIllegalAction, a.Target)
}

// applyNight handles the role action of the current night sub-phase: exactly
// one verb + target, closed by the mandatory End-Turn. Results are derived
// from roles at check time, recorded in the actor's private memory and
// emitted only to the actor's stream; a kill's victim becomes public
// immediately.
func (s *State) applyNight(atoms []token.Action, player int) error {
	if len(atoms) != 2 || atoms[1].Kind != token.ActionEndTurn {
		return fmt.Errorf("%w: night actions are a single action plus END_TURN", ErrIllegalAction)
	}
	a := atoms[0]

	var want token.ActionKind
	switch s.Phase.Kind {
	case PhaseNightKill:
		want = token.ActionKill
	case PhaseNightDon:
		want = token.ActionDonCheck
	default:
		want = token.ActionSheriffCheck
	}
	if a.Kind != want {
		return fmt.Errorf("%w: %s not allowed in %s", ErrIllegalAction, a.Kind, s.Phase)
	}
	if a.Target == player {
		return fmt.Errorf("%w: cannot target self", ErrIllegalAction)
	}
	if !s.IsAlive(a.Target) {
		return fmt.Errorf("%w: target %d is not alive", ErrIllegalAction, a.Target)
	}

	switch a.Kind {
	case token.ActionKill:
		s.Players[a.Target].Alive = MarkedForNightKill
		s.Log.AppendTo(player, token.Kill, token.PlayerToken(a.Target), token.EndTurn)
		s.Log.AppendAll(token.PlayerToken(a.Target), token.Killed)

	case token.ActionDonCheck:
		result := token.NotSheriff
		if s.Players[a.Target].Role == game.RoleSheriff {
			result = token.Sheriff
		}
		s.Players[player].DonChecks = append(s.Players[player].DonChecks, CheckRecord{
			Cycle:  s.Phase.Cycle,
			Target: a.Target,
			Result: result,
		})
		s.Log.AppendTo(player, token.DonCheck, token.PlayerToken(a.Target), result, token.EndTurn)

	case token.ActionSheriffCheck:
		result := token.Red
		if s.Players[a.Target].Role.IsBlack() {
			result = token.Black
		}
		s.Players[player].SheriffChecks = append(s.Players[player].SheriffChecks, CheckRecord{
			Cycle:  s.Phase.Cycle,
			Target: a.Target,
			Result: result,
		})
		s.Log.AppendTo(player, token.SheriffCheck, token.PlayerToken(a.Target), result, token.EndTurn)
	}

	s.advanceNight()
	return nil
}
