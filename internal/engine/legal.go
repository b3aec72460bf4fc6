package engine

import "github.com/zedmor/mafia-token-engine/internal/token"

// LegalActions computes the legal action token sequences for the current
// active player. Day turns expose every available atom both bare (continue
// the turn) and with a trailing End-Turn (finish it), plus the bare End-Turn.
// Voting exposes exactly one ballot per candidate and never End-Turn. Night
// actions are always paired with End-Turn.
func (s *State) LegalActions() [][]token.Token {
	if s.Decided {
		return nil
	}
	if s.speech != nil {
		return s.speechActions()
	}

	switch s.Phase.Kind {
	case PhaseDay:
		return s.dayActions()
	case PhaseVoting:
		return s.votingActions()
	case PhaseNightKill:
		return s.nightActions(token.Kill)
	case PhaseNightDon:
		return s.nightActions(token.DonCheck)
	case PhaseNightSheriff:
		return s.nightActions(token.SheriffCheck)
	default:
		return nil
	}
}

// dayAtoms enumerates the atomic day actions still available to the active
// player under the turn quotas: no exact duplicates, at most one nomination,
// at most MaxDayActions atoms, no self-targeting declarations.
func (s *State) dayAtoms(actor int, allowNominate bool) []token.Action {
	if len(s.turn.Performed) >= MaxDayActions {
		return nil
	}

	var atoms []token.Action
	add := func(a token.Action) {
		for _, done := range s.turn.Performed {
			if done == a {
				return
			}
		}
		atoms = append(atoms, a)
	}

	add(token.ClaimSheriffAction())
	add(token.DenySheriffAction())
	for _, t := range s.AlivePlayers() {
		if t == actor {
			continue
		}
		add(token.SayAction(t, token.Red))
		add(token.SayAction(t, token.Black))
		add(token.ClaimSheriffCheckAction(t, token.Red))
		add(token.ClaimSheriffCheckAction(t, token.Black))
	}

	if allowNominate && s.turn.Nominations == 0 {
		for _, t := range s.AlivePlayers() {
			if t == actor || s.isNominated(t) {
				continue
			}
			add(token.NominateAction(t))
		}
	}
	return atoms
}

func (s *State) isNominated(p int) bool {
	for _, n := range s.Nominations {
		if n == p {
			return true
		}
	}
	return false
}

func (s *State) dayActions() [][]token.Token {
	var out [][]token.Token
	for _, a := range s.dayAtoms(s.Active, true) {
		enc := a.Encode()
		out = append(out, enc)
		out = append(out, append(append([]token.Token(nil), enc...), token.EndTurn))
	}
	out = append(out, []token.Token{token.EndTurn})
	return out
}

// speechActions covers death and final speeches: End-Turn always, plus
// effect-free declaration atoms paired with End-Turn. Nominations are not
// available to the dead.
func (s *State) speechActions() [][]token.Token {
	out := [][]token.Token{{token.EndTurn}}
	for _, a := range s.dayAtoms(s.Active, false) {
		out = append(out, append(append([]token.Token(nil), a.Encode()...), token.EndTurn))
	}
	return out
}

func (s *State) votingActions() [][]token.Token {
	if s.Phase.Round == 2 {
		return [][]token.Token{
			{token.VoteEliminateAll},
			{token.VoteKeepAll},
		}
	}
	var out [][]token.Token
	for _, c := range s.voteCandidates(s.Active) {
		out = append(out, []token.Token{token.Vote, token.PlayerToken(c)})
	}
	return out
}

// nightActions pairs the role verb with every alive non-self target and the
// mandatory End-Turn.
func (s *State) nightActions(verb token.Token) [][]token.Token {
	var out [][]token.Token
	for _, t := range s.AlivePlayers() {
		if t == s.Active {
			continue
		}
		out = append(out, []token.Token{verb, token.PlayerToken(t), token.EndTurn})
	}
	return out
}
