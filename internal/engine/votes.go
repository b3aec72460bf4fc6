package engine

import "github.com/zedmor/mafia-token-engine/internal/token"

// voteCandidates returns the legal targets for the current voting round:
// the day's nominees in round 0 (falling back to every other alive player
// when nobody was nominated), the tied set in round 1. Round 2 is the binary
// eliminate-all ballot and has no player targets.
func (s *State) voteCandidates(voter int) []int {
	switch s.Phase.Round {
	case 0:
		if len(s.Nominations) > 0 {
			return append([]int(nil), s.Nominations...)
		}
		var out []int
		for _, p := range s.AlivePlayers() {
			if p != voter {
				out = append(out, p)
			}
		}
		return out
	case 1:
		return append([]int(nil), s.Tied...)
	default:
		return nil
	}
}

// castVote records the ballot in the ledger and in the voter's own stream
// only, then advances the rotation or resolves the round. Votes auto-end the
// voter's turn.
func (s *State) castVote(rec VoteRecord) {
	s.Votes = append(s.Votes, rec)

	own := []token.Token{token.PlayerToken(rec.Voter)}
	if s.Phase.Round == 2 {
		if rec.Eliminate {
			own = append(own, token.VoteEliminateAll)
		} else {
			own = append(own, token.VoteKeepAll)
		}
	} else {
		own = append(own, token.Vote, token.PlayerToken(rec.Target))
	}
	own = append(own, token.EndTurn)
	s.Log.AppendTo(rec.Voter, own...)

	if len(s.Votes) >= s.AliveCount() {
		s.resolveRound()
		return
	}
	s.setActive(s.nextAliveAfter(s.Active))
}

// revealLedger re-emits the completed round's full ledger to every stream in
// cast order, the voter's own stream included, so all ten sequences share an
// identical suffix at every revelation point.
func (s *State) revealLedger() {
	for _, rec := range s.Votes {
		toks := []token.Token{token.PlayerToken(rec.Voter)}
		if s.Phase.Round == 2 {
			if rec.Eliminate {
				toks = append(toks, token.VoteEliminateAll)
			} else {
				toks = append(toks, token.VoteKeepAll)
			}
		} else {
			toks = append(toks, token.Vote, token.PlayerToken(rec.Target))
		}
		toks = append(toks, token.EndTurn)
		s.Log.AppendAll(toks...)
	}
}

// tally counts round-0/1 votes per target and returns the leaders.
func (s *State) tally() (leaders []int, max int) {
	counts := make(map[int]int)
	for _, rec := range s.Votes {
		counts[rec.Target]++
	}
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	for target := 0; target < NumPlayers; target++ {
		if counts[target] == max && max > 0 {
			leaders = append(leaders, target)
		}
	}
	return leaders, max
}

// resolveRound runs when the rotation completes. The ledger is revealed
// before any phase marker is appended; ties promote the tied set into the
// next round, a unique maximum eliminates immediately, and the round-2
// eliminate-all ballot removes the whole tied set on a strict majority.
func (s *State) resolveRound() {
	s.revealLedger()

	if s.Phase.Round == 2 {
		yes := 0
		for _, rec := range s.Votes {
			if rec.Eliminate {
				yes++
			}
		}
		threshold := s.AliveCount()/2 + 1
		if yes >= threshold {
			s.Log.AppendAll(token.EliminateAllVote)
			for _, p := range s.Tied {
				s.eliminate(p)
			}
			if s.decideWinner() {
				return
			}
		}
		s.enterNight()
		return
	}

	leaders, _ := s.tally()
	if len(leaders) > 1 {
		s.startRevote(s.Phase.Round+1, leaders)
		return
	}

	eliminated := leaders[0]
	s.eliminate(eliminated)
	s.Log.AppendAll(token.PlayerToken(eliminated), token.Eliminated)
	if s.decideWinner() {
		return
	}

	// The eliminated player holds a final-speech slot before the night.
	s.speech = &speechSlot{Player: eliminated, Final: true}
	s.resetTurnState()
	s.setActive(eliminated)
}

// eliminate marks a voting casualty Dead immediately.
func (s *State) eliminate(p int) {
	s.Players[p].Alive = Dead
}
