// Package token defines the fixed vocabulary of the Mafia token game and the
// codec between structured actions and token sequences.
//
// Token IDs are stable: trained models and persisted artifacts depend on the
// exact numeric values, so the enumeration below must never be reordered.
package token

import "fmt"

// Token is a single vocabulary entry. The numeric values are part of the
// training-data contract.
type Token int

// Verb tokens (action types).
const (
	EndTurn Token = iota
	Nominate
	ClaimSheriff
	ClaimSheriffCheck
	DenySheriff
	Say
	Vote
	VoteEliminateAll
	VoteKeepAll
	Kill
	SheriffCheck
	DonCheck
	YourPosition
)

// Player argument tokens.
const (
	Player0 Token = iota + 13
	Player1
	Player2
	Player3
	Player4
	Player5
	Player6
	Player7
	Player8
	Player9
)

// Color tokens.
const (
	Red Token = iota + 23
	Black
)

// Role tokens.
const (
	Citizen Token = iota + 25
	Sheriff
	Mafia
	Don
)

// System tokens, generated by the environment only.
const (
	CheckResult Token = iota + 29
	NotSheriff
	MafiaTeam
	YourRole
	NominatedList
	VoteRevealed
	Eliminated
	Killed
	TieResult
	StartingPlayer
	GameStart
	RedTeamWon
	BlackTeamWon
)

// Phase tokens.
const (
	Day1 Token = iota + 42
	Day2
	Day3
	Day4
	Day5
	Night1
	Night2
	Night3
	Night4
)

// Phase markers and turn signals. YourTurn and NextTurn are ephemeral: they
// appear in observations only and are never stored in a sequence.
const (
	VotingPhaseStart Token = iota + 51
	NightPhaseStart
	DayPhaseStart
	YourTurn
	NextTurn
	RevotePhase
	EliminateAllVote
)

// VocabSize is the number of regular vocabulary tokens. Seed tokens live in a
// disjoint range above it.
const VocabSize = 58

// Seed tokens occupy [SeedBase, SeedBase+SeedRange). They are server-internal
// and must never be emitted to a client or stored in a sequence.
const (
	SeedBase  = 1000
	SeedRange = 1000
)

// NumPlayers is fixed for the ten-player game this vocabulary encodes.
const NumPlayers = 10

var names = map[Token]string{
	EndTurn:           "<END_TURN>",
	Nominate:          "<NOMINATE>",
	ClaimSheriff:      "<CLAIM_SHERIFF>",
	ClaimSheriffCheck: "<CLAIM_SHERIFF_CHECK>",
	DenySheriff:       "<DENY_SHERIFF>",
	Say:               "<SAY>",
	Vote:              "<VOTE>",
	VoteEliminateAll:  "<VOTE_ELIMINATE_ALL>",
	VoteKeepAll:       "<VOTE_KEEP_ALL>",
	Kill:              "<KILL>",
	SheriffCheck:      "<SHERIFF_CHECK>",
	DonCheck:          "<DON_CHECK>",
	YourPosition:      "<YOUR_POSITION>",
	Player0:           "<PLAYER_0>",
	Player1:           "<PLAYER_1>",
	Player2:           "<PLAYER_2>",
	Player3:           "<PLAYER_3>",
	Player4:           "<PLAYER_4>",
	Player5:           "<PLAYER_5>",
	Player6:           "<PLAYER_6>",
	Player7:           "<PLAYER_7>",
	Player8:           "<PLAYER_8>",
	Player9:           "<PLAYER_9>",
	Red:               "<RED>",
	Black:             "<BLACK>",
	Citizen:           "<CITIZEN>",
	Sheriff:           "<SHERIFF>",
	Mafia:             "<MAFIA>",
	Don:               "<DON>",
	CheckResult:       "<CHECK_RESULT>",
	NotSheriff:        "<NOT_SHERIFF>",
	MafiaTeam:         "<MAFIA_TEAM>",
	YourRole:          "<YOUR_ROLE>",
	NominatedList:     "<NOMINATED_LIST>",
	VoteRevealed:      "<VOTE_REVEALED>",
	Eliminated:        "<ELIMINATED>",
	Killed:            "<KILLED>",
	TieResult:         "<TIE_RESULT>",
	StartingPlayer:    "<STARTING_PLAYER>",
	GameStart:         "<GAME_START>",
	RedTeamWon:        "<RED_TEAM_WON>",
	BlackTeamWon:      "<BLACK_TEAM_WON>",
	Day1:              "<DAY_1>",
	Day2:              "<DAY_2>",
	Day3:              "<DAY_3>",
	Day4:              "<DAY_4>",
	Day5:              "<DAY_5>",
	Night1:            "<NIGHT_1>",
	Night2:            "<NIGHT_2>",
	Night3:            "<NIGHT_3>",
	Night4:            "<NIGHT_4>",
	VotingPhaseStart:  "<VOTING_PHASE_START>",
	NightPhaseStart:   "<NIGHT_PHASE_START>",
	DayPhaseStart:     "<DAY_PHASE_START>",
	YourTurn:          "<YOUR_TURN>",
	NextTurn:          "<NEXT_TURN>",
	RevotePhase:       "<REVOTE_PHASE>",
	EliminateAllVote:  "<ELIMINATE_ALL_VOTE>",
}

func (t Token) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	if t.IsSeed() {
		return fmt.Sprintf("<SEED_%04d>", int(t)-SeedBase)
	}
	return fmt.Sprintf("<UNK_%d>", int(t))
}

// PlayerToken maps a player index 0..9 to its token.
func PlayerToken(index int) Token {
	if index < 0 || index >= NumPlayers {
		panic(fmt.Sprintf("player index out of range: %d", index))
	}
	return Player0 + Token(index)
}

// PlayerIndex maps a player token back to its index. ok is false for
// non-player tokens.
func PlayerIndex(t Token) (int, bool) {
	if t < Player0 || t > Player9 {
		return 0, false
	}
	return int(t - Player0), true
}

// DayToken returns the phase token for day n (1..5); day indices past the last
// token clamp to Day5 so a turn-capped game still renders a phase.
func DayToken(n int) Token {
	if n < 1 {
		n = 1
	}
	if n > 5 {
		n = 5
	}
	return Day1 + Token(n-1)
}

// NightToken returns the phase token for night n (1..4), clamping like DayToken.
func NightToken(n int) Token {
	if n < 1 {
		n = 1
	}
	if n > 4 {
		n = 4
	}
	return Night1 + Token(n-1)
}

// EncodeSeed maps a game seed into the reserved seed-token range.
func EncodeSeed(seed int) Token {
	return Token(SeedBase + (seed%SeedRange+SeedRange)%SeedRange)
}

func (t Token) IsVerb() bool   { return t >= EndTurn && t <= DonCheck }
func (t Token) IsPlayer() bool { return t >= Player0 && t <= Player9 }
func (t Token) IsColor() bool  { return t == Red || t == Black }
func (t Token) IsRole() bool   { return t >= Citizen && t <= Don }
func (t Token) IsPhase() bool  { return t >= Day1 && t <= Night4 }
func (t Token) IsSeed() bool   { return t >= SeedBase && t < SeedBase+SeedRange }

// IsEphemeral reports whether the token is observation-only and forbidden in
// stored sequences.
func (t Token) IsEphemeral() bool { return t == YourTurn || t == NextTurn }

// IsSystem reports whether the token is environment-generated and read-only.
func (t Token) IsSystem() bool {
	return (t >= CheckResult && t <= BlackTeamWon) || t == YourPosition
}

// Verb argument shapes.

// NeedsNoTarget reports verbs encoded as a bare verb token.
func NeedsNoTarget(v Token) bool {
	switch v {
	case EndTurn, ClaimSheriff, DenySheriff, VoteEliminateAll, VoteKeepAll:
		return true
	}
	return false
}

// NeedsPlayerTarget reports verbs encoded as verb + player token.
func NeedsPlayerTarget(v Token) bool {
	switch v {
	case Nominate, Vote, Kill, SheriffCheck, DonCheck:
		return true
	}
	return false
}

// NeedsPlayerColorTargets reports verbs encoded as verb + player + color.
func NeedsPlayerColorTargets(v Token) bool {
	switch v {
	case ClaimSheriffCheck, Say:
		return true
	}
	return false
}

// Arity returns the number of argument tokens the verb carries.
func Arity(v Token) int {
	switch {
	case NeedsNoTarget(v):
		return 0
	case NeedsPlayerTarget(v):
		return 1
	case NeedsPlayerColorTargets(v):
		return 2
	}
	return -1
}
