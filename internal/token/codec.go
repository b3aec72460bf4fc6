package token

import (
	"errors"
	"fmt"
)

// ErrInvalidTokenSequence is returned when a token sequence cannot be decoded
// into a structured action: wrong arity for a verb, a mistyped argument, or an
// unknown leading token.
var ErrInvalidTokenSequence = errors.New("invalid token sequence")

// ActionKind enumerates the structured action variants.
type ActionKind int

const (
	ActionEndTurn ActionKind = iota
	ActionNominate
	ActionVote
	ActionKill
	ActionSheriffCheck
	ActionDonCheck
	ActionClaimSheriff
	ActionDenySheriff
	ActionClaimSheriffCheck
	ActionSay
	ActionVoteEliminateAll
	ActionVoteKeepAll
)

var kindNames = map[ActionKind]string{
	ActionEndTurn:           "end_turn",
	ActionNominate:          "nominate",
	ActionVote:              "vote",
	ActionKill:              "kill",
	ActionSheriffCheck:      "sheriff_check",
	ActionDonCheck:          "don_check",
	ActionClaimSheriff:      "claim_sheriff",
	ActionDenySheriff:       "deny_sheriff",
	ActionClaimSheriffCheck: "claim_sheriff_check",
	ActionSay:               "say",
	ActionVoteEliminateAll:  "vote_eliminate_all",
	ActionVoteKeepAll:       "vote_keep_all",
}

func (k ActionKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("action_kind_%d", int(k))
}

// Action is a decoded player action. Target is a player index and is -1 when
// the kind takes no target; Color is Red or Black and is meaningful only for
// Say and ClaimSheriffCheck.
type Action struct {
	Kind   ActionKind
	Target int
	Color  Token
}

// Constructors keep unused fields at their canonical zero so the round-trip
// law decode(encode(a)) == a holds by value comparison.

func EndTurnAction() Action             { return Action{Kind: ActionEndTurn, Target: -1} }
func NominateAction(target int) Action  { return Action{Kind: ActionNominate, Target: target} }
func VoteAction(target int) Action      { return Action{Kind: ActionVote, Target: target} }
func KillAction(target int) Action      { return Action{Kind: ActionKill, Target: target} }
func SheriffCheckAction(t int) Action   { return Action{Kind: ActionSheriffCheck, Target: t} }
func DonCheckAction(t int) Action       { return Action{Kind: ActionDonCheck, Target: t} }
func ClaimSheriffAction() Action        { return Action{Kind: ActionClaimSheriff, Target: -1} }
func DenySheriffAction() Action         { return Action{Kind: ActionDenySheriff, Target: -1} }
func VoteEliminateAllAction() Action    { return Action{Kind: ActionVoteEliminateAll, Target: -1} }
func VoteKeepAllAction() Action         { return Action{Kind: ActionVoteKeepAll, Target: -1} }
func SayAction(t int, c Token) Action   { return Action{Kind: ActionSay, Target: t, Color: c} }
func ClaimSheriffCheckAction(t int, c Token) Action {
	return Action{Kind: ActionClaimSheriffCheck, Target: t, Color: c}
}

var kindVerbs = map[ActionKind]Token{
	ActionEndTurn:           EndTurn,
	ActionNominate:          Nominate,
	ActionVote:              Vote,
	ActionKill:              Kill,
	ActionSheriffCheck:      SheriffCheck,
	ActionDonCheck:          DonCheck,
	ActionClaimSheriff:      ClaimSheriff,
	ActionDenySheriff:       DenySheriff,
	ActionClaimSheriffCheck: ClaimSheriffCheck,
	ActionSay:               Say,
	ActionVoteEliminateAll:  VoteEliminateAll,
	ActionVoteKeepAll:       VoteKeepAll,
}

var verbKinds = func() map[Token]ActionKind {
	m := make(map[Token]ActionKind, len(kindVerbs))
	for k, v := range kindVerbs {
		m[v] = k
	}
	return m
}()

// Verb returns the verb token that opens the action's encoding.
func (a Action) Verb() Token { return kindVerbs[a.Kind] }

// Encode renders the action as its fixed token template.
func (a Action) Encode() []Token {
	verb := a.Verb()
	switch {
	case NeedsNoTarget(verb):
		return []Token{verb}
	case NeedsPlayerTarget(verb):
		return []Token{verb, PlayerToken(a.Target)}
	default:
		return []Token{verb, PlayerToken(a.Target), a.Color}
	}
}

// Decode parses exactly one action from the token sequence. The full sequence
// must be consumed; trailing tokens are an error.
func Decode(tokens []Token) (Action, error) {
	if len(tokens) == 0 {
		return Action{}, fmt.Errorf("%w: empty sequence", ErrInvalidTokenSequence)
	}
	action, rest, err := decodeOne(tokens)
	if err != nil {
		return Action{}, err
	}
	if len(rest) != 0 {
		return Action{}, fmt.Errorf("%w: %d trailing tokens after %s", ErrInvalidTokenSequence, len(rest), action.Kind)
	}
	return action, nil
}

func decodeOne(tokens []Token) (Action, []Token, error) {
	verb := tokens[0]
	kind, ok := verbKinds[verb]
	if !ok {
		return Action{}, nil, fmt.Errorf("%w: %s is not a verb", ErrInvalidTokenSequence, verb)
	}
	arity := Arity(verb)
	if len(tokens) < 1+arity {
		return Action{}, nil, fmt.Errorf("%w: %s needs %d argument(s), got %d", ErrInvalidTokenSequence, verb, arity, len(tokens)-1)
	}
	a := Action{Kind: kind, Target: -1}
	if arity >= 1 {
		idx, isPlayer := PlayerIndex(tokens[1])
		if !isPlayer {
			return Action{}, nil, fmt.Errorf("%w: %s expects a player token, got %s", ErrInvalidTokenSequence, verb, tokens[1])
		}
		a.Target = idx
	}
	if arity == 2 {
		if !tokens[2].IsColor() {
			return Action{}, nil, fmt.Errorf("%w: %s expects a color token, got %s", ErrInvalidTokenSequence, verb, tokens[2])
		}
		a.Color = tokens[2]
	}
	return a, tokens[1+arity:], nil
}

// ParseSequence splits a submission into its atomic actions. A trailing
// EndTurn becomes the final atom; an EndTurn anywhere else is rejected, as is
// anything that fails to decode.
func ParseSequence(tokens []Token) ([]Action, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty sequence", ErrInvalidTokenSequence)
	}
	var atoms []Action
	rest := tokens
	for len(rest) > 0 {
		action, tail, err := decodeOne(rest)
		if err != nil {
			return nil, err
		}
		if action.Kind == ActionEndTurn && len(tail) != 0 {
			return nil, fmt.Errorf("%w: END_TURN before end of sequence", ErrInvalidTokenSequence)
		}
		atoms = append(atoms, action)
		rest = tail
	}
	return atoms, nil
}

// EncodeSequence concatenates the encodings of a run of atoms.
func EncodeSequence(atoms []Action) []Token {
	var out []Token
	for _, a := range atoms {
		out = append(out, a.Encode()...)
	}
	return out
}

// Equal reports whether two token sequences are identical.
func Equal(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FormatSequence renders tokens as their symbolic names, space separated.
// Used in test failure messages; the .txt artifact renderings lay tokens out
// with their own line breaks instead.
func FormatSequence(tokens []Token) string {
	out := ""
	for i, t := range tokens {
		if i > 0 {
			out += " "
		}
		out += t.String()
	}
	return out
}
