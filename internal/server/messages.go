package server

import (
	"fmt"

	"github.com/zedmor/mafia-token-engine/internal/engine"
	"github.com/zedmor/mafia-token-engine/internal/game"
	"github.com/zedmor/mafia-token-engine/internal/token"
)

// Message type discriminators on the framed transport.
const (
	MsgActionRequest  = "ACTION_REQUEST"
	MsgActionResponse = "ACTION_RESPONSE"
	MsgGameEvent      = "GAME_EVENT"
	MsgError          = "ERROR"
)

// ActionRequest is sent to the active player's client when their action is
// required.
type ActionRequest struct {
	Type         string             `json:"type"`
	PlayerID     int                `json:"player_id"`
	Phase        string             `json:"phase"`
	ValidActions map[string][][]int `json:"valid_actions"`
	Observation  Observation        `json:"observation"`
}

// Observation is the recipient-specific view of the game. Tokens is the
// player's chronological stream with the ephemeral turn cues injected; the
// seed never appears in it.
type Observation struct {
	Phase         string      `json:"phase"`
	Alive         []int       `json:"alive_players"`
	Nominations   []int       `json:"nominations"`
	Tied          []int       `json:"tied_players,omitempty"`
	Role          string      `json:"role"`
	MafiaTeam     []int       `json:"mafia_team,omitempty"`
	SheriffChecks []CheckView `json:"sheriff_checks,omitempty"`
	DonChecks     []CheckView `json:"don_checks,omitempty"`
	Tokens        []int       `json:"tokens"`
}

// CheckView is one private check result, rendered for the transport.
type CheckView struct {
	Cycle  int    `json:"cycle"`
	Target int    `json:"target"`
	Result string `json:"result"`
}

// ActionResponse is the client's submission. Action.Tokens carries the full
// action token sequence; day turns may pack multiple atoms before the closing
// END_TURN.
type ActionResponse struct {
	Type     string `json:"type"`
	PlayerID int    `json:"player_id"`
	Action   Action `json:"action"`
}

// Action is the structured form of a submission. Kind-specific fields follow
// the codec's templates; Tokens, when present, takes precedence and carries a
// raw multi-action sequence.
type Action struct {
	Type   string `json:"type"`
	Target *int   `json:"target,omitempty"`
	Color  string `json:"color,omitempty"`
	Tokens []int  `json:"tokens,omitempty"`
}

// GameEvent is a server push: phase transitions, eliminations, private check
// results (sent only to the actor), and game over.
type GameEvent struct {
	Type     string         `json:"type"`
	Event    string         `json:"event"`
	PlayerID int            `json:"player_id,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// ErrorMessage reports a rejected submission; the client keeps its turn and
// may retry.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// decodeActionTokens turns a transport Action into engine tokens.
func decodeActionTokens(a Action) ([]token.Token, error) {
	if len(a.Tokens) > 0 {
		out := make([]token.Token, len(a.Tokens))
		for i, v := range a.Tokens {
			out[i] = token.Token(v)
		}
		return out, nil
	}

	var atom token.Action
	switch a.Type {
	case "end_turn":
		atom = token.EndTurnAction()
	case "claim_sheriff":
		atom = token.ClaimSheriffAction()
	case "deny_sheriff":
		atom = token.DenySheriffAction()
	case "vote_eliminate_all":
		atom = token.VoteEliminateAllAction()
	case "vote_keep_all":
		atom = token.VoteKeepAllAction()
	case "nominate", "vote", "kill", "sheriff_check", "don_check":
		if a.Target == nil {
			return nil, fmt.Errorf("%w: %s requires a target", token.ErrInvalidTokenSequence, a.Type)
		}
		switch a.Type {
		case "nominate":
			atom = token.NominateAction(*a.Target)
		case "vote":
			atom = token.VoteAction(*a.Target)
		case "kill":
			atom = token.KillAction(*a.Target)
		case "sheriff_check":
			atom = token.SheriffCheckAction(*a.Target)
		default:
			atom = token.DonCheckAction(*a.Target)
		}
	case "say", "claim_sheriff_check":
		if a.Target == nil {
			return nil, fmt.Errorf("%w: %s requires a target", token.ErrInvalidTokenSequence, a.Type)
		}
		color, err := colorFromLabel(a.Color)
		if err != nil {
			return nil, err
		}
		if a.Type == "say" {
			atom = token.SayAction(*a.Target, color)
		} else {
			atom = token.ClaimSheriffCheckAction(*a.Target, color)
		}
	default:
		return nil, fmt.Errorf("%w: unknown action type %q", token.ErrInvalidTokenSequence, a.Type)
	}
	if a.Target != nil && (*a.Target < 0 || *a.Target >= engine.NumPlayers) {
		return nil, fmt.Errorf("%w: target %d out of range", token.ErrInvalidTokenSequence, *a.Target)
	}
	return atom.Encode(), nil
}

func colorFromLabel(label string) (token.Token, error) {
	switch label {
	case "red":
		return token.Red, nil
	case "black":
		return token.Black, nil
	default:
		return 0, fmt.Errorf("%w: color must be red or black, got %q", token.ErrInvalidTokenSequence, label)
	}
}

// buildValidActions groups the legal sequences by their opening verb so a
// structured client can enumerate argument lists per action kind. Sequences
// are reported verbatim as token IDs.
func buildValidActions(legal [][]token.Token) map[string][][]int {
	out := make(map[string][][]int)
	for _, seq := range legal {
		if len(seq) == 0 {
			continue
		}
		kind := verbLabel(seq[0])
		ids := make([]int, len(seq))
		for i, t := range seq {
			ids[i] = int(t)
		}
		out[kind] = append(out[kind], ids)
	}
	return out
}

func verbLabel(v token.Token) string {
	switch v {
	case token.EndTurn:
		return "end_turn"
	case token.Nominate:
		return "nominate"
	case token.ClaimSheriff:
		return "claim_sheriff"
	case token.ClaimSheriffCheck:
		return "claim_sheriff_check"
	case token.DenySheriff:
		return "deny_sheriff"
	case token.Say:
		return "say"
	case token.Vote:
		return "vote"
	case token.VoteEliminateAll:
		return "vote_eliminate_all"
	case token.VoteKeepAll:
		return "vote_keep_all"
	case token.Kill:
		return "kill"
	case token.SheriffCheck:
		return "sheriff_check"
	case token.DonCheck:
		return "don_check"
	default:
		return "unknown"
	}
}

// buildObservation assembles the recipient-specific payload from a state
// snapshot.
func buildObservation(state *engine.State, player int) Observation {
	obs := Observation{
		Phase:       state.Phase.String(),
		Alive:       state.AlivePlayers(),
		Nominations: append([]int(nil), state.Nominations...),
		Tied:        append([]int(nil), state.Tied...),
		Role:        state.Players[player].Role.String(),
	}
	p := state.Players[player]
	if p.Role.IsBlack() {
		obs.MafiaTeam = append([]int(nil), p.MafiaTeam...)
	}
	if p.Role == game.RoleSheriff {
		obs.SheriffChecks = checkViews(p.SheriffChecks)
	}
	if p.Role == game.RoleDon {
		obs.DonChecks = checkViews(p.DonChecks)
	}
	for _, t := range state.Log.Observe(player, state.Active) {
		obs.Tokens = append(obs.Tokens, int(t))
	}
	return obs
}

func checkViews(records []engine.CheckRecord) []CheckView {
	out := make([]CheckView, len(records))
	for i, r := range records {
		out[i] = CheckView{Cycle: r.Cycle, Target: r.Target, Result: checkLabel(r.Result)}
	}
	return out
}

func checkLabel(t token.Token) string {
	switch t {
	case token.Red:
		return "red"
	case token.Black:
		return "black"
	case token.Sheriff:
		return "sheriff"
	case token.NotSheriff:
		return "not_sheriff"
	default:
		return "unknown"
	}
}
