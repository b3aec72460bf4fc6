// Package server exposes the turn-arbitration surface over a single game: the
// TurnServer facade used in-process, and the framed JSON transport defined in
// the external contract.
package server

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zedmor/mafia-token-engine/internal/engine"
	"github.com/zedmor/mafia-token-engine/internal/observability"
	"github.com/zedmor/mafia-token-engine/internal/token"
)

// TurnServer wraps one game aggregate. All entry points are safe for
// concurrent use: client goroutines serialize through the state lock, so
// action order is exactly the server's acceptance order.
type TurnServer struct {
	logger  *zap.Logger
	metrics *observability.Metrics

	mu    sync.Mutex
	state *engine.State
}

// New creates an uninitialized turn server. Calls before Initialize return
// ErrGameNotInitialized.
func New(logger *zap.Logger, metrics *observability.Metrics) *TurnServer {
	return &TurnServer{logger: logger, metrics: metrics}
}

// Initialize builds the deterministic starting state for the seed.
func (ts *TurnServer) Initialize(seed int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.state = engine.Initialize(seed)
	if ts.metrics != nil {
		ts.metrics.GamesStarted.Inc()
	}
	ts.logger.Info("game initialized", zap.Int("seed", seed))
}

// Observation returns the player's chronological stream with the ephemeral
// turn cues injected when the player is active.
func (ts *TurnServer) Observation(player int) ([]token.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.state == nil {
		return nil, engine.ErrGameNotInitialized
	}
	active := ts.state.Active
	if ts.state.IsOver() {
		active = -1
	}
	return ts.state.Log.Observe(player, active), nil
}

// LegalActions lists the legal token sequences for the current active player.
// Non-active players have no legal actions.
func (ts *TurnServer) LegalActions() ([][]token.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.state == nil {
		return nil, engine.ErrGameNotInitialized
	}
	return ts.state.LegalActions(), nil
}

// ApplyAction validates and executes a submission from player. The aggregate
// is untouched when an error is returned.
func (ts *TurnServer) ApplyAction(toks []token.Token, player int) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.state == nil {
		return engine.ErrGameNotInitialized
	}
	start := time.Now()
	phaseLabel := ts.state.Phase.Kind.MetricLabel()
	err := ts.state.Apply(toks, player)
	if ts.metrics != nil {
		ts.metrics.ActionLatency.Observe(float64(time.Since(start).Milliseconds()))
		if err != nil {
			ts.metrics.ActionRejects.WithLabelValues(rejectReason(err)).Inc()
		} else {
			ts.metrics.ActionsApplied.WithLabelValues(phaseLabel).Inc()
		}
	}
	if err == nil {
		if winner, over := ts.state.WinnerToken(); over {
			if ts.metrics != nil {
				ts.metrics.GamesFinished.WithLabelValues(winner.String()).Inc()
			}
			ts.logger.Info("game over", zap.Int("seed", ts.state.Seed), zap.String("winner", winner.String()))
		}
	}
	return err
}

// Result returns the winner token once the game is decided.
func (ts *TurnServer) Result() (token.Token, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.state == nil {
		return 0, false
	}
	return ts.state.WinnerToken()
}

// ActivePlayer returns the seat whose action is currently required.
func (ts *TurnServer) ActivePlayer() (int, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.state == nil {
		return 0, engine.ErrGameNotInitialized
	}
	return ts.state.Active, nil
}

// Snapshot clones the aggregate for read-only callers (observation payloads,
// artifact writers, spectators).
func (ts *TurnServer) Snapshot() (*engine.State, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.state == nil {
		return nil, engine.ErrGameNotInitialized
	}
	return ts.state.Clone(), nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, token.ErrInvalidTokenSequence):
		return "invalid_token_sequence"
	case errors.Is(err, engine.ErrIllegalAction):
		return "illegal_action"
	case errors.Is(err, engine.ErrWrongPlayer):
		return "wrong_player"
	case errors.Is(err, engine.ErrGameAlreadyOver):
		return "game_already_over"
	case errors.Is(err, engine.ErrGameNotInitialized):
		return "game_not_initialized"
	default:
		return "internal"
	}
}
