package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/zedmor/mafia-token-engine/internal/artifacts"
	"github.com/zedmor/mafia-token-engine/internal/engine"
	"github.com/zedmor/mafia-token-engine/internal/observability"
	"github.com/zedmor/mafia-token-engine/internal/token"
)

// TransportConfig configures the framed TCP front end for one game.
type TransportConfig struct {
	Addr   string
	Seed   int
	LogDir string
}

// Transport accepts up to ten clients, one per assigned player index, and
// arbitrates turns over the length-prefixed JSON contract. Socket I/O runs
// one goroutine per client; all state mutation is serialized through the
// TurnServer lock and the single drive loop.
type Transport struct {
	cfg     TransportConfig
	ts      *TurnServer
	logger  *zap.Logger
	metrics *observability.Metrics

	ln        net.Listener
	mu        sync.Mutex
	clients   map[int]*clientConn
	responses chan submission
}

type clientConn struct {
	player  int
	session string
	conn    net.Conn
	writeMu sync.Mutex
}

type submission struct {
	player int
	resp   ActionResponse
}

// NewTransport wires the transport around a turn server.
func NewTransport(cfg TransportConfig, ts *TurnServer, logger *zap.Logger, metrics *observability.Metrics) *Transport {
	return &Transport{
		cfg:       cfg,
		ts:        ts,
		logger:    logger,
		metrics:   metrics,
		clients:   make(map[int]*clientConn),
		responses: make(chan submission, engine.NumPlayers),
	}
}

// Listen binds the TCP address. Addr may use port 0 for tests; Address
// reports the bound endpoint.
func (t *Transport) Listen() error {
	ln, err := net.Listen("tcp", t.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", t.cfg.Addr, err)
	}
	t.ln = ln
	t.logger.Info("transport listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Address returns the bound listen address.
func (t *Transport) Address() string {
	if t.ln == nil {
		return t.cfg.Addr
	}
	return t.ln.Addr().String()
}

// Run initializes the game, accepts clients and drives turns until the game
// is decided or the context is cancelled.
func (t *Transport) Run(ctx context.Context) error {
	if t.ln == nil {
		if err := t.Listen(); err != nil {
			return err
		}
	}
	t.ts.Initialize(t.cfg.Seed)

	acceptCtx, cancelAccept := context.WithCancel(ctx)
	defer cancelAccept()
	go t.acceptLoop(acceptCtx)

	err := t.drive(ctx)
	t.close()
	return err
}

func (t *Transport) acceptLoop(ctx context.Context) {
	go func() {
		<-ctx.Done()
		t.ln.Close()
	}()
	for {
		conn, err := t.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.logger.Warn("accept failed", zap.Error(err))
			return
		}
		t.admit(ctx, conn)
	}
}

// admit assigns the lowest free player index to a new connection, or rejects
// it when all ten seats are taken.
func (t *Transport) admit(ctx context.Context, conn net.Conn) {
	t.mu.Lock()
	player := -1
	for i := 0; i < engine.NumPlayers; i++ {
		if _, taken := t.clients[i]; !taken {
			player = i
			break
		}
	}
	if player == -1 {
		t.mu.Unlock()
		payload, _ := json.Marshal(ErrorMessage{Type: MsgError, Message: "no available player slots"})
		_ = WriteFrame(conn, payload)
		conn.Close()
		return
	}
	c := &clientConn{player: player, session: uuid.NewString(), conn: conn}
	t.clients[player] = c
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.ConnectedClients.Inc()
	}
	t.logger.Info("client connected",
		zap.Int("player", player),
		zap.String("session", c.session),
		zap.String("remote", conn.RemoteAddr().String()))

	t.send(c, GameEvent{
		Type:     MsgGameEvent,
		Event:    "player_assigned",
		PlayerID: player,
	})
	go t.readLoop(ctx, c)
}

func (t *Transport) readLoop(ctx context.Context, c *clientConn) {
	defer func() {
		t.mu.Lock()
		if t.clients[c.player] == c {
			delete(t.clients, c.player)
		}
		t.mu.Unlock()
		c.conn.Close()
		if t.metrics != nil {
			t.metrics.ConnectedClients.Dec()
		}
		t.logger.Info("client disconnected", zap.Int("player", c.player), zap.String("session", c.session))
	}()
	for {
		payload, err := ReadFrame(c.conn)
		if err != nil {
			return
		}
		var resp ActionResponse
		if err := json.Unmarshal(payload, &resp); err != nil {
			t.send(c, ErrorMessage{Type: MsgError, Message: "invalid json"})
			continue
		}
		if resp.Type != MsgActionResponse {
			t.send(c, ErrorMessage{Type: MsgError, Message: fmt.Sprintf("unexpected message type %q", resp.Type)})
			continue
		}
		select {
		case t.responses <- submission{player: c.player, resp: resp}:
		case <-ctx.Done():
			return
		}
	}
}

// drive is the turn loop: prompt the active player, wait for a submission,
// apply it, publish the consequences, repeat until the game is decided.
func (t *Transport) drive(ctx context.Context) error {
	tracer := otel.Tracer("mafia-token-engine/transport")
	for {
		if winner, over := t.ts.Result(); over {
			return t.finish(winner)
		}

		active, err := t.ts.ActivePlayer()
		if err != nil {
			return err
		}
		client, err := t.waitClient(ctx, active)
		if err != nil {
			return err
		}
		if err := t.sendActionRequest(client, active); err != nil {
			continue
		}

		sub, err := t.awaitSubmission(ctx, active)
		if err != nil {
			return err
		}

		toks, err := decodeActionTokens(sub.resp.Action)
		if err != nil {
			t.sendErrorTo(sub.player, err)
			continue
		}

		before, err := t.ts.Snapshot()
		if err != nil {
			return err
		}

		_, span := tracer.Start(ctx, "apply_action")
		applyErr := t.ts.ApplyAction(toks, sub.player)
		span.End()
		if applyErr != nil {
			t.sendErrorTo(sub.player, applyErr)
			continue
		}
		t.publishConsequences(before, sub.player)
	}
}

// awaitSubmission waits for the next submission; anyone but the active player
// is told off immediately and their message is discarded.
func (t *Transport) awaitSubmission(ctx context.Context, active int) (submission, error) {
	for {
		select {
		case sub := <-t.responses:
			if sub.player != active {
				t.sendErrorTo(sub.player, engine.ErrWrongPlayer)
				continue
			}
			return sub, nil
		case <-ctx.Done():
			return submission{}, ctx.Err()
		}
	}
}

// waitClient blocks until the seat's client is connected.
func (t *Transport) waitClient(ctx context.Context, player int) (*clientConn, error) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		t.mu.Lock()
		c := t.clients[player]
		t.mu.Unlock()
		if c != nil {
			return c, nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (t *Transport) sendActionRequest(c *clientConn, player int) error {
	state, err := t.ts.Snapshot()
	if err != nil {
		return err
	}
	legal, err := t.ts.LegalActions()
	if err != nil {
		return err
	}
	return t.send(c, ActionRequest{
		Type:         MsgActionRequest,
		PlayerID:     player,
		Phase:        state.Phase.String(),
		ValidActions: buildValidActions(legal),
		Observation:  buildObservation(state, player),
	})
}

// publishConsequences diffs the pre-action snapshot against the new state and
// pushes game events: deaths publicly, check results privately to the actor,
// and phase transitions. The game-over event is broadcast by finish.
func (t *Transport) publishConsequences(before *engine.State, actor int) {
	after, err := t.ts.Snapshot()
	if err != nil {
		return
	}

	for i := 0; i < engine.NumPlayers; i++ {
		wasAlive := before.Players[i].Alive == engine.Alive
		if wasAlive && after.Players[i].Alive != engine.Alive {
			event := "player_eliminated"
			if after.Players[i].Alive == engine.MarkedForNightKill {
				event = "player_killed"
			}
			t.broadcast(GameEvent{Type: MsgGameEvent, Event: event, PlayerID: i})
		}
	}

	if actorChecks := newCheck(before, after, actor); actorChecks != nil {
		t.sendTo(actor, GameEvent{
			Type:     MsgGameEvent,
			Event:    "check_result",
			PlayerID: actor,
			Data: map[string]any{
				"target": actorChecks.Target,
				"result": checkLabel(actorChecks.Result),
			},
		})
	}

	if before.Phase != after.Phase {
		t.broadcast(GameEvent{
			Type:  MsgGameEvent,
			Event: "phase_changed",
			Data:  map[string]any{"phase": after.Phase.String()},
		})
	}
}

// newCheck returns the check record the actor gained from this action, if any.
func newCheck(before, after *engine.State, actor int) *engine.CheckRecord {
	if len(after.Players[actor].DonChecks) > len(before.Players[actor].DonChecks) {
		rec := after.Players[actor].DonChecks[len(after.Players[actor].DonChecks)-1]
		return &rec
	}
	if len(after.Players[actor].SheriffChecks) > len(before.Players[actor].SheriffChecks) {
		rec := after.Players[actor].SheriffChecks[len(after.Players[actor].SheriffChecks)-1]
		return &rec
	}
	return nil
}

// finish broadcasts the result, writes training artifacts when a log
// directory is configured, and ends the session.
func (t *Transport) finish(winner token.Token) error {
	t.broadcast(GameEvent{
		Type:  MsgGameEvent,
		Event: "game_over",
		Data:  map[string]any{"winner": winner.String()},
	})
	if t.cfg.LogDir == "" {
		return nil
	}
	state, err := t.ts.Snapshot()
	if err != nil {
		return err
	}
	if err := artifacts.Write(t.cfg.LogDir, state); err != nil {
		t.logger.Error("artifact write failed", zap.Error(err))
		return err
	}
	t.logger.Info("artifacts written", zap.String("dir", t.cfg.LogDir), zap.Int("seed", state.Seed))
	return nil
}

func (t *Transport) send(c *clientConn, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return WriteFrame(c.conn, payload)
}

func (t *Transport) sendTo(player int, msg any) {
	t.mu.Lock()
	c := t.clients[player]
	t.mu.Unlock()
	if c != nil {
		_ = t.send(c, msg)
	}
}

func (t *Transport) sendErrorTo(player int, err error) {
	var msg string
	switch {
	case errors.Is(err, engine.ErrWrongPlayer):
		msg = "not your turn"
	case errors.Is(err, token.ErrInvalidTokenSequence):
		msg = fmt.Sprintf("invalid token sequence: %v", err)
	default:
		msg = err.Error()
	}
	t.sendTo(player, ErrorMessage{Type: MsgError, Message: msg})
}

func (t *Transport) broadcast(msg any) {
	t.mu.Lock()
	conns := make([]*clientConn, 0, len(t.clients))
	for _, c := range t.clients {
		conns = append(conns, c)
	}
	t.mu.Unlock()
	for _, c := range conns {
		_ = t.send(c, msg)
	}
}

func (t *Transport) close() {
	if t.ln != nil {
		t.ln.Close()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.clients {
		c.conn.Close()
	}
}
