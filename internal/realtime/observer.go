// Package realtime streams the public view of a running game to websocket
// spectators: the shared token stream and coarse status updates. Spectators
// never receive roles, check results or open-round votes.
package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zedmor/mafia-token-engine/internal/observability"
	"github.com/zedmor/mafia-token-engine/internal/server"
)

type statusMessage struct {
	Type   string `json:"type"`
	Phase  string `json:"phase"`
	Alive  []int  `json:"alive_players"`
	Active int    `json:"active_player"`
	Winner string `json:"winner,omitempty"`
}

type tokensMessage struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Tokens []int  `json:"tokens"`
}

// Observer is the websocket handler for spectators.
type Observer struct {
	upgrader websocket.Upgrader
	ts       *server.TurnServer
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewObserver(ts *server.TurnServer, logger *zap.Logger, metrics *observability.Metrics) *Observer {
	return &Observer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		ts:      ts,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *Observer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := o.upgrader.Upgrade(w, r, nil)
	if err != nil {
		o.logger.Warn("spectator upgrade failed", zap.Error(err))
		return
	}
	if o.metrics != nil {
		o.metrics.SpectatorClients.Inc()
		defer o.metrics.SpectatorClients.Dec()
	}
	defer conn.Close()

	// Drain control frames so pong handling and client closes are noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	sent := 0
	lastStatus := statusMessage{}
	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
		}

		state, err := o.ts.Snapshot()
		if err != nil {
			continue
		}

		public := state.Log.Public()
		if len(public) > sent {
			ids := make([]int, 0, len(public)-sent)
			for _, t := range public[sent:] {
				ids = append(ids, int(t))
			}
			msg := tokensMessage{Type: "tokens", Offset: sent, Tokens: ids}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			sent = len(public)
		}

		status := statusMessage{
			Type:   "status",
			Phase:  state.Phase.String(),
			Alive:  state.AlivePlayers(),
			Active: state.Active,
		}
		if tok, over := state.WinnerToken(); over {
			status.Winner = tok.String()
		}
		if !statusEqual(status, lastStatus) {
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(status); err != nil {
				return
			}
			lastStatus = status
		}
		if status.Winner != "" {
			return
		}
	}
}

func statusEqual(a, b statusMessage) bool {
	if a.Phase != b.Phase || a.Active != b.Active || a.Winner != b.Winner {
		return false
	}
	if len(a.Alive) != len(b.Alive) {
		return false
	}
	for i := range a.Alive {
		if a.Alive[i] != b.Alive[i] {
			return false
		}
	}
	return true
}
