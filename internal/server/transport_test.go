package server

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap"
)

type wireMessage struct {
	Type         string             `json:"type"`
	Event        string             `json:"event"`
	PlayerID     int                `json:"player_id"`
	ValidActions map[string][][]int `json:"valid_actions"`
	Data         map[string]any     `json:"data"`
	Message      string             `json:"message"`
}

// pickAction is a deterministic stand-in client policy: end the turn when
// possible, otherwise take the first sequence of the first kind.
func pickAction(valid map[string][][]int) []int {
	if seqs, ok := valid["end_turn"]; ok {
		for _, seq := range seqs {
			if len(seq) == 1 {
				return seq
			}
		}
	}
	kinds := make([]string, 0, len(valid))
	for k := range valid {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		if len(valid[k]) > 0 {
			return valid[k][0]
		}
	}
	return nil
}

func runClient(t *testing.T, addr string, winners chan<- string) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Errorf("dial: %v", err)
		winners <- ""
		return
	}
	defer conn.Close()

	player := -1
	for {
		payload, err := ReadFrame(conn)
		if err != nil {
			winners <- ""
			return
		}
		var msg wireMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Errorf("client unmarshal: %v", err)
			winners <- ""
			return
		}
		switch {
		case msg.Type == MsgGameEvent && msg.Event == "player_assigned":
			player = msg.PlayerID
		case msg.Type == MsgGameEvent && msg.Event == "game_over":
			winner, _ := msg.Data["winner"].(string)
			winners <- winner
			return
		case msg.Type == MsgActionRequest:
			if msg.PlayerID != player {
				t.Errorf("player %d received request for %d", player, msg.PlayerID)
			}
			seq := pickAction(msg.ValidActions)
			resp := ActionResponse{
				Type:     MsgActionResponse,
				PlayerID: player,
				Action:   Action{Tokens: seq},
			}
			out, _ := json.Marshal(resp)
			if err := WriteFrame(conn, out); err != nil {
				winners <- ""
				return
			}
		case msg.Type == MsgError:
			t.Errorf("player %d received error: %s", player, msg.Message)
		}
	}
}

func TestTransportPlaysFullGame(t *testing.T) {
	logDir := t.TempDir()
	ts := New(zap.NewNop(), nil)
	transport := NewTransport(TransportConfig{
		Addr:   "127.0.0.1:0",
		Seed:   0,
		LogDir: logDir,
	}, ts, zap.NewNop(), nil)
	if err := transport.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- transport.Run(ctx) }()

	winners := make(chan string, 10)
	for i := 0; i < 10; i++ {
		go runClient(t, transport.Address(), winners)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("transport run: %v", err)
		}
	case <-ctx.Done():
		t.Fatalf("game did not finish in time")
	}

	gotWinner := false
	for i := 0; i < 10; i++ {
		select {
		case w := <-winners:
			if w != "" {
				gotWinner = true
			}
		case <-time.After(5 * time.Second):
		}
	}
	if !gotWinner {
		t.Fatalf("no client observed the game result")
	}

	combined := filepath.Join(logDir, "all_players_seed_0.json")
	if _, err := os.Stat(combined); err != nil {
		t.Errorf("combined artifact missing: %v", err)
	}
	for i := 0; i < 10; i++ {
		name := filepath.Join(logDir, "player_"+strconv.Itoa(i)+"_tokens_seed_0.json")
		if _, err := os.Stat(name); err != nil {
			t.Errorf("player artifact missing: %v", err)
		}
	}
}

func TestTransportRejectsEleventhClient(t *testing.T) {
	ts := New(zap.NewNop(), nil)
	transport := NewTransport(TransportConfig{Addr: "127.0.0.1:0", Seed: 1}, ts, zap.NewNop(), nil)
	if err := transport.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go transport.acceptLoop(ctx)

	conns := make([]net.Conn, 0, 11)
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()
	for i := 0; i < 10; i++ {
		conn, err := net.Dial("tcp", transport.Address())
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		conns = append(conns, conn)
		payload, err := ReadFrame(conn)
		if err != nil {
			t.Fatalf("read assignment %d: %v", i, err)
		}
		var msg wireMessage
		json.Unmarshal(payload, &msg)
		if msg.Event != "player_assigned" {
			t.Fatalf("client %d got %q", i, msg.Event)
		}
	}

	extra, err := net.Dial("tcp", transport.Address())
	if err != nil {
		t.Fatalf("dial extra: %v", err)
	}
	conns = append(conns, extra)
	payload, err := ReadFrame(extra)
	if err != nil {
		t.Fatalf("read rejection: %v", err)
	}
	var msg wireMessage
	json.Unmarshal(payload, &msg)
	if msg.Type != MsgError {
		t.Errorf("eleventh client got %q, want error", msg.Type)
	}
}
