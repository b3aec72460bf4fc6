// Package artifacts serializes finished games into the training-file layout:
// one token file per player plus a combined manifest, all keyed by seed, and
// informational .txt renderings. Artifact contents come from the final state,
// except the generated_at metadata field, which records the wall-clock write
// time; they may include post-game information such as roles and the winner.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zedmor/mafia-token-engine/internal/engine"
	"github.com/zedmor/mafia-token-engine/internal/token"
)

// Metadata describes one serialized sequence.
type Metadata struct {
	Seed        int    `json:"seed"`
	PlayerID    *int   `json:"player_id,omitempty"`
	Role        string `json:"role,omitempty"`
	Winner      string `json:"winner"`
	NumTokens   int    `json:"num_tokens,omitempty"`
	GeneratedAt string `json:"generated_at"`
}

// PlayerFile is the per-player training artifact.
type PlayerFile struct {
	Metadata      Metadata `json:"metadata"`
	TokenSequence []int    `json:"token_sequence"`
}

// CombinedFile holds every player's sequence in one manifest.
type CombinedFile struct {
	Metadata       Metadata         `json:"metadata"`
	TokenSequences map[string][]int `json:"token_sequences"`
}

// Write emits all artifacts for a finished game into dir, creating it if
// needed. File names are seed-qualified so multiple games can share a
// directory.
func Write(dir string, state *engine.State) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	winner := "undecided"
	if tok, over := state.WinnerToken(); over {
		winner = tok.String()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	combined := CombinedFile{
		Metadata: Metadata{
			Seed:        state.Seed,
			Winner:      winner,
			GeneratedAt: now,
		},
		TokenSequences: make(map[string][]int, engine.NumPlayers),
	}

	for player := 0; player < engine.NumPlayers; player++ {
		seq := state.Log.Player(player)
		ids := make([]int, len(seq))
		for i, t := range seq {
			ids[i] = int(t)
		}
		combined.TokenSequences[fmt.Sprintf("player_%d", player)] = ids

		id := player
		pf := PlayerFile{
			Metadata: Metadata{
				Seed:        state.Seed,
				PlayerID:    &id,
				Role:        state.Players[player].Role.String(),
				Winner:      winner,
				NumTokens:   len(ids),
				GeneratedAt: now,
			},
			TokenSequence: ids,
		}
		name := fmt.Sprintf("player_%d_tokens_seed_%d.json", player, state.Seed)
		if err := writeJSON(filepath.Join(dir, name), pf); err != nil {
			return err
		}

		txtName := fmt.Sprintf("player_%d_tokens_seed_%d.txt", player, state.Seed)
		if err := os.WriteFile(filepath.Join(dir, txtName), []byte(RenderReadable(seq)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", txtName, err)
		}
	}

	name := fmt.Sprintf("all_players_seed_%d.json", state.Seed)
	return writeJSON(filepath.Join(dir, name), combined)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// RenderReadable formats a token stream for human review: one line per
// completed action, phase tokens on their own lines.
func RenderReadable(seq []token.Token) string {
	var b strings.Builder
	var line []string
	flush := func() {
		if len(line) > 0 {
			b.WriteString(strings.Join(line, " "))
			b.WriteByte('\n')
			line = nil
		}
	}
	for _, t := range seq {
		if t.IsPhase() || t == token.VotingPhaseStart || t == token.NightPhaseStart ||
			t == token.DayPhaseStart || t == token.RevotePhase {
			flush()
			b.WriteString(t.String())
			b.WriteByte('\n')
			continue
		}
		line = append(line, t.String())
		if t == token.EndTurn || t == token.Killed || t == token.Eliminated ||
			t == token.RedTeamWon || t == token.BlackTeamWon {
			flush()
		}
	}
	flush()
	return b.String()
}
