// Package sequence maintains the per-player chronological token streams. The
// streams are the sole observable history of a game: they diverge only where
// visibility rules require (private night results, votes during an open
// round) and are otherwise byte-identical.
//
// The package also keeps a public stream holding exactly the tokens every
// seat received, which feeds spectators.
package sequence

import (
	"fmt"

	"github.com/zedmor/mafia-token-engine/internal/token"
)

// Log is the set of append-only streams for one game.
type Log struct {
	seqs   [][]token.Token
	public []token.Token
}

// NewLog creates empty streams for n players.
func NewLog(n int) *Log {
	return &Log{seqs: make([][]token.Token, n)}
}

// Size returns the number of player streams.
func (l *Log) Size() int { return len(l.seqs) }

func guard(toks []token.Token) {
	for _, t := range toks {
		if t.IsEphemeral() {
			panic(fmt.Sprintf("ephemeral token %s must not be stored", t))
		}
		if t.IsSeed() {
			panic(fmt.Sprintf("seed token %s must not be stored", t))
		}
	}
}

// AppendAll appends tokens to every player stream and to the public stream.
func (l *Log) AppendAll(toks ...token.Token) {
	guard(toks)
	for i := range l.seqs {
		l.seqs[i] = append(l.seqs[i], toks...)
	}
	l.public = append(l.public, toks...)
}

// AppendTo appends tokens to a single player's stream.
func (l *Log) AppendTo(player int, toks ...token.Token) {
	guard(toks)
	l.seqs[player] = append(l.seqs[player], toks...)
}

// AppendPublic appends to the public stream only. Used when the per-player
// openings already carry seat-specific versions of the same framing.
func (l *Log) AppendPublic(toks ...token.Token) {
	guard(toks)
	l.public = append(l.public, toks...)
}

// Player returns a copy of one player's stream.
func (l *Log) Player(i int) []token.Token {
	return append([]token.Token(nil), l.seqs[i]...)
}

// Len returns the stored length of one player's stream.
func (l *Log) Len(i int) int { return len(l.seqs[i]) }

// Last returns the most recent token of the public stream. ok is false while
// the stream is empty.
func (l *Log) Last() (token.Token, bool) {
	if len(l.public) == 0 {
		return 0, false
	}
	return l.public[len(l.public)-1], true
}

// Public returns a copy of the public stream.
func (l *Log) Public() []token.Token {
	return append([]token.Token(nil), l.public...)
}

// Clone deep-copies all streams.
func (l *Log) Clone() *Log {
	cp := &Log{seqs: make([][]token.Token, len(l.seqs))}
	for i := range l.seqs {
		cp.seqs[i] = append([]token.Token(nil), l.seqs[i]...)
	}
	cp.public = append([]token.Token(nil), l.public...)
	return cp
}

// Observe renders player's stream for observation. For the active player the
// ephemeral turn cues are injected: the player's own token (unless the stream
// already ends with it), then YourTurn, then the NextTurn action cue. Nothing
// is stored.
func (l *Log) Observe(player, active int) []token.Token {
	out := l.Player(player)
	if player != active {
		return out
	}
	self := token.PlayerToken(player)
	if len(out) == 0 || out[len(out)-1] != self {
		out = append(out, self)
	}
	return append(out, token.YourTurn, token.NextTurn)
}
