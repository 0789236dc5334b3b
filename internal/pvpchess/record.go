package pvpchess

import (
	"fmt"
	"strings"
	"time"

	"github.com/park285/Cheese-chessroom-bot/internal/chess"
	"github.com/park285/Cheese-chessroom-bot/internal/pvp"
	"github.com/park285/Cheese-chessroom-bot/pkg/chessdto"
)

// NewRecord builds the archive record of a concluded game.
func NewRecord(room string, p pvp.Playing, c chess.Conclusion) *chessdto.ChessGame {
	g := p.Game
	ended := g.EndedAt
	if ended.IsZero() {
		ended = time.Now()
	}
	rec := &chessdto.ChessGame{
		ID:           g.ID,
		Room:         strings.TrimSpace(room),
		White:        p.Challenger,
		Black:        p.Opponent,
		Result:       c.Result,
		ResultMethod: c.Method,
		MovesUCI:     g.Board.MovesUCI(),
		MovesSAN:     g.Board.MovesSAN(),
		StartedAt:    g.StartedAt,
		EndedAt:      ended,
	}
	if code, title, ok := g.Board.Opening(); ok {
		rec.ECO, rec.Opening = code, title
	}
	if d := ended.Sub(g.StartedAt); d > 0 {
		rec.Duration = d
	}
	rec.PGN = buildPGN(rec)
	return rec
}

func pgnResult(result string) string {
	switch strings.TrimSpace(result) {
	case "1-0", "0-1", "1/2-1/2":
		return result
	default:
		return "*"
	}
}

func buildPGN(g *chessdto.ChessGame) string {
	if g == nil {
		return ""
	}
	result := pgnResult(g.Result)
	date := g.EndedAt
	if date.IsZero() {
		date = time.Now()
	}

	var b strings.Builder
	b.WriteString("[Event \"Chess room\"]\n")
	if room := sanitizePGN(g.Room); room != "" {
		b.WriteString(fmt.Sprintf("[Site \"%s\"]\n", room))
	}
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(g.White)))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(g.Black)))
	if g.ECO != "" {
		b.WriteString(fmt.Sprintf("[ECO \"%s\"]\n", sanitizePGN(g.ECO)))
	}
	if g.Opening != "" {
		b.WriteString(fmt.Sprintf("[Opening \"%s\"]\n", sanitizePGN(g.Opening)))
	}
	if method := strings.TrimSpace(g.ResultMethod); method != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(method)))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", result))

	for i := 0; i < len(g.MovesSAN); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s ", i/2+1, strings.TrimSpace(g.MovesSAN[i])))
		if i+1 < len(g.MovesSAN) {
			b.WriteString(strings.TrimSpace(g.MovesSAN[i+1]))
			b.WriteString(" ")
		}
	}
	b.WriteString(result)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
