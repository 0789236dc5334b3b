package bot

import (
	"strings"

	"github.com/park285/Cheese-chessroom-bot/internal/pvp"
	"github.com/park285/Cheese-chessroom-bot/pkg/chessdto"
)

// Snapshot converts a session state into the presentation DTO.
func Snapshot(state pvp.State) *chessdto.SessionState {
	if state == nil {
		state = pvp.Idle{}
	}
	out := &chessdto.SessionState{Phase: state.Phase().String()}
	switch s := state.(type) {
	case pvp.Challenged:
		out.Challenger = s.Challenger
	case pvp.Ready:
		out.Challenger, out.Opponent = s.Challenger, s.Opponent
	case pvp.Playing:
		out.Challenger, out.Opponent = s.Challenger, s.Opponent
		fillGame(out, s.Game)
	}
	return out
}

func fillGame(out *chessdto.SessionState, g *pvp.Game) {
	if g == nil || g.Board == nil {
		return
	}
	b := g.Board
	out.GameID = g.ID
	out.FEN = b.FEN()
	out.MovesSAN = b.MovesSAN()
	out.MovesUCI = b.MovesUCI()
	out.Turn = string(b.Turn())
	out.DrawOffer = g.DrawOfferedBy
	if mv, ok := b.LastMove(); ok {
		out.LastMoveSAN = mv.SAN
		out.InCheck = strings.HasSuffix(mv.SAN, "+") || strings.HasSuffix(mv.SAN, "#")
	}
	if c, over := g.Concluded(); over {
		out.Outcome = c.Result
		out.OutcomeMeta = c.Method
		out.Winner = string(c.Winner)
	}
}
