package pvpchess

import (
	"context"
	"errors"

	"github.com/park285/Cheese-chessroom-bot/pkg/chessdto"
)

var ErrInvalidRecord = errors.New("invalid game record")

// Archive stores finished games and lists the most recent ones.
type Archive interface {
	SaveResult(ctx context.Context, g *chessdto.ChessGame) error
	Recent(ctx context.Context, limit int) ([]*chessdto.ChessGame, error)
}

func validate(g *chessdto.ChessGame) error {
	if g == nil || g.ID == "" {
		return ErrInvalidRecord
	}
	return nil
}

func clone(g *chessdto.ChessGame) *chessdto.ChessGame {
	cp := *g
	cp.MovesUCI = append([]string(nil), g.MovesUCI...)
	cp.MovesSAN = append([]string(nil), g.MovesSAN...)
	return &cp
}
