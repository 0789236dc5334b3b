package pvpchess

import (
	"context"
	"errors"

	"github.com/park285/Cheese-chessroom-bot/internal/obslog"
	"github.com/park285/Cheese-chessroom-bot/pkg/chessdto"
	"go.uber.org/zap"
)

// Multi fans writes out to every archive and reads from the first that answers.
type Multi struct {
	archives []Archive
}

func NewMulti(archives ...Archive) *Multi {
	list := make([]Archive, 0, len(archives))
	for _, a := range archives {
		if a != nil {
			list = append(list, a)
		}
	}
	return &Multi{archives: list}
}

func (m *Multi) SaveResult(ctx context.Context, g *chessdto.ChessGame) error {
	var errs []error
	for _, a := range m.archives {
		if err := a.SaveResult(ctx, g); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Recent(ctx context.Context, limit int) ([]*chessdto.ChessGame, error) {
	var lastErr error
	for _, a := range m.archives {
		games, err := a.Recent(ctx, limit)
		if err == nil {
			return games, nil
		}
		obslog.L().Warn("archive_recent_failed", zap.Error(err))
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}
