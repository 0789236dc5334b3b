package chessbuilder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/park285/Cheese-chessroom-bot/internal/adapter/chesspresenter"
	"github.com/park285/Cheese-chessroom-bot/internal/bot"
	"github.com/park285/Cheese-chessroom-bot/internal/config"
	"github.com/park285/Cheese-chessroom-bot/internal/irisfast"
	"github.com/park285/Cheese-chessroom-bot/internal/msgcat"
	"github.com/park285/Cheese-chessroom-bot/internal/pvp"
	"github.com/park285/Cheese-chessroom-bot/internal/pvpchess"
	"github.com/park285/Cheese-chessroom-bot/internal/render"
	"go.uber.org/zap"
)

// memoryArchiveSize bounds the in-process archive kept when no external
// store is configured, and backs reads when the external stores fail.
const memoryArchiveSize = 100

type Deps struct {
	Session    *pvp.Session
	Renderer   *render.ScratchRenderer
	Formatter  *chesspresenter.Formatter
	Presenter  *chesspresenter.Presenter
	Archive    pvpchess.Archive
	Dispatcher *bot.Dispatcher

	closers []func() error
}

// New wires the chess room from configuration. Replies leave through egress.
func New(cfg *config.AppConfig, egress irisfast.Egress, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if egress == nil {
		return nil, fmt.Errorf("nil egress")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := msgcat.New(strings.TrimSpace(cfg.MessagesDir))
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	d := &Deps{
		Session:  pvp.NewSession(pvp.WithStrictTurns(cfg.ChessStrictTurns)),
		Renderer: render.NewScratchRenderer(cfg.ChessBoardSize, cfg.ChessScratchSVG, cfg.ChessScratchPNG),
	}
	d.Formatter = chesspresenter.NewFormatter(cfg, catalog)
	d.Presenter = chesspresenter.NewPresenter(d.Formatter, egress.SendText, egress.SendImage)

	archive, err := d.buildArchive(cfg, logger)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.Archive = archive

	d.Dispatcher = bot.NewDispatcher(bot.Deps{
		Session:      d.Session,
		Renderer:     d.Renderer,
		Formatter:    d.Formatter,
		Sender:       d.Presenter,
		Archive:      d.Archive,
		HistoryLimit: cfg.ChessHistoryLimit,
	})
	return d, nil
}

// buildArchive fans out to Redis and SQL when configured, always keeping an
// in-memory copy as the read fallback.
func (d *Deps) buildArchive(cfg *config.AppConfig, logger *zap.Logger) (pvpchess.Archive, error) {
	var archives []pvpchess.Archive

	if url := strings.TrimSpace(cfg.RedisURL); url != "" {
		store, err := pvpchess.NewRedisStore(url, memoryArchiveSize)
		if err != nil {
			return nil, fmt.Errorf("init redis archive: %w", err)
		}
		d.closers = append(d.closers, store.Close)
		archives = append(archives, store)
		logger.Info("archive_redis_enabled")
	}

	if url := strings.TrimSpace(cfg.DatabaseURL); url != "" {
		repo, err := pvpchess.NewRepository(url)
		if err != nil {
			return nil, fmt.Errorf("init game repository: %w", err)
		}
		d.closers = append(d.closers, repo.Close)
		archives = append(archives, repo)
		logger.Info("archive_database_enabled")
	}

	archives = append(archives, pvpchess.NewMemoryStore(memoryArchiveSize))
	if len(archives) == 1 {
		return archives[0], nil
	}
	return pvpchess.NewMulti(archives...), nil
}

// Close releases archive connections.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
