package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/park285/Cheese-chessroom-bot/internal/adapter/chesspresenter"
	"github.com/park285/Cheese-chessroom-bot/internal/chess"
	"github.com/park285/Cheese-chessroom-bot/internal/obslog"
	"github.com/park285/Cheese-chessroom-bot/internal/pvp"
	"github.com/park285/Cheese-chessroom-bot/internal/pvpchess"
	"github.com/park285/Cheese-chessroom-bot/internal/render"
	"github.com/park285/Cheese-chessroom-bot/pkg/chessdto"
	"go.uber.org/zap"
)

// Sender delivers a reply to a room.
type Sender interface {
	Send(ctx context.Context, room string, reply *chessdto.Reply) error
}

type Deps struct {
	Session   *pvp.Session
	Renderer  render.BoardRenderer
	Formatter *chesspresenter.Formatter
	Sender    Sender
	// Archive is optional; without it history is unavailable.
	Archive      pvpchess.Archive
	HistoryLimit int
}

// Dispatcher routes commands to the session and sends one reply per
// command that changed or was refused by the session.
type Dispatcher struct {
	session      *pvp.Session
	renderer     render.BoardRenderer
	formatter    *chesspresenter.Formatter
	sender       Sender
	archive      pvpchess.Archive
	historyLimit int

	greetM      sync.Mutex
	lastGreeted string
}

func NewDispatcher(d Deps) *Dispatcher {
	if d.Session == nil {
		d.Session = pvp.NewSession()
	}
	if d.Formatter == nil {
		d.Formatter = chesspresenter.NewFormatter(nil, nil)
	}
	if d.HistoryLimit <= 0 {
		d.HistoryLimit = 10
	}
	return &Dispatcher{
		session:      d.Session,
		renderer:     d.Renderer,
		formatter:    d.Formatter,
		sender:       d.Sender,
		archive:      d.Archive,
		historyLimit: d.HistoryLimit,
	}
}

func (d *Dispatcher) Session() *pvp.Session { return d.session }

// Handle runs one command to completion. Ignored commands send nothing.
func (d *Dispatcher) Handle(ctx context.Context, cmd Command) error {
	switch cmd.Name {
	case CmdChallenge:
		res := d.session.Challenge(cmd.Invoker, cmd.Target())
		if !res.Applied() {
			return nil
		}
		return d.send(ctx, cmd.Room, d.formatter.Challenge(Snapshot(res.State)))
	case CmdAccept:
		res := d.session.Accept(cmd.Invoker, cmd.Target())
		if !res.Applied() {
			return nil
		}
		return d.send(ctx, cmd.Room, d.formatter.Accept(Snapshot(res.State)))
	case CmdStart:
		return d.handleBoardResult(ctx, cmd, d.session.Start(cmd.Invoker))
	case CmdPlay:
		return d.handleBoardResult(ctx, cmd, d.session.Play(cmd.Invoker, cmd.Arg(0)))
	case CmdResign:
		return d.handleBoardResult(ctx, cmd, d.session.Resign(cmd.Invoker))
	case CmdDraw:
		res := d.session.Draw(cmd.Invoker)
		if res.Applied() && res.DrawOffered {
			return d.send(ctx, cmd.Room, d.formatter.DrawOffered(Snapshot(res.State), cmd.Invoker))
		}
		return d.handleBoardResult(ctx, cmd, res)
	case CmdReset:
		d.session.Reset(cmd.Invoker)
		return d.send(ctx, cmd.Room, d.formatter.Reset())
	case CmdHello:
		return d.send(ctx, cmd.Room, d.hello(cmd))
	case CmdHistory:
		return d.send(ctx, cmd.Room, d.history(ctx, cmd))
	case CmdHelp:
		return d.send(ctx, cmd.Room, d.formatter.Help())
	default:
		obslog.L().Debug("command_unknown", zap.String("room", cmd.Room), zap.String("name", cmd.Name))
		return nil
	}
}

// handleBoardResult renders and sends the board for an applied transition,
// archives a fresh conclusion, and maps rejections to notices.
func (d *Dispatcher) handleBoardResult(ctx context.Context, cmd Command, res pvp.Result) error {
	switch res.Status {
	case pvp.StatusIgnored:
		return nil
	case pvp.StatusRejected:
		reply := d.rejection(cmd, res)
		if reply == nil {
			return fmt.Errorf("%s rejected: %w", cmd.Name, res.Err)
		}
		return d.send(ctx, cmd.Room, reply)
	}

	if res.Conclusion != nil {
		d.archiveResult(ctx, cmd.Room, res)
	}

	state := Snapshot(res.State)
	playing, ok := res.State.(pvp.Playing)
	if !ok || playing.Game == nil {
		return nil
	}
	if d.renderer != nil {
		img, err := d.renderer.Render(ctx, playing.Game.Board, render.Options{Caption: caption(state)})
		if err != nil {
			return fmt.Errorf("render board: %w", err)
		}
		state.BoardImage = img.PNG
	}
	return d.send(ctx, cmd.Room, d.formatter.Board(state))
}

func (d *Dispatcher) rejection(cmd Command, res pvp.Result) *chessdto.Reply {
	state := Snapshot(res.State)
	switch {
	case errors.Is(res.Err, chess.ErrIllegalMove):
		return d.formatter.IllegalMove()
	case errors.Is(res.Err, chess.ErrMalformedMove):
		return d.formatter.MalformedMove(cmd.Arg(0))
	case errors.Is(res.Err, chess.ErrGameOver):
		return d.formatter.GameOver()
	case errors.Is(res.Err, pvp.ErrNotYourTurn):
		return d.formatter.NotYourTurn(state)
	case errors.Is(res.Err, pvp.ErrNotPlayer):
		return d.formatter.NotPlayer(state)
	case errors.Is(res.Err, pvp.ErrDrawAlreadyOffered):
		return d.formatter.DrawAlreadyOffered(cmd.Invoker)
	}
	return nil
}

func (d *Dispatcher) archiveResult(ctx context.Context, room string, res pvp.Result) {
	if d.archive == nil {
		return
	}
	playing, ok := res.State.(pvp.Playing)
	if !ok {
		return
	}
	rec := pvpchess.NewRecord(room, playing, *res.Conclusion)
	if err := d.archive.SaveResult(ctx, rec); err != nil {
		obslog.L().Error("archive_save_failed", zap.String("game_id", rec.ID), zap.Error(err))
		return
	}
	obslog.L().Info("archive_saved", zap.String("game_id", rec.ID), zap.String("result", rec.Result))
}

func (d *Dispatcher) hello(cmd Command) *chessdto.Reply {
	name := cmd.Target()
	if name == "" {
		name = cmd.Invoker
	}
	d.greetM.Lock()
	familiar := d.lastGreeted == name
	d.lastGreeted = name
	d.greetM.Unlock()
	return d.formatter.Hello(name, familiar)
}

func (d *Dispatcher) history(ctx context.Context, cmd Command) *chessdto.Reply {
	if d.archive == nil {
		return d.formatter.HistoryUnavailable()
	}
	limit := d.historyLimit
	if n, err := strconv.Atoi(cmd.Arg(0)); err == nil && n > 0 && n < limit {
		limit = n
	}
	games, err := d.archive.Recent(ctx, limit)
	if err != nil {
		obslog.L().Warn("archive_recent_failed", zap.Error(err))
		return d.formatter.HistoryUnavailable()
	}
	return d.formatter.History(games)
}

func (d *Dispatcher) send(ctx context.Context, room string, reply *chessdto.Reply) error {
	if reply.Empty() || d.sender == nil {
		return nil
	}
	if err := d.sender.Send(ctx, room, reply); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func caption(s *chessdto.SessionState) string {
	if s.Concluded() {
		if s.OutcomeMeta == "" {
			return s.Outcome
		}
		return s.Outcome + " " + s.OutcomeMeta
	}
	if s.Turn == string(chess.Black) {
		return chess.Black.Title() + " to move"
	}
	return chess.White.Title() + " to move"
}
