package bot

import (
	"context"
	"time"

	"github.com/park285/Cheese-chessroom-bot/internal/irisfast"
	"github.com/park285/Cheese-chessroom-bot/internal/obslog"
	"go.uber.org/zap"
)

// Handler runs one command.
type Handler interface {
	Handle(ctx context.Context, cmd Command) error
}

type Options struct {
	Prefix string
	// RoomAllowed filters rooms; nil allows every room.
	RoomAllowed func(room string) bool
	QueueSize   int
	// CommandTimeout bounds one handler run. Zero means no limit.
	CommandTimeout time.Duration
}

// Bot turns incoming chat messages into commands and runs them on a single
// worker, so session transitions and scratch-file renders never overlap.
type Bot struct {
	handler Handler
	opts    Options
	queue   chan Command
}

func New(handler Handler, opts Options) *Bot {
	if opts.Prefix == "" {
		opts.Prefix = "$"
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	return &Bot{
		handler: handler,
		opts:    opts,
		queue:   make(chan Command, opts.QueueSize),
	}
}

// OnMessage is the websocket callback. It never blocks: when the queue is
// full the command is dropped.
func (b *Bot) OnMessage(msg *irisfast.Message) {
	if msg == nil || msg.Msg == "" {
		return
	}
	if b.opts.RoomAllowed != nil && !b.opts.RoomAllowed(msg.Room) {
		obslog.L().Debug("room_ignored", zap.String("room", msg.Room))
		return
	}
	name, args, ok := ParseCommand(b.opts.Prefix, msg.Msg)
	if !ok {
		return
	}
	invoker := msg.SenderName()
	if invoker == "" {
		obslog.L().Warn("command_without_sender", zap.String("room", msg.Room), zap.String("name", name))
		return
	}
	b.Enqueue(Command{Room: msg.Room, Invoker: invoker, Name: name, Args: args})
}

// Enqueue reports whether cmd was queued.
func (b *Bot) Enqueue(cmd Command) bool {
	select {
	case b.queue <- cmd:
		return true
	default:
		obslog.L().Warn("command_dropped",
			zap.String("room", cmd.Room),
			zap.String("name", cmd.Name),
			zap.Int("queue_size", cap(b.queue)),
		)
		return false
	}
}

// Run drains the queue until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-b.queue:
			b.dispatch(ctx, cmd)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, cmd Command) {
	if b.opts.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.CommandTimeout)
		defer cancel()
	}
	start := time.Now()
	if err := b.handler.Handle(ctx, cmd); err != nil {
		obslog.L().Error("command_failed",
			zap.String("room", cmd.Room),
			zap.String("invoker", cmd.Invoker),
			zap.String("name", cmd.Name),
			zap.Error(err),
		)
		return
	}
	obslog.L().Debug("command_done",
		zap.String("room", cmd.Room),
		zap.String("name", cmd.Name),
		zap.Duration("elapsed", time.Since(start)),
	)
}
