package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/park285/Cheese-chessroom-bot/internal/adapter/chesspresenter"
	"github.com/park285/Cheese-chessroom-bot/internal/chess"
	"github.com/park285/Cheese-chessroom-bot/internal/pvp"
	"github.com/park285/Cheese-chessroom-bot/internal/pvpchess"
	"github.com/park285/Cheese-chessroom-bot/internal/render"
	"github.com/park285/Cheese-chessroom-bot/pkg/chessdto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type fakeRenderer struct {
	mu       sync.Mutex
	calls    int
	captions []string
	fens     []string
	err      error
}

func (r *fakeRenderer) Render(_ context.Context, board *chess.Board, opts render.Options) (*render.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.calls++
	r.captions = append(r.captions, opts.Caption)
	r.fens = append(r.fens, board.FEN())
	return &render.Image{PNG: []byte("png"), SVGPath: "chess.svg", PNGPath: "chess.png"}, nil
}

type sentReply struct {
	room  string
	reply *chessdto.Reply
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentReply
	err  error
}

func (s *fakeSender) Send(_ context.Context, room string, reply *chessdto.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentReply{room: room, reply: reply})
	return nil
}

func (s *fakeSender) last(t *testing.T) *chessdto.Reply {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sent)
	return s.sent[len(s.sent)-1].reply
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fixture struct {
	d        *Dispatcher
	renderer *fakeRenderer
	sender   *fakeSender
	archive  *pvpchess.MemoryStore
}

func newFixture(t *testing.T, opts ...pvp.Option) *fixture {
	t.Helper()
	f := &fixture{renderer: &fakeRenderer{}, sender: &fakeSender{}, archive: pvpchess.NewMemoryStore(20)}
	f.d = NewDispatcher(Deps{
		Session:   pvp.NewSession(opts...),
		Renderer:  f.renderer,
		Formatter: chesspresenter.NewFormatter(nil, nil),
		Sender:    f.sender,
		Archive:   f.archive,
	})
	return f
}

func (f *fixture) run(t *testing.T, invoker, name string, args ...string) {
	t.Helper()
	require.NoError(t, f.d.Handle(context.Background(), Command{Room: "room-1", Invoker: invoker, Name: name, Args: args}))
}

func (f *fixture) board(t *testing.T) *chess.Board {
	t.Helper()
	playing, ok := f.d.Session().State().(pvp.Playing)
	require.True(t, ok, "expected Playing")
	return playing.Game.Board
}

func TestChallengeAcceptStartIllegalThenLegalMove(t *testing.T) {
	f := newFixture(t)

	f.run(t, "Alice", CmdChallenge)
	assert.Equal(t, "Alice has started a challenge. To accept type `$accept`", f.sender.last(t).Text)

	f.run(t, "Bob", CmdAccept)
	assert.Equal(t, "Bob has accepted the challenge. To start type `$start`", f.sender.last(t).Text)
	assert.Equal(t, 0, f.renderer.calls)

	f.run(t, "Alice", CmdStart)
	require.Equal(t, 1, f.renderer.calls)
	assert.Equal(t, "White to move", f.renderer.captions[0])
	started := f.sender.last(t)
	require.NotNil(t, started.Embed)
	assert.Equal(t, "Chess", started.Embed.Title)
	assert.Equal(t, "A game between Alice and Bob", started.Embed.Description)
	assert.Equal(t, chesspresenter.EmbedColor, started.Embed.Color)
	require.Len(t, started.Embed.Fields, 3)
	assert.Equal(t, chessdto.Field{Name: "How to Play:", Value: "$play uci"}, started.Embed.Fields[0])
	assert.Equal(t, chessdto.Field{Name: "Alice", Value: "White"}, started.Embed.Fields[1])
	assert.Equal(t, chessdto.Field{Name: "Bob", Value: "Black"}, started.Embed.Fields[2])
	require.NotNil(t, started.Image)
	assert.Equal(t, "chess.png", started.Image.Filename)
	require.Len(t, started.Buttons, 2)
	assert.Equal(t, CmdDraw, started.Buttons[0].Command)
	assert.Equal(t, CmdResign, started.Buttons[1].Command)
	assert.Equal(t, startFEN, f.board(t).FEN())

	f.run(t, "Alice", CmdPlay, "e2c2")
	assert.Equal(t, "Not a legal move", f.sender.last(t).Text)
	assert.Equal(t, startFEN, f.board(t).FEN())
	assert.Equal(t, 1, f.renderer.calls)

	f.run(t, "Alice", CmdPlay, "e2e4")
	assert.Equal(t, 2, f.renderer.calls)
	assert.NotEqual(t, startFEN, f.board(t).FEN())
	assert.Equal(t, []string{"e4"}, f.board(t).MovesSAN())
	assert.Contains(t, f.sender.last(t).Text, "Last move: e4")
	assert.Equal(t, "Black to move", f.renderer.captions[1])
}

func TestIgnoredCommandsSendNothing(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{CmdAccept, CmdStart, CmdPlay, CmdResign, CmdDraw, "bogus"} {
		f.run(t, "Alice", name, "e2e4")
	}
	assert.Equal(t, 0, f.sender.count())
	assert.Equal(t, 0, f.renderer.calls)
	assert.Equal(t, pvp.Idle{}, f.d.Session().State())

	f.run(t, "Alice", CmdChallenge)
	f.run(t, "Bob", CmdChallenge)
	assert.Equal(t, 1, f.sender.count())
}

func TestChallengeNamedTarget(t *testing.T) {
	f := newFixture(t)
	f.run(t, "Alice", CmdChallenge, "@Carol")
	f.run(t, "Alice", CmdAccept, "Dave", "Smith")

	ready, ok := f.d.Session().State().(pvp.Ready)
	require.True(t, ok)
	assert.Equal(t, "Carol", ready.Challenger)
	assert.Equal(t, "Dave Smith", ready.Opponent)
}

func TestResetFromPlaying(t *testing.T) {
	f := newFixture(t)
	f.run(t, "Alice", CmdChallenge)
	f.run(t, "Bob", CmdAccept)
	f.run(t, "Alice", CmdStart)
	f.run(t, "Alice", CmdPlay, "e2e4")

	f.run(t, "Bob", CmdReset)
	reply := f.sender.last(t)
	assert.Equal(t, "Game Stopped", reply.Text)
	assert.Equal(t, "😢", reply.Reaction)
	assert.Equal(t, pvp.NewSession().State(), f.d.Session().State())

	// reset from Idle still acknowledges
	f.run(t, "Bob", CmdReset)
	assert.Equal(t, "Game Stopped", f.sender.last(t).Text)
}

func TestMalformedMoveIsDistinct(t *testing.T) {
	f := newFixture(t)
	f.run(t, "Alice", CmdChallenge)
	f.run(t, "Bob", CmdAccept)
	f.run(t, "Alice", CmdStart)

	f.run(t, "Alice", CmdPlay, "hello")
	assert.Equal(t, "`hello` is not a move. Use UCI such as `$play e2e4`.", f.sender.last(t).Text)
	assert.Equal(t, startFEN, f.board(t).FEN())
}

func TestCheckmateArchivesOnceAndRejectsLaterMoves(t *testing.T) {
	f := newFixture(t, pvp.WithIDGenerator(func() string { return "game-1" }))
	f.run(t, "Alice", CmdChallenge)
	f.run(t, "Bob", CmdAccept)
	f.run(t, "Alice", CmdStart)
	for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		f.run(t, "x", CmdPlay, mv)
	}

	final := f.sender.last(t)
	assert.Empty(t, final.Buttons)
	assert.Equal(t, "Bob wins by checkmate (0-1).", final.Text)
	assert.Equal(t, "0-1 checkmate", f.renderer.captions[len(f.renderer.captions)-1])

	games, err := f.archive.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "game-1", games[0].ID)
	assert.Equal(t, "room-1", games[0].Room)
	assert.Equal(t, "0-1", games[0].Result)

	renders := f.renderer.calls
	f.run(t, "Alice", CmdPlay, "e2e4")
	assert.Equal(t, "The game is over. Type `$reset` to clear the board.", f.sender.last(t).Text)
	f.run(t, "Alice", CmdResign)
	assert.Equal(t, "The game is over. Type `$reset` to clear the board.", f.sender.last(t).Text)
	assert.Equal(t, renders, f.renderer.calls)

	games, _ = f.archive.Recent(context.Background(), 10)
	assert.Len(t, games, 1)

	f.run(t, "Alice", CmdHistory)
	assert.Contains(t, f.sender.last(t).Text, "Alice vs Bob 0-1 (checkmate, 4 moves)")
}

func TestDrawOfferThenAgreement(t *testing.T) {
	f := newFixture(t)
	f.run(t, "Alice", CmdChallenge)
	f.run(t, "Bob", CmdAccept)
	f.run(t, "Alice", CmdStart)

	f.run(t, "Alice", CmdDraw)
	assert.Equal(t, "Alice offers a draw. Bob can type `$draw` to agree.", f.sender.last(t).Text)
	f.run(t, "Alice", CmdDraw)
	assert.Equal(t, "Alice already offered a draw.", f.sender.last(t).Text)

	f.run(t, "Carol", CmdDraw)
	assert.Equal(t, "Only Alice and Bob can do that.", f.sender.last(t).Text)

	f.run(t, "Bob", CmdDraw)
	assert.Equal(t, "Draw by agreement (1/2-1/2).", f.sender.last(t).Text)
	games, _ := f.archive.Recent(context.Background(), 10)
	require.Len(t, games, 1)
	assert.Equal(t, "1/2-1/2", games[0].Result)
}

func TestResignConcludesForTheOtherSide(t *testing.T) {
	f := newFixture(t)
	f.run(t, "Alice", CmdChallenge)
	f.run(t, "Bob", CmdAccept)
	f.run(t, "Alice", CmdStart)

	f.run(t, "Alice", CmdResign)
	assert.Equal(t, "Alice resigned. Bob wins (0-1).", f.sender.last(t).Text)
	assert.Empty(t, f.sender.last(t).Buttons)
}

func TestStrictTurnsNotice(t *testing.T) {
	f := newFixture(t, pvp.WithStrictTurns(true))
	f.run(t, "Alice", CmdChallenge)
	f.run(t, "Bob", CmdAccept)
	f.run(t, "Alice", CmdStart)

	f.run(t, "Bob", CmdPlay, "e7e5")
	assert.Equal(t, "It is Alice's turn.", f.sender.last(t).Text)
	assert.Equal(t, startFEN, f.board(t).FEN())
}

func TestHelloRemembersLastGreeted(t *testing.T) {
	f := newFixture(t)
	f.run(t, "Alice", CmdHello)
	assert.Equal(t, "Hello Alice~", f.sender.last(t).Text)
	f.run(t, "Bob", CmdHello, "@Alice")
	assert.Equal(t, "Hello Alice... This feels familiar.", f.sender.last(t).Text)
	f.run(t, "Bob", CmdHello)
	assert.Equal(t, "Hello Bob~", f.sender.last(t).Text)
}

func TestHistoryWithoutArchive(t *testing.T) {
	s := &fakeSender{}
	d := NewDispatcher(Deps{Sender: s})
	require.NoError(t, d.Handle(context.Background(), Command{Room: "r", Invoker: "Alice", Name: CmdHistory}))
	assert.Equal(t, "Game history is unavailable right now.", s.last(t).Text)

	require.NoError(t, d.Handle(context.Background(), Command{Room: "r", Invoker: "Alice", Name: CmdHelp}))
	assert.Contains(t, s.last(t).Text, "$challenge [user]")
}

func TestRenderAndSendFailuresSurface(t *testing.T) {
	f := newFixture(t)
	f.run(t, "Alice", CmdChallenge)
	f.run(t, "Bob", CmdAccept)

	boom := errors.New("disk full")
	f.renderer.err = boom
	err := f.d.Handle(context.Background(), Command{Room: "room-1", Invoker: "Alice", Name: CmdStart})
	assert.ErrorIs(t, err, boom)

	f.renderer.err = nil
	f.sender.err = errors.New("iris down")
	err = f.d.Handle(context.Background(), Command{Room: "room-1", Invoker: "Alice", Name: CmdPlay, Args: []string{"e2e4"}})
	assert.ErrorContains(t, err, "iris down")
}

func TestSnapshot(t *testing.T) {
	assert.Equal(t, "idle", Snapshot(nil).Phase)
	assert.Equal(t, &chessdto.SessionState{Phase: "challenged", Challenger: "Alice"}, Snapshot(pvp.Challenged{Challenger: "Alice"}))

	b := chess.NewBoard()
	for _, mv := range []string{"e2e4", "f7f6", "d1h5"} {
		_, err := b.Play(mv)
		require.NoError(t, err)
	}
	snap := Snapshot(pvp.Playing{Challenger: "Alice", Opponent: "Bob", Game: &pvp.Game{ID: "g", Board: b, StartedAt: time.Now()}})
	assert.Equal(t, "playing", snap.Phase)
	assert.Equal(t, "Qh5+", snap.LastMoveSAN)
	assert.True(t, snap.InCheck)
	assert.Equal(t, "black", snap.Turn)
	assert.Equal(t, 3, snap.MoveCount())
	assert.False(t, snap.Concluded())
}
