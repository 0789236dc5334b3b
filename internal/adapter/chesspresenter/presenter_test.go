package chesspresenter

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/park285/Cheese-chessroom-bot/pkg/chessdto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPrefix string

func (p fixedPrefix) Prefix() string { return string(p) }

func playingState() *chessdto.SessionState {
	return &chessdto.SessionState{
		Phase:      "playing",
		Challenger: "Alice",
		Opponent:   "Bob",
		Turn:       "white",
		BoardImage: []byte{0x89, 'P', 'N', 'G'},
	}
}

func TestBoardReplyShape(t *testing.T) {
	f := NewFormatter(fixedPrefix("$"), nil)
	reply := f.Board(playingState())
	require.NotNil(t, reply.Embed)

	assert.Equal(t, "Chess", reply.Embed.Title)
	assert.Equal(t, "A game between Alice and Bob", reply.Embed.Description)
	assert.Equal(t, 0x077ff7, reply.Embed.Color)
	assert.Equal(t, "attachment://chess.png", reply.Embed.ImageURL)
	assert.Equal(t, []chessdto.Field{
		{Name: "How to Play:", Value: "$play uci"},
		{Name: "Alice", Value: "White"},
		{Name: "Bob", Value: "Black"},
	}, reply.Embed.Fields)

	require.NotNil(t, reply.Image)
	assert.Equal(t, "chess.png", reply.Image.Filename)

	require.Len(t, reply.Buttons, 2)
	assert.Equal(t, "Offer a Draw", reply.Buttons[0].Label)
	assert.Equal(t, "🤝", reply.Buttons[0].Emoji)
	assert.Equal(t, CommandDraw, reply.Buttons[0].Command)
	assert.Equal(t, "Resign", reply.Buttons[1].Label)
	assert.Equal(t, CommandResign, reply.Buttons[1].Command)
	assert.Equal(t, "Alice (White) to move.", reply.Text)
}

func TestBoardReplyAfterConclusionHasNoButtons(t *testing.T) {
	f := NewFormatter(fixedPrefix("!"), nil)
	state := playingState()
	state.Outcome, state.OutcomeMeta, state.Winner = "0-1", "checkmate", "black"

	reply := f.Board(state)
	assert.Empty(t, reply.Buttons)
	assert.Equal(t, "Bob wins by checkmate (0-1).", reply.Text)
	assert.Equal(t, "!play uci", reply.Embed.Fields[0].Value)
}

func TestOutcomeTexts(t *testing.T) {
	f := NewFormatter(fixedPrefix("$"), nil)
	s := playingState()

	s.Outcome, s.OutcomeMeta, s.Winner = "1-0", "resignation", "white"
	assert.Equal(t, "Bob resigned. Alice wins (1-0).", f.Outcome(s))

	s.Outcome, s.OutcomeMeta, s.Winner = "1/2-1/2", "stalemate", ""
	assert.Equal(t, "Draw by stalemate (1/2-1/2).", f.Outcome(s))
}

func TestStatusShowsLastMoveAndCheck(t *testing.T) {
	f := NewFormatter(fixedPrefix("$"), nil)
	s := playingState()
	s.LastMoveSAN, s.InCheck, s.Turn = "Bb5+", true, "black"
	assert.Equal(t, "Last move: Bb5+ Check! Bob (Black) to move.", f.Status(s))
}

func TestTextReplies(t *testing.T) {
	f := NewFormatter(fixedPrefix("$"), nil)
	s := playingState()

	assert.Equal(t, "Alice has started a challenge. To accept type `$accept`", f.Challenge(s).Text)
	assert.Equal(t, "Bob has accepted the challenge. To start type `$start`", f.Accept(s).Text)
	assert.Equal(t, "Not a legal move", f.IllegalMove().Text)
	assert.Contains(t, f.MalformedMove("hello").Text, "`hello` is not a move")
	assert.Equal(t, "Hello Alice~", f.Hello("Alice", false).Text)
	assert.Equal(t, "Hello Alice... This feels familiar.", f.Hello("Alice", true).Text)
	assert.Equal(t, "Alice offers a draw. Bob can type `$draw` to agree.", f.DrawOffered(s, "Alice").Text)

	reset := f.Reset()
	assert.Equal(t, "Game Stopped", reset.Text)
	assert.Equal(t, "😢", reset.Reaction)
	assert.Equal(t, "Game Stopped 😢", f.Flatten(reset))
}

func TestHistory(t *testing.T) {
	f := NewFormatter(fixedPrefix("$"), nil)
	assert.Equal(t, "No finished games yet.", f.History(nil).Text)

	games := []*chessdto.ChessGame{{
		White: "Alice", Black: "Bob", Result: "0-1", ResultMethod: "checkmate",
		MovesSAN: []string{"f3", "e5", "g4", "Qh4#"},
		EndedAt:  time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
	}}
	text := f.History(games).Text
	assert.True(t, strings.HasPrefix(text, "♜ Recent games"))
	assert.Contains(t, text, "• 2024-03-01 12:30 Alice vs Bob 0-1 (checkmate, 4 moves)")
}

func TestFlattenBoardReply(t *testing.T) {
	f := NewFormatter(fixedPrefix("$"), nil)
	text := f.Flatten(f.Board(playingState()))
	assert.Contains(t, text, "♟ Chess\nA game between Alice and Bob")
	assert.Contains(t, text, "• Alice White")
	assert.Contains(t, text, "🤝 Offer a Draw: `$draw`")
	assert.Contains(t, text, "☠️ Resign: `$resign`")
}

func TestPresenterSendsTextThenImage(t *testing.T) {
	f := NewFormatter(fixedPrefix("$"), nil)
	var calls []string
	p := NewPresenter(f,
		func(_ context.Context, room, message string) error {
			calls = append(calls, "text:"+room)
			return nil
		},
		func(_ context.Context, room, image string) error {
			raw, err := base64.StdEncoding.DecodeString(image)
			require.NoError(t, err)
			assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw)
			calls = append(calls, "image:"+room)
			return nil
		},
	)

	require.NoError(t, p.Send(context.Background(), "room-1", f.Board(playingState())))
	assert.Equal(t, []string{"text:room-1", "image:room-1"}, calls)
}

func TestPresenterStopsOnTextError(t *testing.T) {
	f := NewFormatter(fixedPrefix("$"), nil)
	boom := errors.New("boom")
	imageSent := false
	p := NewPresenter(f,
		func(context.Context, string, string) error { return boom },
		func(context.Context, string, string) error { imageSent = true; return nil },
	)
	err := p.Send(context.Background(), "room", f.Board(playingState()))
	assert.ErrorIs(t, err, boom)
	assert.False(t, imageSent)
	assert.NoError(t, p.Send(context.Background(), "room", nil))
}
