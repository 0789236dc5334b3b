package chesspresenter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/park285/Cheese-chessroom-bot/internal/msgcat"
	"github.com/park285/Cheese-chessroom-bot/internal/util"
	"github.com/park285/Cheese-chessroom-bot/pkg/chessdto"
)

const (
	EmbedColor     = 0x077ff7
	BoardImageName = "chess.png"

	CommandDraw   = "draw"
	CommandResign = "resign"

	emojiDraw   = "🤝"
	emojiResign = "☠️"
)

// PrefixProvider exposes the command prefix shown in hints.
type PrefixProvider interface {
	Prefix() string
}

// Formatter turns session snapshots into replies.
type Formatter struct {
	prefixProvider PrefixProvider
	catalog        *msgcat.Catalog
}

func NewFormatter(provider PrefixProvider, catalog *msgcat.Catalog) *Formatter {
	if catalog == nil {
		catalog = msgcat.MustDefault()
	}
	return &Formatter{prefixProvider: provider, catalog: catalog}
}

func (f *Formatter) Prefix() string {
	if f == nil || f.prefixProvider == nil {
		return "$"
	}
	if p := strings.TrimSpace(f.prefixProvider.Prefix()); p != "" {
		return p
	}
	return "$"
}

func (f *Formatter) text(key string, data map[string]any, fallback string) string {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Prefix"]; !ok {
		data["Prefix"] = f.Prefix()
	}
	return f.catalog.Text(key, data, fallback)
}

func textReply(s string) *chessdto.Reply { return &chessdto.Reply{Text: s} }

func (f *Formatter) Hello(name string, familiar bool) *chessdto.Reply {
	if familiar {
		return textReply(f.text("greet.familiar", map[string]any{"Name": name}, "Hello "+name+"... This feels familiar."))
	}
	return textReply(f.text("greet.hello", map[string]any{"Name": name}, "Hello "+name+"~"))
}

func (f *Formatter) Challenge(state *chessdto.SessionState) *chessdto.Reply {
	return textReply(f.text("session.challenge", map[string]any{"Challenger": state.Challenger},
		state.Challenger+" has started a challenge. To accept type `"+f.Prefix()+"accept`"))
}

func (f *Formatter) Accept(state *chessdto.SessionState) *chessdto.Reply {
	return textReply(f.text("session.accept", map[string]any{"Challenger": state.Challenger, "Opponent": state.Opponent},
		state.Opponent+" has accepted the challenge. To start type `"+f.Prefix()+"start`"))
}

func (f *Formatter) Reset() *chessdto.Reply {
	return &chessdto.Reply{
		Text:     f.text("session.reset", nil, "Game Stopped"),
		Reaction: f.text("session.reset_reaction", nil, "😢"),
	}
}

// Board builds the image + embed + buttons reply for the current position.
func (f *Formatter) Board(state *chessdto.SessionState) *chessdto.Reply {
	if state == nil {
		return nil
	}
	names := map[string]any{"Challenger": state.Challenger, "Opponent": state.Opponent}
	white := f.text("board.white", nil, "White")
	black := f.text("board.black", nil, "Black")

	embed := &chessdto.Embed{
		Title:       f.text("board.title", nil, "Chess"),
		Description: f.text("board.description", names, "A game between "+state.Challenger+" and "+state.Opponent),
		Color:       EmbedColor,
		ImageURL:    "attachment://" + BoardImageName,
		Fields: []chessdto.Field{
			{Name: f.text("board.how_to_play", nil, "How to Play:"), Value: f.text("board.how_to_play_value", nil, f.Prefix()+"play uci")},
			{Name: state.Challenger, Value: white},
			{Name: state.Opponent, Value: black},
		},
	}

	reply := &chessdto.Reply{Embed: embed, Text: f.Status(state)}
	if len(state.BoardImage) > 0 {
		reply.Image = &chessdto.Attachment{Filename: BoardImageName, Data: state.BoardImage}
	}
	if !state.Concluded() {
		reply.Buttons = []chessdto.Button{
			{Label: f.text("board.offer_draw", nil, "Offer a Draw"), Emoji: emojiDraw, Style: chessdto.ButtonSuccess, Command: CommandDraw},
			{Label: f.text("board.resign", nil, "Resign"), Emoji: emojiResign, Style: chessdto.ButtonSecondary, Command: CommandResign},
		}
	}
	return reply
}

// Status is the one-line summary under the board: the result once
// concluded, otherwise the last move and the side to move.
func (f *Formatter) Status(state *chessdto.SessionState) string {
	if state == nil {
		return ""
	}
	if state.Concluded() {
		return f.Outcome(state)
	}
	var parts []string
	if state.LastMoveSAN != "" {
		parts = append(parts, f.text("board.last_move", map[string]any{"Move": state.LastMoveSAN}, "Last move: "+state.LastMoveSAN))
	}
	if state.InCheck {
		parts = append(parts, f.text("board.check", nil, "Check!"))
	}
	player, color := state.Challenger, "White"
	if state.Turn == "black" {
		player, color = state.Opponent, "Black"
	}
	parts = append(parts, f.text("board.to_move", map[string]any{"Player": player, "Color": color}, player+" ("+color+") to move."))
	return strings.Join(parts, " ")
}

// Outcome describes a concluded game.
func (f *Formatter) Outcome(state *chessdto.SessionState) string {
	method := state.OutcomeMeta
	if method == "" {
		method = "agreement"
	}
	data := map[string]any{"Result": state.Outcome, "Method": method}
	if state.Winner == "" {
		return f.text("outcome.draw", data, "Draw by "+method+" ("+state.Outcome+").")
	}
	winner, loser := state.Challenger, state.Opponent
	if state.Winner == "black" {
		winner, loser = state.Opponent, state.Challenger
	}
	data["Winner"], data["Loser"] = winner, loser
	if method == "resignation" {
		return f.text("outcome.resignation", data, loser+" resigned. "+winner+" wins ("+state.Outcome+").")
	}
	return f.text("outcome.win", data, winner+" wins by "+method+" ("+state.Outcome+").")
}

func (f *Formatter) IllegalMove() *chessdto.Reply {
	return textReply(f.text("play.illegal", nil, "Not a legal move"))
}

func (f *Formatter) MalformedMove(input string) *chessdto.Reply {
	return textReply(f.text("play.malformed", map[string]any{"Input": input},
		"`"+input+"` is not a move. Use UCI such as `"+f.Prefix()+"play e2e4`."))
}

func (f *Formatter) GameOver() *chessdto.Reply {
	return textReply(f.text("play.game_over", nil, "The game is over. Type `"+f.Prefix()+"reset` to clear the board."))
}

func (f *Formatter) NotYourTurn(state *chessdto.SessionState) *chessdto.Reply {
	player := state.Challenger
	if state.Turn == "black" {
		player = state.Opponent
	}
	return textReply(f.text("play.not_your_turn", map[string]any{"Player": player}, "It is "+player+"'s turn."))
}

func (f *Formatter) NotPlayer(state *chessdto.SessionState) *chessdto.Reply {
	return textReply(f.text("play.not_player", map[string]any{"Challenger": state.Challenger, "Opponent": state.Opponent},
		"Only "+state.Challenger+" and "+state.Opponent+" can do that."))
}

func (f *Formatter) DrawOffered(state *chessdto.SessionState, player string) *chessdto.Reply {
	other := state.Opponent
	if player == state.Opponent {
		other = state.Challenger
	}
	return textReply(f.text("draw.offered", map[string]any{"Player": player, "Other": other},
		player+" offers a draw. "+other+" can type `"+f.Prefix()+"draw` to agree."))
}

func (f *Formatter) DrawAlreadyOffered(player string) *chessdto.Reply {
	return textReply(f.text("draw.already_offered", map[string]any{"Player": player}, player+" already offered a draw."))
}

func (f *Formatter) Help() *chessdto.Reply {
	header := f.text("help.header", nil, "♞ Chess commands")
	body := f.text("help.body", nil, "")
	return textReply(util.ApplySeeMoreWithHeader(header+"\n"+body, header, header, ""))
}

func (f *Formatter) History(games []*chessdto.ChessGame) *chessdto.Reply {
	header := f.text("history.header", nil, "♜ Recent games")
	if len(games) == 0 {
		return textReply(f.text("history.empty", nil, "No finished games yet."))
	}
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteByte('\n')
	for _, game := range games {
		if game == nil {
			continue
		}
		moves := len(game.MovesSAN)
		if moves == 0 {
			moves = len(game.MovesUCI)
		}
		line := f.text("history.line", map[string]any{
			"Date":   formatShortTime(game.EndedAt),
			"White":  game.White,
			"Black":  game.Black,
			"Result": game.Result,
			"Method": game.ResultMethod,
			"Moves":  strconv.Itoa(moves),
		}, fmt.Sprintf("• %s %s vs %s %s", formatShortTime(game.EndedAt), game.White, game.Black, game.Result))
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	content := strings.TrimRight(sb.String(), "\n")
	return textReply(util.ApplySeeMoreWithHeader(content, header, header, ""))
}

func (f *Formatter) HistoryUnavailable() *chessdto.Reply {
	return textReply(f.text("history.unavailable", nil, "Game history is unavailable right now."))
}

// Flatten renders a reply as plain text for transports without embeds or
// components. Buttons become command hints.
func (f *Formatter) Flatten(reply *chessdto.Reply) string {
	if reply == nil {
		return ""
	}
	var lines []string
	if e := reply.Embed; e != nil {
		if e.Title != "" {
			lines = append(lines, "♟ "+e.Title)
		}
		if e.Description != "" {
			lines = append(lines, e.Description)
		}
		for _, field := range e.Fields {
			lines = append(lines, "• "+field.Name+" "+field.Value)
		}
	}
	if reply.Text != "" {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, reply.Text)
	}
	for _, b := range reply.Buttons {
		label := strings.TrimSpace(b.Emoji + " " + b.Label)
		lines = append(lines, f.text("board.buttons_hint", map[string]any{"Label": label, "Command": b.Command},
			label+": `"+f.Prefix()+b.Command+"`"))
	}
	out := strings.Join(lines, "\n")
	if reply.Reaction != "" {
		if out != "" {
			out += " "
		}
		out += reply.Reaction
	}
	return out
}

func formatShortTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}
