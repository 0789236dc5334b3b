package chess

import (
	"errors"
	"regexp"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrMalformedMove = errors.New("malformed move notation")
	ErrGameOver      = errors.New("game is over")
)

var (
	uciPattern = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)
	sanPattern = regexp.MustCompile(`^(O-O(-O)?|0-0(-0)?|[KQRBN]?[a-h]?[1-8]?x?[a-h][1-8](=?[QRBN])?)[+#]?[!?]*$`)
)

// Color identifies a side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Title() string {
	if c == Black {
		return "Black"
	}
	return "White"
}

// Move is an applied move in both notations.
type Move struct {
	UCI  string
	SAN  string
	From nchess.Square
	To   nchess.Square
}

// Conclusion is the terminal result of a game.
type Conclusion struct {
	Result string // 1-0, 0-1, 1/2-1/2
	Method string
	Winner Color // empty on draws
}

func (c Conclusion) IsDraw() bool { return c.Winner == "" }

// Board tracks one game from the standard starting position. Rules, legality
// and game-end detection come from corentings/chess.
type Board struct {
	game   *nchess.Game
	moves  []Move
	agreed *Conclusion
}

func NewBoard() *Board {
	return &Board{game: nchess.NewGame()}
}

// LegalMoves returns the legal-move set of the current position in UCI.
func (b *Board) LegalMoves() []string {
	valid := b.game.ValidMoves()
	out := make([]string, 0, len(valid))
	for _, mv := range valid {
		out = append(out, mv.String())
	}
	return out
}

func (b *Board) isLegal(uci string) bool {
	for _, mv := range b.LegalMoves() {
		if mv == uci {
			return true
		}
	}
	return false
}

// Play validates notation against the legal-move set and applies it.
// UCI is tried first, SAN second. The board is unchanged on error.
func (b *Board) Play(notation string) (Move, error) {
	raw := strings.TrimSpace(notation)
	if raw == "" {
		return Move{}, ErrMalformedMove
	}
	if _, over := b.Conclusion(); over {
		return Move{}, ErrGameOver
	}

	pos := b.game.Position()
	uci := strings.ToLower(raw)
	if uciPattern.MatchString(uci) {
		if !b.isLegal(uci) {
			return Move{}, ErrIllegalMove
		}
		if err := b.game.PushNotationMove(uci, nchess.UCINotation{}, nil); err != nil {
			return Move{}, ErrIllegalMove
		}
	} else {
		if !sanPattern.MatchString(raw) {
			return Move{}, ErrMalformedMove
		}
		if err := b.game.PushNotationMove(raw, nchess.AlgebraicNotation{}, nil); err != nil {
			return Move{}, ErrIllegalMove
		}
	}

	last := lastMove(b.game)
	if last == nil {
		return Move{}, ErrIllegalMove
	}
	mv := Move{
		UCI:  last.String(),
		SAN:  nchess.AlgebraicNotation{}.Encode(pos, last),
		From: last.S1(),
		To:   last.S2(),
	}
	b.moves = append(b.moves, mv)
	return mv, nil
}

// Resign concludes the game with color as the loser.
func (b *Board) Resign(color Color) error {
	if _, over := b.Conclusion(); over {
		return ErrGameOver
	}
	if color == Black {
		b.game.Resign(nchess.Black)
	} else {
		b.game.Resign(nchess.White)
	}
	return nil
}

// AgreeDraw concludes the game as a draw by agreement.
func (b *Board) AgreeDraw() error {
	if _, over := b.Conclusion(); over {
		return ErrGameOver
	}
	b.agreed = &Conclusion{Result: "1/2-1/2", Method: "agreement"}
	return nil
}

// Conclusion reports the result once the game has ended.
func (b *Board) Conclusion() (Conclusion, bool) {
	if b.agreed != nil {
		return *b.agreed, true
	}
	out := b.game.Outcome()
	if out == nchess.NoOutcome {
		return Conclusion{}, false
	}
	c := Conclusion{Result: string(out), Method: methodName(b.game.Method())}
	switch out {
	case nchess.WhiteWon:
		c.Winner = White
	case nchess.BlackWon:
		c.Winner = Black
	}
	return c, true
}

func (b *Board) Turn() Color {
	if b.game.Position().Turn() == nchess.Black {
		return Black
	}
	return White
}

func (b *Board) FEN() string { return b.game.FEN() }

func (b *Board) Moves() []Move { return append([]Move(nil), b.moves...) }

func (b *Board) MovesUCI() []string {
	out := make([]string, 0, len(b.moves))
	for _, mv := range b.moves {
		out = append(out, mv.UCI)
	}
	return out
}

func (b *Board) MovesSAN() []string {
	out := make([]string, 0, len(b.moves))
	for _, mv := range b.moves {
		out = append(out, mv.SAN)
	}
	return out
}

// LastMove returns the most recent move, if any.
func (b *Board) LastMove() (Move, bool) {
	if len(b.moves) == 0 {
		return Move{}, false
	}
	return b.moves[len(b.moves)-1], true
}

func (b *Board) squareMap() map[nchess.Square]nchess.Piece {
	return b.game.Position().Board().SquareMap()
}

func lastMove(game *nchess.Game) *nchess.Move {
	moves := game.Moves()
	if len(moves) == 0 {
		return nil
	}
	return moves[len(moves)-1]
}

func methodName(m nchess.Method) string {
	switch m {
	case nchess.Checkmate:
		return "checkmate"
	case nchess.Resignation:
		return "resignation"
	case nchess.DrawOffer:
		return "agreement"
	case nchess.Stalemate:
		return "stalemate"
	case nchess.ThreefoldRepetition:
		return "threefold repetition"
	case nchess.FivefoldRepetition:
		return "fivefold repetition"
	case nchess.FiftyMoveRule:
		return "fifty-move rule"
	case nchess.SeventyFiveMoveRule:
		return "seventy-five-move rule"
	case nchess.InsufficientMaterial:
		return "insufficient material"
	default:
		return strings.ToLower(m.String())
	}
}
