package pvp

import (
	"errors"
	"time"

	"github.com/park285/Cheese-chessroom-bot/internal/chess"
)

var (
	ErrNotPlayer          = errors.New("invoker is not playing this game")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrDrawAlreadyOffered = errors.New("draw already offered")
)

// Phase names the variant of a State.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseChallenged
	PhaseReady
	PhasePlaying
)

func (p Phase) String() string {
	switch p {
	case PhaseChallenged:
		return "challenged"
	case PhaseReady:
		return "ready"
	case PhasePlaying:
		return "playing"
	default:
		return "idle"
	}
}

// State is one of Idle, Challenged, Ready or Playing. Each variant carries
// only the fields valid in that phase.
type State interface {
	Phase() Phase
}

type Idle struct{}

type Challenged struct {
	Challenger string
}

type Ready struct {
	Challenger string
	Opponent   string
}

// Playing is the only state holding a board.
type Playing struct {
	Challenger string
	Opponent   string
	Game       *Game
}

func (Idle) Phase() Phase       { return PhaseIdle }
func (Challenged) Phase() Phase { return PhaseChallenged }
func (Ready) Phase() Phase      { return PhaseReady }
func (Playing) Phase() Phase    { return PhasePlaying }

// Color returns the side played by name. The challenger is White.
func (p Playing) Color(name string) (chess.Color, bool) {
	switch name {
	case p.Challenger:
		return chess.White, true
	case p.Opponent:
		return chess.Black, true
	}
	return "", false
}

// PlayerFor returns the name playing color.
func (p Playing) PlayerFor(color chess.Color) string {
	if color == chess.Black {
		return p.Opponent
	}
	return p.Challenger
}

func (p Playing) isPlayer(name string) bool {
	return name == p.Challenger || name == p.Opponent
}

// Game is the board handle plus bookkeeping for one started game.
type Game struct {
	ID            string
	Board         *chess.Board
	StartedAt     time.Time
	EndedAt       time.Time
	DrawOfferedBy string
}

// Concluded reports the final result once the game has ended.
func (g *Game) Concluded() (chess.Conclusion, bool) {
	if g == nil || g.Board == nil {
		return chess.Conclusion{}, false
	}
	return g.Board.Conclusion()
}

// Status tells callers whether a transition happened.
type Status int

const (
	// StatusIgnored: the precondition did not hold. Nothing changed and
	// nothing should be sent.
	StatusIgnored Status = iota
	StatusApplied
	// StatusRejected: the command was valid for the phase but refused
	// (illegal move, game over, ...). State is unchanged; Err says why.
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusRejected:
		return "rejected"
	default:
		return "ignored"
	}
}

// Result is returned by every transition.
type Result struct {
	Status Status
	State  State
	Err    error

	// Move is set when play applied a move.
	Move chess.Move
	// Conclusion is set only by the transition that ended the game.
	Conclusion *chess.Conclusion
	// DrawOffered is set when draw recorded an offer without concluding.
	DrawOffered bool
}

func (r Result) Applied() bool { return r.Status == StatusApplied }
