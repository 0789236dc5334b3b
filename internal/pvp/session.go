package pvp

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/park285/Cheese-chessroom-bot/internal/chess"
	"github.com/park285/Cheese-chessroom-bot/internal/obslog"
	"go.uber.org/zap"
)

// Session is the single challenge/game record of the process.
type Session struct {
	mu          sync.Mutex
	state       State
	now         func() time.Time
	newID       func() string
	strictTurns bool
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Session) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithStrictTurns rejects moves from anyone but the player to move.
func WithStrictTurns(on bool) Option {
	return func(s *Session) { s.strictTurns = on }
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		state: Idle{},
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state. The Playing variant shares its Game.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ignored() Result {
	return Result{Status: StatusIgnored, State: s.state}
}

func (s *Session) rejected(err error) Result {
	return Result{Status: StatusRejected, State: s.state, Err: err}
}

func defaultTarget(invoker, target string) string {
	if t := strings.TrimSpace(target); t != "" {
		return t
	}
	return strings.TrimSpace(invoker)
}

// Challenge records target (or the invoker) as challenger. Idle only.
func (s *Session) Challenge(invoker, target string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.(Idle); !ok {
		return s.ignored()
	}
	name := defaultTarget(invoker, target)
	if name == "" {
		return s.ignored()
	}
	s.state = Challenged{Challenger: name}
	obslog.L().Info("session_challenge", zap.String("invoker", invoker), zap.String("challenger", name))
	return Result{Status: StatusApplied, State: s.state}
}

// Accept records target (or the invoker) as opponent. Challenged only.
// Accepting one's own challenge is allowed.
func (s *Session) Accept(invoker, target string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.state.(Challenged)
	if !ok {
		return s.ignored()
	}
	name := defaultTarget(invoker, target)
	if name == "" {
		return s.ignored()
	}
	s.state = Ready{Challenger: cur.Challenger, Opponent: name}
	obslog.L().Info("session_accept",
		zap.String("challenger", cur.Challenger),
		zap.String("opponent", name),
		zap.Bool("self_accept", name == cur.Challenger),
	)
	return Result{Status: StatusApplied, State: s.state}
}

// Start creates a board at the standard starting position. Ready only.
func (s *Session) Start(invoker string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.state.(Ready)
	if !ok {
		return s.ignored()
	}
	game := &Game{
		ID:        s.newID(),
		Board:     chess.NewBoard(),
		StartedAt: s.now(),
	}
	s.state = Playing{Challenger: cur.Challenger, Opponent: cur.Opponent, Game: game}
	obslog.L().Info("session_start",
		zap.String("game_id", game.ID),
		zap.String("invoker", invoker),
		zap.String("white", cur.Challenger),
		zap.String("black", cur.Opponent),
	)
	return Result{Status: StatusApplied, State: s.state}
}

// Play validates notation against the legal-move set and applies it.
// Illegal or malformed input is rejected and leaves the board untouched.
func (s *Session) Play(invoker, notation string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.state.(Playing)
	if !ok {
		return s.ignored()
	}
	game := cur.Game
	if _, over := game.Concluded(); over {
		return s.rejected(chess.ErrGameOver)
	}
	if s.strictTurns {
		color, isPlayer := cur.Color(invoker)
		if !isPlayer {
			return s.rejected(ErrNotPlayer)
		}
		turn := game.Board.Turn()
		if color != turn && cur.PlayerFor(turn) != invoker {
			return s.rejected(ErrNotYourTurn)
		}
	}

	mv, err := game.Board.Play(notation)
	if err != nil {
		obslog.L().Debug("session_play_rejected",
			zap.String("game_id", game.ID),
			zap.String("invoker", invoker),
			zap.String("notation", notation),
			zap.Error(err),
		)
		return s.rejected(err)
	}
	game.DrawOfferedBy = ""

	res := Result{Status: StatusApplied, State: s.state, Move: mv}
	if c, over := game.Concluded(); over {
		game.EndedAt = s.now()
		res.Conclusion = &c
		obslog.L().Info("session_game_over",
			zap.String("game_id", game.ID),
			zap.String("result", c.Result),
			zap.String("method", c.Method),
		)
	}
	eco, _, _ := game.Board.Opening()
	obslog.L().Info("session_play",
		zap.String("game_id", game.ID),
		zap.String("invoker", invoker),
		zap.String("uci", mv.UCI),
		zap.String("san", mv.SAN),
		zap.String("eco", eco),
	)
	return res
}

// Resign concludes the game in favour of the invoker's opponent.
func (s *Session) Resign(invoker string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.state.(Playing)
	if !ok {
		return s.ignored()
	}
	color, isPlayer := cur.Color(invoker)
	if !isPlayer {
		return s.rejected(ErrNotPlayer)
	}
	game := cur.Game
	// A self-accepted game has one name on both sides; the side to move resigns.
	if cur.Challenger == cur.Opponent {
		color = game.Board.Turn()
	}
	if err := game.Board.Resign(color); err != nil {
		return s.rejected(err)
	}
	c, _ := game.Concluded()
	game.EndedAt = s.now()
	game.DrawOfferedBy = ""
	obslog.L().Info("session_resign",
		zap.String("game_id", game.ID),
		zap.String("invoker", invoker),
		zap.String("result", c.Result),
	)
	return Result{Status: StatusApplied, State: s.state, Conclusion: &c}
}

// Draw records a draw offer, or concludes the game when the other player
// already offered one.
func (s *Session) Draw(invoker string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.state.(Playing)
	if !ok {
		return s.ignored()
	}
	if !cur.isPlayer(invoker) {
		return s.rejected(ErrNotPlayer)
	}
	game := cur.Game
	if _, over := game.Concluded(); over {
		return s.rejected(chess.ErrGameOver)
	}

	switch {
	case game.DrawOfferedBy == "":
		game.DrawOfferedBy = invoker
		obslog.L().Info("session_draw_offer", zap.String("game_id", game.ID), zap.String("invoker", invoker))
		return Result{Status: StatusApplied, State: s.state, DrawOffered: true}
	case game.DrawOfferedBy == invoker && cur.Challenger != cur.Opponent:
		return s.rejected(ErrDrawAlreadyOffered)
	}

	if err := game.Board.AgreeDraw(); err != nil {
		return s.rejected(err)
	}
	c, _ := game.Concluded()
	game.EndedAt = s.now()
	game.DrawOfferedBy = ""
	obslog.L().Info("session_draw_agreed", zap.String("game_id", game.ID))
	return Result{Status: StatusApplied, State: s.state, Conclusion: &c}
}

// Reset returns the session to Idle from any state.
func (s *Session) Reset(invoker string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	s.state = Idle{}
	obslog.L().Info("session_reset", zap.String("invoker", invoker), zap.String("from", prev.Phase().String()))
	return Result{Status: StatusApplied, State: s.state}
}
