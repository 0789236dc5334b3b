package chessdto

// SessionState is a presentation snapshot of the session.
type SessionState struct {
	Phase       string
	Challenger  string
	Opponent    string
	GameID      string
	FEN         string
	MovesSAN    []string
	MovesUCI    []string
	LastMoveSAN string
	Turn        string // white | black
	InCheck     bool
	Outcome     string // 1-0 | 0-1 | 1/2-1/2, empty while in progress
	OutcomeMeta string
	Winner      string
	DrawOffer   string
	BoardImage  []byte
}

// Concluded reports whether the game has a result.
func (s *SessionState) Concluded() bool {
	return s != nil && s.Outcome != ""
}

// MoveCount returns the number of half-moves played.
func (s *SessionState) MoveCount() int {
	if s == nil {
		return 0
	}
	if len(s.MovesSAN) > 0 {
		return len(s.MovesSAN)
	}
	return len(s.MovesUCI)
}
