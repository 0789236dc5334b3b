package chessdto

import "time"

// ChessGame is an archived, finished game.
type ChessGame struct {
	ID           string        `json:"id"`
	Room         string        `json:"room"`
	White        string        `json:"white"`
	Black        string        `json:"black"`
	Result       string        `json:"result"`
	ResultMethod string        `json:"result_method"`
	MovesUCI     []string      `json:"moves_uci"`
	MovesSAN     []string      `json:"moves_san"`
	ECO          string        `json:"eco,omitempty"`
	Opening      string        `json:"opening,omitempty"`
	PGN          string        `json:"pgn"`
	StartedAt    time.Time     `json:"started_at"`
	EndedAt      time.Time     `json:"ended_at"`
	Duration     time.Duration `json:"duration"`
}
