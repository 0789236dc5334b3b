package pvpchess

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/park285/Cheese-chessroom-bot/pkg/chessdto"
	_ "modernc.org/sqlite"
)

// Repository archives finished games in Postgres (lib/pq) or SQLite
// (modernc.org/sqlite). Timestamps are stored as unix milliseconds.
type Repository struct {
	db       *sql.DB
	postgres bool
}

const schema = `CREATE TABLE IF NOT EXISTS chess_games (
	game_id        TEXT PRIMARY KEY,
	room           TEXT NOT NULL DEFAULT '',
	white_name     TEXT NOT NULL,
	black_name     TEXT NOT NULL,
	result         TEXT NOT NULL,
	result_method  TEXT NOT NULL DEFAULT '',
	moves_uci      TEXT NOT NULL,
	moves_san      TEXT NOT NULL,
	pgn            TEXT NOT NULL,
	started_at_ms  BIGINT NOT NULL,
	ended_at_ms    BIGINT NOT NULL,
	duration_ms    BIGINT NOT NULL
)`

// NewRepository opens databaseURL. postgres:// and postgresql:// use lib/pq;
// sqlite://<path> or file:<path> use SQLite.
func NewRepository(databaseURL string) (*Repository, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	driver, dsn, postgres, err := driverFor(databaseURL)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if postgres {
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(30 * time.Minute)
	} else {
		db.SetMaxOpenConns(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	r := &Repository{db: db, postgres: postgres}
	if err := r.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return r, nil
}

func driverFor(databaseURL string) (driver, dsn string, postgres bool, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return "postgres", databaseURL, true, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		return "sqlite", path + "?_pragma=busy_timeout(5000)", false, nil
	case strings.HasPrefix(databaseURL, "file:"):
		return "sqlite", databaseURL, false, nil
	}
	return "", "", false, fmt.Errorf("unsupported DATABASE_URL scheme")
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// rebind rewrites ? placeholders to $n for Postgres.
func (r *Repository) rebind(q string) string {
	if !r.postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, ch := range q {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// SaveResult upserts a final game result.
func (r *Repository) SaveResult(ctx context.Context, g *chessdto.ChessGame) error {
	if r == nil || r.db == nil {
		return nil
	}
	if err := validate(g); err != nil {
		return err
	}
	movesUCIRaw, _ := json.Marshal(nonNil(g.MovesUCI))
	movesSANRaw, _ := json.Marshal(nonNil(g.MovesSAN))
	pgn := g.PGN
	if pgn == "" {
		pgn = buildPGN(g)
	}

	q := `INSERT INTO chess_games (
        game_id, room, white_name, black_name,
        result, result_method, moves_uci, moves_san, pgn,
        started_at_ms, ended_at_ms, duration_ms
      ) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
      ON CONFLICT (game_id) DO UPDATE SET
        room=EXCLUDED.room,
        white_name=EXCLUDED.white_name,
        black_name=EXCLUDED.black_name,
        result=EXCLUDED.result,
        result_method=EXCLUDED.result_method,
        moves_uci=EXCLUDED.moves_uci,
        moves_san=EXCLUDED.moves_san,
        pgn=EXCLUDED.pgn,
        started_at_ms=EXCLUDED.started_at_ms,
        ended_at_ms=EXCLUDED.ended_at_ms,
        duration_ms=EXCLUDED.duration_ms`

	_, err := r.db.ExecContext(ctx, r.rebind(q),
		g.ID, g.Room, g.White, g.Black,
		g.Result, strings.TrimSpace(g.ResultMethod), string(movesUCIRaw), string(movesSANRaw), pgn,
		toMillis(g.StartedAt), toMillis(g.EndedAt), g.Duration.Milliseconds(),
	)
	return err
}

// Recent returns the latest finished games, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]*chessdto.ChessGame, error) {
	if limit <= 0 {
		limit = 10
	}
	q := `SELECT game_id, room, white_name, black_name, result, result_method,
        moves_uci, moves_san, pgn, started_at_ms, ended_at_ms, duration_ms
      FROM chess_games ORDER BY ended_at_ms DESC, game_id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, r.rebind(q), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*chessdto.ChessGame
	for rows.Next() {
		var (
			g                  chessdto.ChessGame
			uciRaw, sanRaw     string
			started, ended, ms int64
		)
		if err := rows.Scan(&g.ID, &g.Room, &g.White, &g.Black, &g.Result, &g.ResultMethod,
			&uciRaw, &sanRaw, &g.PGN, &started, &ended, &ms); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(uciRaw), &g.MovesUCI); err != nil {
			return nil, fmt.Errorf("decode moves_uci: %w", err)
		}
		if err := json.Unmarshal([]byte(sanRaw), &g.MovesSAN); err != nil {
			return nil, fmt.Errorf("decode moves_san: %w", err)
		}
		g.StartedAt, g.EndedAt = fromMillis(started), fromMillis(ended)
		g.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, &g)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
