package pvpchess

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/park285/Cheese-chessroom-bot/internal/obslog"
	"github.com/park285/Cheese-chessroom-bot/pkg/chessdto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	recentKey    = "chess:games:recent"
	archivedTTL  = 7 * 24 * time.Hour
	defaultLimit = 50
)

func archivedKey(id string) string { return "chess:games:archived:" + id }

// RedisStore keeps the most recent finished games as a capped JSON list.
type RedisStore struct {
	rdb *redis.Client
	max int64
}

func NewRedisStore(redisURL string, max int) (*RedisStore, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for redis archive")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if max <= 0 {
		max = defaultLimit
	}
	return &RedisStore{rdb: rdb, max: int64(max)}, nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// SaveResult pushes g onto the recent list. A game id is pushed at most once.
func (s *RedisStore) SaveResult(ctx context.Context, g *chessdto.ChessGame) error {
	if err := validate(g); err != nil {
		return err
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	fresh, err := s.rdb.SetNX(ctx, archivedKey(g.ID), 1, archivedTTL).Result()
	if err != nil {
		return err
	}
	if !fresh {
		obslog.L().Debug("archive_redis_duplicate", zap.String("game_id", g.ID))
		return nil
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, recentKey, raw)
		p.LTrim(ctx, recentKey, 0, s.max-1)
		return nil
	})
	return err
}

func (s *RedisStore) Recent(ctx context.Context, limit int) ([]*chessdto.ChessGame, error) {
	if limit <= 0 || int64(limit) > s.max {
		limit = int(s.max)
	}
	vals, err := s.rdb.LRange(ctx, recentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*chessdto.ChessGame, 0, len(vals))
	for _, v := range vals {
		var g chessdto.ChessGame
		if err := json.Unmarshal([]byte(v), &g); err != nil {
			obslog.L().Warn("archive_redis_decode", zap.Error(err))
			continue
		}
		out = append(out, &g)
	}
	return out, nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
