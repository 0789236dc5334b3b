package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	yaml "gopkg.in/yaml.v3"
)

var (
	ErrCredentialsMissing = errors.New("credentials document not found")
	ErrTokenMissing       = errors.New("credentials document has no token")
)

type AppConfig struct {
	IrisBaseURL string `env:"IRIS_BASE_URL,required,notEmpty"`
	IrisWSURL   string `env:"IRIS_WS_URL,required,notEmpty"`

	BotPrefix string `env:"BOT_PREFIX" envDefault:"$"`

	XUserID    string `env:"X_USER_ID"`
	XUserEmail string `env:"X_USER_EMAIL"`
	XSessionID string `env:"X_SESSION_ID"`

	EgressMode   string `env:"EGRESS_MODE" envDefault:"http"`
	EgressDryRun bool   `env:"EGRESS_DRYRUN" envDefault:"false"`

	RedisURL    string `env:"REDIS_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	AllowedRooms []string `env:"ALLOWED_ROOMS" envSeparator:","`

	CredentialsFile string `env:"CREDENTIALS_FILE" envDefault:"token.json"`
	MessagesDir     string `env:"MESSAGES_DIR"`
	QueueSize       int    `env:"QUEUE_SIZE" envDefault:"64"`

	ChessBoardSize    int    `env:"CHESS_BOARD_SIZE" envDefault:"900"`
	ChessScratchSVG   string `env:"CHESS_SCRATCH_SVG" envDefault:"images/chess.svg"`
	ChessScratchPNG   string `env:"CHESS_SCRATCH_PNG" envDefault:"images/chess.png"`
	ChessStrictTurns  bool   `env:"CHESS_STRICT_TURNS" envDefault:"false"`
	ChessHistoryLimit int    `env:"CHESS_HISTORY_LIMIT" envDefault:"10"`

	// Token is read from CredentialsFile, never from the environment.
	Token string `env:"-"`
}

// Load parses the environment and the credentials document.
// A missing document or token is an error; the process should not start.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()

	creds, err := LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	cfg.Token = creds["token"]
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("%s: %w", cfg.CredentialsFile, ErrTokenMissing)
	}
	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.IrisBaseURL = strings.TrimSpace(c.IrisBaseURL)
	c.IrisWSURL = strings.TrimSpace(c.IrisWSURL)
	c.BotPrefix = strings.TrimSpace(c.BotPrefix)
	if c.BotPrefix == "" {
		c.BotPrefix = "$"
	}
	c.EgressMode = strings.ToLower(strings.TrimSpace(c.EgressMode))

	rooms := c.AllowedRooms[:0]
	for _, r := range c.AllowedRooms {
		if s := strings.TrimSpace(r); s != "" {
			rooms = append(rooms, s)
		}
	}
	c.AllowedRooms = rooms

	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.ChessHistoryLimit <= 0 {
		c.ChessHistoryLimit = 10
	}
}

// LoadCredentials reads a flat key-value document. JSON documents are
// accepted as well since they parse as YAML.
func LoadCredentials(path string) (map[string]string, error) {
	raw, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrCredentialsMissing)
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		if v == nil {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out, nil
}

// Headers returns the per-request headers sent to Iris.
func (c *AppConfig) Headers() map[string]string {
	h := map[string]string{}
	if c.XUserID != "" {
		h["X-User-Id"] = c.XUserID
	}
	if c.XUserEmail != "" {
		h["X-User-Email"] = c.XUserEmail
	}
	if c.XSessionID != "" {
		h["X-Session-Id"] = c.XSessionID
	}
	if c.Token != "" {
		h["Authorization"] = "Bearer " + c.Token
	}
	return h
}

// RoomAllowed reports whether room passes the ALLOWED_ROOMS filter.
func (c *AppConfig) RoomAllowed(room string) bool {
	if len(c.AllowedRooms) == 0 {
		return true
	}
	for _, r := range c.AllowedRooms {
		if r == room {
			return true
		}
	}
	return false
}

func (c *AppConfig) Prefix() string { return c.BotPrefix }
