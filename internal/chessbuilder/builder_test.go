package chessbuilder

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/park285/Cheese-chessroom-bot/internal/bot"
	"github.com/park285/Cheese-chessroom-bot/internal/config"
	"github.com/park285/Cheese-chessroom-bot/internal/pvpchess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEgress struct {
	mu     sync.Mutex
	texts  []string
	images []string
}

func (e *recordingEgress) SendText(_ context.Context, _ string, message string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.texts = append(e.texts, message)
	return nil
}

func (e *recordingEgress) SendImage(_ context.Context, _ string, imageBase64 string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.images = append(e.images, imageBase64)
	return nil
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	dir := t.TempDir()
	return &config.AppConfig{
		BotPrefix:         "!",
		ChessBoardSize:    320,
		ChessScratchSVG:   filepath.Join(dir, "images", "chess.svg"),
		ChessScratchPNG:   filepath.Join(dir, "images", "chess.png"),
		ChessHistoryLimit: 5,
	}
}

func TestNewWiresFullGameFlow(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := testConfig(t)
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"
	cfg.DatabaseURL = "sqlite://" + filepath.Join(t.TempDir(), "games.db")

	eg := &recordingEgress{}
	deps, err := New(cfg, eg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })
	assert.IsType(t, &pvpchess.Multi{}, deps.Archive)

	ctx := context.Background()
	run := func(invoker, name string, args ...string) {
		require.NoError(t, deps.Dispatcher.Handle(ctx, bot.Command{Room: "room-1", Invoker: invoker, Name: name, Args: args}))
	}
	run("Alice", bot.CmdChallenge)
	run("Bob", bot.CmdAccept)
	run("Alice", bot.CmdStart)

	require.Len(t, eg.images, 1)
	png, err := base64.StdEncoding.DecodeString(eg.images[0])
	require.NoError(t, err)
	onDisk, err := os.ReadFile(cfg.ChessScratchPNG)
	require.NoError(t, err)
	assert.Equal(t, onDisk, png)
	_, err = os.Stat(cfg.ChessScratchSVG)
	require.NoError(t, err)

	board := eg.texts[len(eg.texts)-1]
	assert.True(t, strings.HasPrefix(board, "♟ Chess\nA game between Alice and Bob"), board)
	assert.Contains(t, board, "How to Play: !play uci")
	assert.Contains(t, board, "🤝 Offer a Draw: `!draw`")

	run("Alice", bot.CmdResign)
	assert.Len(t, eg.images, 2)

	games, err := deps.Archive.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "0-1", games[0].Result)
	assert.Equal(t, "resignation", games[0].ResultMethod)

	// the game reached every configured store
	assert.True(t, mr.Exists("chess:games:recent"))
	repo, err := pvpchess.NewRepository(cfg.DatabaseURL)
	require.NoError(t, err)
	defer repo.Close()
	stored, err := repo.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestNewDefaultsToMemoryArchive(t *testing.T) {
	deps, err := New(testConfig(t), &recordingEgress{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &pvpchess.MemoryStore{}, deps.Archive)
	assert.NoError(t, deps.Close())
}

func TestNewRejectsBadInputs(t *testing.T) {
	_, err := New(nil, &recordingEgress{}, nil)
	assert.Error(t, err)
	_, err = New(testConfig(t), nil, nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.DatabaseURL = "mysql://nope"
	_, err = New(cfg, &recordingEgress{}, nil)
	assert.ErrorContains(t, err, "init game repository")

	cfg = testConfig(t)
	cfg.MessagesDir = filepath.Join(t.TempDir(), "missing")
	_, err = New(cfg, &recordingEgress{}, nil)
	assert.ErrorContains(t, err, "load messages")
}
