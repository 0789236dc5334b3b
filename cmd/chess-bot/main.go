package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/Cheese-chessroom-bot/internal/bot"
	"github.com/park285/Cheese-chessroom-bot/internal/chessbuilder"
	appcfg "github.com/park285/Cheese-chessroom-bot/internal/config"
	"github.com/park285/Cheese-chessroom-bot/internal/irisfast"
	"github.com/park285/Cheese-chessroom-bot/internal/obslog"
	"go.uber.org/zap"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Printf("logger init error: %v", err)
	}
	defer obslog.Close()
	logger := obslog.L()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	client := irisfast.NewClient(cfg.IrisBaseURL, irisfast.WithHeaderProvider(cfg.Headers))

	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, time.Second)
	ws.SetHeaderProvider(cfg.Headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})

	egress := irisfast.NewEgress(cfg.EgressMode, cfg.EgressDryRun, client, ws, logger)

	deps, err := chessbuilder.New(cfg, egress, logger)
	if err != nil {
		log.Fatalf("chess init error: %v", err)
	}
	defer func() { _ = deps.Close() }()

	b := bot.New(deps.Dispatcher, bot.Options{
		Prefix:         cfg.BotPrefix,
		RoomAllowed:    cfg.RoomAllowed,
		QueueSize:      cfg.QueueSize,
		CommandTimeout: 30 * time.Second,
	})
	ws.OnMessage(b.OnMessage)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = ws.Connect(cctx)
	cancel()
	if err != nil {
		logger.Error("ws_connect_failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("bot_started",
		zap.String("prefix", cfg.BotPrefix),
		zap.String("egress", cfg.EgressMode),
		zap.Strings("allowed_rooms", cfg.AllowedRooms),
	)

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot_stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := ws.Close(shutdownCtx); err != nil {
		logger.Warn("ws_close_failed", zap.Error(err))
	}
	logger.Info("bot_stopped")
}
