package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/park285/Cheese-chessroom-bot/internal/config"
	"github.com/park285/Cheese-chessroom-bot/internal/irisfast"
	"github.com/park285/Cheese-chessroom-bot/internal/obslog"
	"go.uber.org/zap"
)

// checkConfig is the subset of the bot environment needed to probe Iris.
type checkConfig struct {
	IrisBaseURL     string        `env:"IRIS_BASE_URL,required,notEmpty"`
	IrisWSURL       string        `env:"IRIS_WS_URL"`
	XUserID         string        `env:"X_USER_ID"`
	XUserEmail      string        `env:"X_USER_EMAIL"`
	XSessionID      string        `env:"X_SESSION_ID"`
	CredentialsFile string        `env:"CREDENTIALS_FILE" envDefault:"token.json"`
	Observe         time.Duration `env:"IRISCHECK_OBSERVE" envDefault:"10s"`
}

func main() {
	if err := obslog.Init(obslog.Settings{Level: "debug", Format: "console", Console: true}); err != nil {
		log.Printf("logger init error: %v", err)
	}
	defer obslog.Close()
	logger := obslog.L()

	var cc checkConfig
	if err := env.Parse(&cc); err != nil {
		log.Fatalf("config error: %v", err)
	}

	app := &config.AppConfig{XUserID: cc.XUserID, XUserEmail: cc.XUserEmail, XSessionID: cc.XSessionID}
	if creds, err := config.LoadCredentials(cc.CredentialsFile); err == nil {
		app.Token = creds["token"]
	} else {
		logger.Warn("credentials_unavailable", zap.String("path", cc.CredentialsFile), zap.Error(err))
	}

	client := irisfast.NewClient(cc.IrisBaseURL,
		irisfast.WithHeaderProvider(app.Headers),
		irisfast.WithTimeout(8*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cfg, err := client.GetConfig(ctx)
	if err != nil {
		logger.Error("iris_config_failed", zap.Error(err))
	} else {
		logger.Info("iris_config_ok",
			zap.Int("port", cfg.Port),
			zap.Int("polling", cfg.PollingSpeed),
			zap.Int("rate", cfg.MessageRate),
			zap.String("endpoint", cfg.WebserverEndpoint),
		)
	}

	if cc.IrisWSURL == "" {
		logger.Info("ws_check_skipped", zap.String("reason", "IRIS_WS_URL not set"))
		return
	}

	ws := irisfast.NewWebSocket(cc.IrisWSURL, 5, time.Second)
	ws.SetHeaderProvider(app.Headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})
	ws.OnMessage(func(msg *irisfast.Message) {
		fmt.Fprintf(os.Stdout, "WS msg room=%s from=%s text=%q\n", msg.Room, msg.SenderName(), msg.Msg)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		logger.Error("ws_connect_failed", zap.Error(err))
		return
	}

	t := time.NewTimer(cc.Observe)
	<-t.C

	_ = ws.Close(context.Background())
}
