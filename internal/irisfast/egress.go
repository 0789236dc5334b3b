package irisfast

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Egress abstracts message/image sending over HTTP or WebSocket.
type Egress interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

type transportMode string

const (
	transportHTTP transportMode = "http"
	transportWS   transportMode = "ws"
	transportAuto transportMode = "auto"
)

const wsWriteTimeout = 5 * time.Second

// NewEgress creates an Egress based on mode. When mode is auto, WS is preferred when connected;
// on WS failure, it falls back to HTTP once. dryrun logs instead of sending on every mode.
func NewEgress(mode string, dryrun bool, c *Client, ws WSClient, logger *zap.Logger) Egress {
	if logger == nil {
		logger = zap.NewNop()
	}
	var e Egress
	switch transportMode(mode) {
	case transportWS:
		e = &wsEgress{ws: ws}
	case transportAuto:
		e = &autoEgress{ws: &wsEgress{ws: ws}, http: &httpEgress{c: c}, logger: logger}
	default:
		e = &httpEgress{c: c}
	}
	if dryrun {
		return &dryRunEgress{logger: logger, mode: mode}
	}
	return e
}

// httpEgress delegates to Client.
type httpEgress struct{ c *Client }

func (h *httpEgress) SendText(ctx context.Context, room, message string) error {
	if h == nil || h.c == nil {
		return errors.New("http egress not available")
	}
	return h.c.SendMessage(ctx, room, message)
}

func (h *httpEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if h == nil || h.c == nil {
		return errors.New("http egress not available")
	}
	return h.c.SendImage(ctx, room, imageBase64)
}

// wsEgress writes ReplyRequest frames over WebSocket.
type wsEgress struct {
	ws WSClient
}

func (w *wsEgress) available() bool {
	return w != nil && w.ws != nil && w.ws.State() == WSStateConnected
}

func (w *wsEgress) SendText(ctx context.Context, room, message string) error {
	return w.write(ctx, &ReplyRequest{Type: "text", Room: room, Data: message})
}

func (w *wsEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	return w.write(ctx, &ImageReplyRequest{Type: "image", Room: room, Data: imageBase64})
}

func (w *wsEgress) write(ctx context.Context, v any) error {
	if w == nil || w.ws == nil {
		return errors.New("ws egress not available")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wsWriteTimeout)
		defer cancel()
	}
	return w.ws.WriteJSON(ctx, v)
}

// autoEgress prefers WS if available, with single fallback to HTTP.
type autoEgress struct {
	ws     *wsEgress
	http   *httpEgress
	logger *zap.Logger
}

func (a *autoEgress) SendText(ctx context.Context, room, message string) error {
	if a.ws.available() {
		err := a.ws.SendText(ctx, room, message)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("type", "text"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendText(ctx, room, message)
}

func (a *autoEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if a.ws.available() {
		err := a.ws.SendImage(ctx, room, imageBase64)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("type", "image"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendImage(ctx, room, imageBase64)
}

type dryRunEgress struct {
	logger *zap.Logger
	mode   string
}

func (d *dryRunEgress) SendText(_ context.Context, room, message string) error {
	d.logger.Info("egress_dryrun", zap.String("mode", d.mode), zap.String("type", "text"), zap.String("room", room), zap.Int("len", len(message)))
	return nil
}

func (d *dryRunEgress) SendImage(_ context.Context, room, imageBase64 string) error {
	d.logger.Info("egress_dryrun", zap.String("mode", d.mode), zap.String("type", "image"), zap.String("room", room), zap.Int("len", len(imageBase64)))
	return nil
}
