package chesspresenter

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/park285/Cheese-chessroom-bot/pkg/chessdto"
)

// Presenter delivers formatted replies and board images without coupling to the command layer.
type Presenter struct {
	formatter   *Formatter
	sendMessage func(ctx context.Context, room, message string) error
	sendImage   func(ctx context.Context, room, imageBase64 string) error
}

func NewPresenter(formatter *Formatter, sendMessage func(ctx context.Context, room, message string) error, sendImage func(ctx context.Context, room, imageBase64 string) error) *Presenter {
	return &Presenter{
		formatter:   formatter,
		sendMessage: sendMessage,
		sendImage:   sendImage,
	}
}

// Send flattens reply to text, sends it, then sends the image if any.
// The first transport error aborts the rest.
func (p *Presenter) Send(ctx context.Context, room string, reply *chessdto.Reply) error {
	if p == nil || reply.Empty() {
		return nil
	}

	if text := p.formatter.Flatten(reply); strings.TrimSpace(text) != "" && p.sendMessage != nil {
		if err := p.sendMessage(ctx, room, text); err != nil {
			return err
		}
	}

	if reply.Image != nil && len(reply.Image.Data) > 0 && p.sendImage != nil {
		encoded := base64.StdEncoding.EncodeToString(reply.Image.Data)
		if err := p.sendImage(ctx, room, encoded); err != nil {
			return err
		}
	}

	return nil
}
