package irisfast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func TestWebSocketDeliversMessagesAndWritesReplies(t *testing.T) {
	replies := make(chan ReplyRequest, 1)
	handshake := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handshake <- r.Header.Get("X-User-Id")
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		sender := "Alice"
		_ = wsjson.Write(r.Context(), conn, Message{Msg: "$challenge", Room: "room-1", Sender: &sender})

		var reply ReplyRequest
		if err := wsjson.Read(r.Context(), conn, &reply); err != nil {
			return
		}
		replies <- reply
		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ws := NewWebSocket("ws://"+strings.TrimPrefix(srv.URL, "http://"), 0, 0)
	ws.SetHeaderProvider(func() map[string]string { return map[string]string{"X-User-Id": "u-1"} })

	got := make(chan *Message, 1)
	ws.OnMessage(func(m *Message) { got <- m })
	states := make(chan WebSocketState, 8)
	ws.OnStateChange(func(s WebSocketState) { states <- s })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ws.Connect(ctx))
	assert.Equal(t, WSStateConnected, ws.State())
	assert.Equal(t, "u-1", <-handshake)

	select {
	case m := <-got:
		assert.Equal(t, "$challenge", m.Msg)
		assert.Equal(t, "Alice", m.SenderName())
	case <-ctx.Done():
		t.Fatal("no message delivered")
	}

	eg := NewEgress("ws", false, nil, ws, nil)
	require.NoError(t, eg.SendText(ctx, "room-1", "Alice have started a challenge"))
	select {
	case r := <-replies:
		assert.Equal(t, ReplyRequest{Type: "text", Room: "room-1", Data: "Alice have started a challenge"}, r)
	case <-ctx.Done():
		t.Fatal("no reply received")
	}

	require.NoError(t, ws.Close(ctx))
	assert.Equal(t, WSStateDisconnected, ws.State())
	assert.Equal(t, WSStateConnecting, <-states)
	assert.Equal(t, WSStateConnected, <-states)
}

func TestMessageSenderNameFallsBackToUserID(t *testing.T) {
	blank := "  "
	m := &Message{Sender: &blank, JSON: &MessageJSON{UserID: " 42 "}}
	assert.Equal(t, "42", m.SenderName())
	assert.Equal(t, "", (*Message)(nil).SenderName())
	assert.Equal(t, "failed", WSStateFailed.String())
}
