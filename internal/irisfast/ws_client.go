package irisfast

import "context"

// MessageCallback receives each chat event. It runs on the read loop and
// must not block.
type MessageCallback func(message *Message)

type StateCallback func(state WebSocketState)

// WSClient is the websocket side of the Iris transport: chat events in,
// reply frames out.
type WSClient interface {
	Connect(ctx context.Context) error
	State() WebSocketState
	WriteJSON(ctx context.Context, v any) error
	OnMessage(cb MessageCallback) int
	RemoveMessageCallback(id int)
	OnStateChange(cb StateCallback) int
	RemoveStateCallback(id int)
	Close(ctx context.Context) error
}
