package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/park285/Cheese-chessroom-bot/internal/irisfast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		prefix, text string
		name         string
		args         []string
		ok           bool
	}{
		{"$", "$challenge", "challenge", []string{}, true},
		{"$", "  $PLAY e2e4 ", "play", []string{"e2e4"}, true},
		{"$", "$accept @Bob", "accept", []string{"@Bob"}, true},
		{"!", "$play e2e4", "", nil, false},
		{"$", "$", "", nil, false},
		{"$", "hello", "", nil, false},
		{"", "$hello", "", nil, false},
	}
	for _, tc := range cases {
		name, args, ok := ParseCommand(tc.prefix, tc.text)
		assert.Equal(t, tc.ok, ok, tc.text)
		assert.Equal(t, tc.name, name, tc.text)
		if tc.ok {
			assert.Equal(t, tc.args, args, tc.text)
		}
	}
	assert.Equal(t, "Bob", Command{Args: []string{" @Bob"}}.Target())
	assert.Equal(t, "", Command{}.Target())
	assert.Equal(t, "", Command{Args: []string{"x"}}.Arg(3))
}

type recordingHandler struct {
	mu      sync.Mutex
	cmds    []Command
	started chan struct{}
	release chan struct{}
	err     error
	done    chan Command
}

func (h *recordingHandler) Handle(ctx context.Context, cmd Command) error {
	if h.started != nil {
		h.started <- struct{}{}
		<-h.release
	}
	h.mu.Lock()
	h.cmds = append(h.cmds, cmd)
	h.mu.Unlock()
	if h.done != nil {
		h.done <- cmd
	}
	return h.err
}

func message(room, sender, text string) *irisfast.Message {
	return &irisfast.Message{Msg: text, Room: room, Sender: &sender}
}

func TestOnMessageFiltersAndEnqueues(t *testing.T) {
	h := &recordingHandler{}
	b := New(h, Options{Prefix: "$", QueueSize: 8, RoomAllowed: func(room string) bool { return room == "chess" }})

	b.OnMessage(nil)
	b.OnMessage(message("other", "Alice", "$challenge"))
	b.OnMessage(message("chess", "Alice", "challenge"))
	b.OnMessage(&irisfast.Message{Msg: "$challenge", Room: "chess"})
	b.OnMessage(message("chess", "Alice", "$challenge @Bob"))

	require.Len(t, b.queue, 1)
	cmd := <-b.queue
	assert.Equal(t, Command{Room: "chess", Invoker: "Alice", Name: CmdChallenge, Args: []string{"@Bob"}}, cmd)
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	b := New(&recordingHandler{}, Options{QueueSize: 1})
	assert.True(t, b.Enqueue(Command{Name: CmdStart}))
	assert.False(t, b.Enqueue(Command{Name: CmdPlay}))
}

func TestRunProcessesCommandsOneAtATimeInOrder(t *testing.T) {
	h := &recordingHandler{
		started: make(chan struct{}),
		release: make(chan struct{}),
		done:    make(chan Command, 4),
		err:     errors.New("logged, not fatal"),
	}
	b := New(h, Options{QueueSize: 4, CommandTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- b.Run(ctx) }()

	for _, name := range []string{CmdChallenge, CmdAccept, CmdStart} {
		require.True(t, b.Enqueue(Command{Name: name}))
	}
	for i := 0; i < 3; i++ {
		<-h.started
		// the next command cannot start until this one is released
		select {
		case <-h.started:
			t.Fatal("handlers overlapped")
		default:
		}
		h.release <- struct{}{}
		<-h.done
	}

	h.mu.Lock()
	names := []string{h.cmds[0].Name, h.cmds[1].Name, h.cmds[2].Name}
	h.mu.Unlock()
	assert.Equal(t, []string{CmdChallenge, CmdAccept, CmdStart}, names)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}
