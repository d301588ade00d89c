package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []Message
	err   error
	block chan struct{}
}

func (f *fakeSender) Send(ctx context.Context, msg Message) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeSender) messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.sent...)
}

func TestNotifier_DeliversQueuedMessages(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, zap.NewNop(), Options{QueueSize: 4, Workers: 2})
	n.Start()

	require.NoError(t, n.Deliver(Message{To: "a@example.com", Subject: "one"}))
	require.NoError(t, n.Deliver(Message{To: "b@example.com", Subject: "two"}))

	require.NoError(t, n.Shutdown(context.Background()))
	assert.ElementsMatch(t, []string{"one", "two"}, subjects(sender.messages()))
}

func TestNotifier_SendFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	sender := &fakeSender{err: errors.New("smtp down")}
	n := New(sender, zap.New(core), Options{Workers: 1})
	n.Start()

	require.NoError(t, n.Deliver(Message{To: "a@example.com", Subject: "hello"}))
	require.NoError(t, n.Shutdown(context.Background()))

	entries := logs.FilterMessage("failed to send email").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a@example.com", entries[0].ContextMap()["to"])
}

func TestNotifier_DropsWhenFull(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sender := &fakeSender{block: make(chan struct{})}
	n := New(sender, zap.New(core), Options{QueueSize: 1, Workers: 1})
	// Not started: nothing drains the queue.

	require.NoError(t, n.Deliver(Message{Subject: "first"}))
	assert.ErrorIs(t, n.Deliver(Message{Subject: "second"}), ErrQueueFull)
	assert.Equal(t, 1, logs.FilterMessage("notification queue full, dropping email").Len())
}

func TestNotifier_DeliverAfterShutdown(t *testing.T) {
	n := New(&fakeSender{}, zap.NewNop(), Options{})
	n.Start()
	require.NoError(t, n.Shutdown(context.Background()))

	assert.ErrorIs(t, n.Deliver(Message{}), ErrQueueClosed)
	// A second shutdown is harmless.
	assert.NoError(t, n.Shutdown(context.Background()))
}

func TestNotifier_ShutdownAbandonsInFlight(t *testing.T) {
	sender := &fakeSender{block: make(chan struct{})}
	n := New(sender, zap.NewNop(), Options{Workers: 1})
	n.Start()
	require.NoError(t, n.Deliver(Message{Subject: "stuck"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := n.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func subjects(msgs []Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Subject)
	}
	return out
}
