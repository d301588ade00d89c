// Package notify delivers best-effort email notifications. Messages are
// queued and sent by a small worker pool so request handling never waits on
// SMTP; delivery failures are logged and dropped.
package notify

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Message is one rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
	// Text is the plain-text fallback part.
	Text string
}

// Sender performs the actual network delivery.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrQueueClosed is returned by Deliver after Shutdown.
var ErrQueueClosed = errors.New("notifier is shut down")

// ErrQueueFull is returned by Deliver when the queue has no free slot.
var ErrQueueFull = errors.New("notification queue is full")

// Options tunes the dispatcher.
type Options struct {
	// QueueSize bounds the number of pending messages.
	QueueSize int
	// Workers is the number of concurrent senders.
	Workers int
}

// Notifier is a bounded queue drained by a worker pool.
type Notifier struct {
	sender  Sender
	log     *zap.Logger
	queue   chan Message
	workers int

	mu     sync.RWMutex
	closed bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Notifier. Call Start before Deliver.
func New(sender Sender, log *zap.Logger, opts Options) *Notifier {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Notifier{
		sender:  sender,
		log:     log,
		queue:   make(chan Message, opts.QueueSize),
		workers: opts.Workers,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (n *Notifier) Start() {
	for i := 0; i < n.workers; i++ {
		n.wg.Add(1)
		go n.worker()
	}
}

func (n *Notifier) worker() {
	defer n.wg.Done()
	for msg := range n.queue {
		if err := n.sender.Send(n.ctx, msg); err != nil {
			n.log.Error("failed to send email",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
			continue
		}
		n.log.Info("email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	}
}

// Deliver enqueues msg without blocking. The returned error only reports
// that the message was dropped; callers are expected to ignore it.
func (n *Notifier) Deliver(msg Message) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrQueueClosed
	}
	select {
	case n.queue <- msg:
		return nil
	default:
		n.log.Warn("notification queue full, dropping email",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return ErrQueueFull
	}
}

// Shutdown stops accepting messages and waits for the queue to drain until
// ctx is done. Sends still running at that point are cancelled.
func (n *Notifier) Shutdown(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		n.cancel()
		return nil
	case <-ctx.Done():
		n.cancel()
		return ctx.Err()
	}
}
