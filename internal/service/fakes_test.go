package service

import (
	"context"
	"sync"
	"time"

	"github.com/atinyakov/sellharbor/internal/models"
	"github.com/atinyakov/sellharbor/internal/notify"
)

type mockStore[T any] struct {
	FindDuplicateFunc func(ctx context.Context, doc T, since time.Time) (bool, error)
	InsertFunc        func(ctx context.Context, doc T) (string, error)
}

func (m *mockStore[T]) FindDuplicate(ctx context.Context, doc T, since time.Time) (bool, error) {
	return m.FindDuplicateFunc(ctx, doc, since)
}

func (m *mockStore[T]) Insert(ctx context.Context, doc T) (string, error) {
	return m.InsertFunc(ctx, doc)
}

// memNewsletters is a tiny in-memory newsletter store keyed by email.
type memNewsletters struct {
	mu   sync.Mutex
	rows map[string]*models.NewsletterSubscription
}

func newMemNewsletters() *memNewsletters {
	return &memNewsletters{rows: map[string]*models.NewsletterSubscription{}}
}

func (m *memNewsletters) FindDuplicate(_ context.Context, n *models.NewsletterSubscription, _ time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[n.Email]
	return ok, nil
}

func (m *memNewsletters) Insert(_ context.Context, n *models.NewsletterSubscription) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := n.Email + "-id"
	cp := *n
	cp.ID = id
	m.rows[n.Email] = &cp
	return id, nil
}

type recordingDispatcher struct {
	mu   sync.Mutex
	msgs []notify.Message
	// err, when set, rejects every message.
	err error
}

func (d *recordingDispatcher) Deliver(msg notify.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.msgs = append(d.msgs, msg)
	return nil
}

func (d *recordingDispatcher) recipients() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.msgs))
	for _, m := range d.msgs {
		out = append(out, m.To)
	}
	return out
}

type mockTokens struct {
	IssueFunc func(subject, role string) (string, error)
}

func (m *mockTokens) Issue(subject, role string) (string, error) {
	return m.IssueFunc(subject, role)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
