// Package service holds the business logic behind every endpoint: the
// submission guard shared by all website forms, account signup and login,
// and the admin panel operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/sellharbor/internal/common"
	"github.com/atinyakov/sellharbor/internal/models"
	"github.com/atinyakov/sellharbor/internal/notify"
	"go.uber.org/zap"
)

// Scope selects how a duplicate policy looks for earlier submissions.
type Scope int

const (
	// ScopeNone accepts every submission.
	ScopeNone Scope = iota
	// ScopeForever rejects a submission whose key was ever seen.
	ScopeForever
	// ScopeWindow rejects a submission whose key was seen within Policy.Window.
	ScopeWindow
)

// Policy describes when a submission counts as a duplicate and what the
// caller is told when it does.
type Policy[T any] struct {
	Scope  Scope
	Window time.Duration
	Reason func(doc T) string
}

// Fixed returns a Reason that ignores the document.
func Fixed[T any](reason string) func(T) string {
	return func(T) string { return reason }
}

// Store is the persistence a form needs. since is zero for unbounded lookups.
type Store[T any] interface {
	FindDuplicate(ctx context.Context, doc T, since time.Time) (bool, error)
	Insert(ctx context.Context, doc T) (string, error)
}

// Form binds a record type to its policy, store and notifications.
type Form[T models.Document] struct {
	Name   string
	Policy Policy[T]
	Store  Store[T]
	// Render builds the submitter and operator messages for an accepted
	// record. It may be nil.
	Render func(doc T, operator string, now time.Time) ([]notify.Message, error)
}

// Dispatcher accepts messages for asynchronous delivery.
type Dispatcher interface {
	Deliver(msg notify.Message) error
}

// Guard runs the check, insert and notify sequence for every form.
type Guard struct {
	dispatch Dispatcher
	operator string
	now      func() time.Time
	log      *zap.Logger
}

// NewGuard creates a Guard. operator is the address that receives the
// internal notification of every submission; empty disables it.
func NewGuard(dispatch Dispatcher, operator string, log *zap.Logger) *Guard {
	return &Guard{
		dispatch: dispatch,
		operator: operator,
		now:      time.Now,
		log:      log,
	}
}

// Submit accepts doc under the rules of form and returns its identifier.
// A duplicate, whether found by the lookup or rejected by a unique index,
// yields a *common.ConflictError. Notifications are queued after the insert
// and never affect the result.
func Submit[T models.Document](ctx context.Context, g *Guard, form Form[T], doc T) (string, error) {
	now := g.now().UTC()

	if form.Policy.Scope != ScopeNone {
		var since time.Time
		if form.Policy.Scope == ScopeWindow {
			since = now.Add(-form.Policy.Window)
		}
		dup, err := form.Store.FindDuplicate(ctx, doc, since)
		if err != nil {
			g.log.Error("duplicate lookup failed", zap.String("form", form.Name), zap.Error(err))
			return "", fmt.Errorf("%s lookup: %w: %w", form.Name, common.ErrStoreFailure, err)
		}
		if dup {
			return "", form.Policy.conflict(doc)
		}
	}

	doc.Stamp(now)
	id, err := form.Store.Insert(ctx, doc)
	if errors.Is(err, common.ErrDuplicateKey) {
		return "", form.Policy.conflict(doc)
	}
	if err != nil {
		g.log.Error("insert failed", zap.String("form", form.Name), zap.Error(err))
		return "", fmt.Errorf("%s insert: %w: %w", form.Name, common.ErrStoreFailure, err)
	}
	doc.SetID(id)

	if form.Render != nil {
		msgs, err := form.Render(doc, g.operator, now)
		if err != nil {
			g.log.Error("failed to render notification", zap.String("form", form.Name), zap.Error(err))
		}
		for _, msg := range msgs {
			if msg.To == "" {
				continue
			}
			if err := g.dispatch.Deliver(msg); err != nil {
				g.log.Debug("notification dropped",
					zap.String("form", form.Name),
					zap.String("to", msg.To),
					zap.Error(err),
				)
			}
		}
	}
	return id, nil
}

func (p Policy[T]) conflict(doc T) error {
	if p.Reason == nil {
		return common.NewConflict("Duplicate submission")
	}
	return common.NewConflict(p.Reason(doc))
}
