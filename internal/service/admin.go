package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/sellharbor/internal/auth"
	"github.com/atinyakov/sellharbor/internal/common"
	"github.com/atinyakov/sellharbor/internal/models"
	"go.uber.org/zap"
)

// Collection is a listable, deletable set of records.
type Collection[E any] interface {
	List(ctx context.Context) ([]E, error)
	Delete(ctx context.Context, id string) error
}

// UserDirectory is the user collection as the admin panel sees it.
type UserDirectory interface {
	Collection[models.User]
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
}

// AdminStores are the collections exposed in the admin panel.
type AdminStores struct {
	Users       UserDirectory
	Contacts    Collection[models.ContactRequest]
	Newsletters Collection[models.NewsletterSubscription]
	Audits      Collection[models.AuditRequest]
	Meetings    Collection[models.MeetingBooking]
	Packages    Collection[models.PackageInquiry]
}

// Admin implements the admin panel operations. Callers are expected to have
// checked the admin token already.
type Admin struct {
	stores AdminStores
	log    *zap.Logger
}

// NewAdmin creates the admin service.
func NewAdmin(stores AdminStores, log *zap.Logger) *Admin {
	return &Admin{stores: stores, log: log}
}

// UserPatch is a partial user update as received from the panel.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
}

// ListUsers returns every website account.
func (a *Admin) ListUsers(ctx context.Context) ([]models.User, error) {
	return list(ctx, a, "users", a.stores.Users)
}

// ListContacts returns every contact request.
func (a *Admin) ListContacts(ctx context.Context) ([]models.ContactRequest, error) {
	return list(ctx, a, "contacts", a.stores.Contacts)
}

// ListNewsletters returns every newsletter subscription.
func (a *Admin) ListNewsletters(ctx context.Context) ([]models.NewsletterSubscription, error) {
	return list(ctx, a, "newsletters", a.stores.Newsletters)
}

// ListAudits returns every audit request.
func (a *Admin) ListAudits(ctx context.Context) ([]models.AuditRequest, error) {
	return list(ctx, a, "audits", a.stores.Audits)
}

// ListMeetings returns every meeting booking.
func (a *Admin) ListMeetings(ctx context.Context) ([]models.MeetingBooking, error) {
	return list(ctx, a, "meetings", a.stores.Meetings)
}

// ListPackages returns every package inquiry.
func (a *Admin) ListPackages(ctx context.Context) ([]models.PackageInquiry, error) {
	return list(ctx, a, "packages", a.stores.Packages)
}

// Delete removes the record id from the named collection.
func (a *Admin) Delete(ctx context.Context, collection, id string) error {
	var err error
	switch collection {
	case "users":
		err = a.stores.Users.Delete(ctx, id)
	case "contacts":
		err = a.stores.Contacts.Delete(ctx, id)
	case "newsletters":
		err = a.stores.Newsletters.Delete(ctx, id)
	case "audits":
		err = a.stores.Audits.Delete(ctx, id)
	case "meetings":
		err = a.stores.Meetings.Delete(ctx, id)
	case "packages":
		err = a.stores.Packages.Delete(ctx, id)
	default:
		return common.ErrNotFound
	}
	return a.storeErr("delete "+collection, err)
}

// UpdateUser applies patch to user id. The password is re-hashed and the
// email normalized. Taking another account's email is a conflict.
func (a *Admin) UpdateUser(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	var upd models.UserUpdate
	if patch.Username != nil {
		upd.Username = patch.Username
	}
	if patch.Email != nil {
		email := models.NormalizeEmail(*patch.Email)
		upd.Email = &email
	}
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}
	if upd.Empty() {
		return nil, common.NewInvalidInput("Nothing to update")
	}

	u, err := a.stores.Users.Update(ctx, id, upd)
	if errors.Is(err, common.ErrDuplicateKey) {
		return nil, common.NewConflict("Email already in use")
	}
	if err != nil {
		return nil, a.storeErr("update user", err)
	}
	return u, nil
}

// storeErr passes taxonomy errors through and marks everything else as a
// store failure.
func (a *Admin) storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrInvalidInput) {
		return err
	}
	a.log.Error("admin operation failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w: %w", op, common.ErrStoreFailure, err)
}

func list[E any](ctx context.Context, a *Admin, name string, c Collection[E]) ([]E, error) {
	out, err := c.List(ctx)
	if err != nil {
		return nil, a.storeErr("list "+name, err)
	}
	return out, nil
}
