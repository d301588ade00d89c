package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/sellharbor/internal/common"
	"github.com/atinyakov/sellharbor/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store groups the collections of one database.
type Store struct {
	Contacts    *Collection[models.ContactRequest]
	Newsletters *Collection[models.NewsletterSubscription]
	Audits      *Collection[models.AuditRequest]
	Meetings    *Collection[models.MeetingBooking]
	Packages    *Collection[models.PackageInquiry]
	Users       *Users
	Admins      *Admins
}

// New builds a Store over db. Duplicate keys match the unique indexes
// created by db.InitMongo.
func New(db *mongo.Database) *Store {
	return &Store{
		Contacts: NewCollection[models.ContactRequest](db, "contacts", nil),
		Newsletters: NewCollection(db, "newsletters", func(n *models.NewsletterSubscription) bson.D {
			return bson.D{{Key: "email", Value: n.Email}}
		}),
		Audits: NewCollection(db, "audits", func(a *models.AuditRequest) bson.D {
			return bson.D{{Key: "email", Value: a.Email}, {Key: "producturl", Value: a.ProductURL}}
		}),
		Meetings: NewCollection(db, "meetings", func(m *models.MeetingBooking) bson.D {
			return bson.D{{Key: "email", Value: m.Email}, {Key: "date", Value: m.Date}}
		}),
		Packages: NewCollection(db, "packages", func(p *models.PackageInquiry) bson.D {
			return bson.D{{Key: "email", Value: p.Email}, {Key: "package", Value: p.Package}}
		}),
		Users:  NewUsers(db),
		Admins: NewAdmins(db),
	}
}

// Users is the users collection with account lookups and partial updates.
type Users struct {
	*Collection[models.User]
}

// NewUsers wraps the users collection of db.
func NewUsers(db *mongo.Database) *Users {
	return &Users{NewCollection(db, "users", func(u *models.User) bson.D {
		return bson.D{{Key: "email", Value: u.Email}}
	})}
}

// FindByEmail returns the account registered with email, or common.ErrNotFound.
func (u *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := u.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Update applies the non-nil fields of upd and returns the updated account.
func (u *Users) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	set := bson.D{}
	if upd.Username != nil {
		set = append(set, bson.E{Key: "username", Value: *upd.Username})
	}
	if upd.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *upd.Email})
	}
	if upd.PasswordHash != nil {
		set = append(set, bson.E{Key: "password", Value: *upd.PasswordHash})
	}
	if len(set) == 0 {
		return nil, common.NewInvalidInput("Nothing to update")
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = u.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, writeErr("update user", err)
	}
	return &user, nil
}

// Admins is the admins collection.
type Admins struct {
	coll *mongo.Collection
}

// NewAdmins wraps the admins collection of db.
func NewAdmins(db *mongo.Database) *Admins {
	return &Admins{coll: db.Collection("admins")}
}

// FindByUsername returns the admin with username, or common.ErrNotFound.
func (a *Admins) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := a.coll.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &admin, nil
}

// Seed inserts admin unless one with the same username exists, and reports
// whether a document was created.
func (a *Admins) Seed(ctx context.Context, admin *models.Admin) (bool, error) {
	res, err := a.coll.UpdateOne(ctx,
		bson.D{{Key: "username", Value: admin.Username}},
		bson.D{{Key: "$setOnInsert", Value: bson.D{
			{Key: "username", Value: admin.Username},
			{Key: "password", Value: admin.PasswordHash},
			{Key: "role", Value: admin.Role},
		}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return res.UpsertedCount > 0, nil
}
