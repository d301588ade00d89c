package main

import (
	"context"

	"github.com/atinyakov/sellharbor/internal/config"
	"github.com/atinyakov/sellharbor/internal/db"
	"github.com/atinyakov/sellharbor/internal/repository"
	"github.com/atinyakov/sellharbor/internal/repository/mongostore"
	"github.com/atinyakov/sellharbor/internal/service"
	"go.uber.org/zap"
)

type userRepo interface {
	service.UserStore
	service.UserDirectory
}

// stores is the record backend selected by configuration.
type stores struct {
	forms  service.FormStores
	panel  service.AdminStores
	users  userRepo
	admins service.AdminStore
	close  func(context.Context) error
}

func openStores(ctx context.Context, options *config.Options, log *zap.Logger) (*stores, error) {
	switch options.StoreDriver {
	case "mongo":
		return openMongo(ctx, options, log)
	default:
		return openPostgres(ctx, options, log)
	}
}

func openPostgres(ctx context.Context, options *config.Options, log *zap.Logger) (*stores, error) {
	pg, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	log.Info("connected to postgres")

	contacts := repository.NewPostgresContactRepository(pg)
	newsletters := repository.NewPostgresNewsletterRepository(pg)
	audits := repository.NewPostgresAuditRepository(pg)
	meetings := repository.NewPostgresMeetingRepository(pg)
	packages := repository.NewPostgresPackageRepository(pg)
	users := repository.NewPostgresUserRepository(pg)

	return &stores{
		forms: service.FormStores{
			Contacts:    contacts,
			Newsletters: newsletters,
			Audits:      audits,
			Meetings:    meetings,
			Packages:    packages,
		},
		panel: service.AdminStores{
			Users:       users,
			Contacts:    contacts,
			Newsletters: newsletters,
			Audits:      audits,
			Meetings:    meetings,
			Packages:    packages,
		},
		users:  users,
		admins: repository.NewPostgresAdminRepository(pg),
		close:  func(context.Context) error { return pg.Close() },
	}, nil
}

func openMongo(ctx context.Context, options *config.Options, log *zap.Logger) (*stores, error) {
	client, database, err := db.InitMongo(ctx, options.MongoURI, options.DBName)
	if err != nil {
		return nil, err
	}
	log.Info("connected to mongo", zap.String("db", options.DBName))

	s := mongostore.New(database)
	return &stores{
		forms: service.FormStores{
			Contacts:    s.Contacts,
			Newsletters: s.Newsletters,
			Audits:      s.Audits,
			Meetings:    s.Meetings,
			Packages:    s.Packages,
		},
		panel: service.AdminStores{
			Users:       s.Users,
			Contacts:    s.Contacts,
			Newsletters: s.Newsletters,
			Audits:      s.Audits,
			Meetings:    s.Meetings,
			Packages:    s.Packages,
		},
		users:  s.Users,
		admins: s.Admins,
		close:  client.Disconnect,
	}, nil
}
