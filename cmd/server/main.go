// Package main initializes and starts the website backend, setting up
// configuration, logging, stores, notifications, services, handlers and
// the HTTP server.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/sellharbor/internal/auth"
	"github.com/atinyakov/sellharbor/internal/config"
	"github.com/atinyakov/sellharbor/internal/logger"
	"github.com/atinyakov/sellharbor/internal/notify"
	"github.com/atinyakov/sellharbor/internal/server/handler/http"
	"github.com/atinyakov/sellharbor/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse .env, command-line, file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the configured record store.
	st, err := openStores(ctx, options, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init store", zap.String("driver", options.StoreDriver), zap.Error(err))
	}
	defer func() { _ = st.close(context.Background()) }()

	// Failed-login counters live in redis when configured so every
	// instance sees the same count.
	var attempts auth.LoginAttempts = auth.NewMemoryAttempts()
	if options.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: options.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zapLogger.Fatal("cannot reach redis", zap.String("addr", options.RedisAddr), zap.Error(err))
		}
		attempts = auth.NewRedisAttempts(rdb)
	}

	tokens, err := auth.NewTokenIssuer(options.SecretKey, options.Algorithm,
		time.Duration(options.TokenTTLMinutes)*time.Minute)
	if err != nil {
		zapLogger.Fatal("cannot init token issuer", zap.Error(err))
	}

	// Start the email dispatcher.
	sender := notify.NewSMTPSender(notify.SMTPConfig{
		Host:     options.MailHost,
		Port:     options.MailPort,
		Username: options.MailUsername,
		Password: options.MailPassword,
		From:     options.MailFrom,
	}, zapLogger)
	notifier := notify.New(sender, zapLogger, notify.Options{
		QueueSize: options.NotifyQueueSize,
		Workers:   options.NotifyWorkers,
	})
	notifier.Start()

	// Initialize business-logic services.
	templates := notify.DefaultTemplates()
	guard := service.NewGuard(notifier, options.AdminEmail, zapLogger)
	forms := service.NewForms(guard, templates, st.forms)
	accounts := service.NewAccounts(guard, templates, st.users, st.admins, tokens, attempts,
		service.LoginPolicy{MaxAttempts: options.LoginMaxAttempts, AutoLogin: options.LoginAutoLogin},
		zapLogger,
	)
	if err := accounts.SeedAdmin(ctx, options.AdminUsername, options.AdminPassword); err != nil {
		zapLogger.Fatal("cannot seed admin account", zap.Error(err))
	}
	admin := service.NewAdmin(st.panel, zapLogger)

	// Build the router with middleware and routes.
	router := http.NewRouter(
		&http.FormHandler{Forms: forms, Log: zapLogger},
		&http.AccountHandler{Accounts: accounts, Log: zapLogger},
		&http.AdminHandler{Admin: admin, Log: zapLogger},
		tokens,
		options.AllowedOrigins,
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:              options.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.TLSCert != "" && options.TLSKey != "" {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Address))
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown", zap.Error(err))
	}
	if err := notifier.Shutdown(shutdownCtx); err != nil {
		zapLogger.Warn("pending emails dropped", zap.Error(err))
	}
}
