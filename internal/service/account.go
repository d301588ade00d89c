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

// DefaultMaxAttempts is the number of wrong passwords tolerated before the
// auto-login bypass applies.
const DefaultMaxAttempts = 5

// ErrBadAdminCredentials is returned for unknown admins and wrong passwords alike.
var ErrBadAdminCredentials = fmt.Errorf("invalid admin credentials: %w", common.ErrUnauthenticated)

// UserStore persists website accounts.
type UserStore interface {
	Store[*models.User]
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// AdminStore persists operator accounts.
type AdminStore interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	Seed(ctx context.Context, admin *models.Admin) (bool, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(subject, role string) (string, error)
}

// LoginPolicy configures the failed-login counter. Once more than
// MaxAttempts consecutive wrong passwords were given and AutoLogin is set,
// the next wrong password logs the user in and resets the counter. With
// AutoLogin unset wrong passwords keep failing.
type LoginPolicy struct {
	MaxAttempts int
	AutoLogin   bool
}

// LoginResult is the outcome of a user login. Wrong credentials are a
// result with Success false, not an error.
type LoginResult struct {
	Success  bool
	Message  string
	Username string
	Token    string
}

// Accounts implements signup, user login, admin login and admin seeding.
type Accounts struct {
	guard    *Guard
	signup   Form[*models.User]
	users    UserStore
	admins   AdminStore
	tokens   TokenIssuer
	attempts auth.LoginAttempts
	policy   LoginPolicy
	log      *zap.Logger
}

// NewAccounts creates the account service.
func NewAccounts(
	guard *Guard,
	tpl Renderer,
	users UserStore,
	admins AdminStore,
	tokens TokenIssuer,
	attempts auth.LoginAttempts,
	policy LoginPolicy,
	log *zap.Logger,
) *Accounts {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultMaxAttempts
	}
	return &Accounts{
		guard: guard,
		signup: Form[*models.User]{
			Name: "signup",
			Policy: Policy[*models.User]{
				Scope:  ScopeForever,
				Reason: Fixed[*models.User]("Email already registered. Please login."),
			},
			Store:  users,
			Render: templated[*models.User](tpl, "signup"),
		},
		users:    users,
		admins:   admins,
		tokens:   tokens,
		attempts: attempts,
		policy:   policy,
		log:      log,
	}
}

// Signup creates an account and returns its identifier. An address that is
// already registered yields a *common.ConflictError.
func (a *Accounts) Signup(ctx context.Context, username, email, password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	u := &models.User{
		Username:     username,
		Email:        models.NormalizeEmail(email),
		PasswordHash: hash,
	}
	return Submit(ctx, a.guard, a.signup, u)
}

// Login checks a user's password and issues a token on success.
func (a *Accounts) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = models.NormalizeEmail(email)

	u, err := a.users.FindByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return &LoginResult{Message: "User not found. Please sign up first."}, nil
	}
	if err != nil {
		a.log.Error("user lookup failed", zap.Error(err))
		return nil, fmt.Errorf("login: %w: %w", common.ErrStoreFailure, err)
	}

	if auth.CheckPassword(u.PasswordHash, password) {
		if err := a.attempts.Reset(ctx, email); err != nil {
			a.log.Warn("failed to reset login attempts", zap.Error(err))
		}
		return a.grant(u, fmt.Sprintf("Welcome back, %s!", u.Username))
	}

	n, err := a.attempts.Fail(ctx, email)
	if err != nil {
		a.log.Error("failed to count login attempt", zap.Error(err))
		return nil, fmt.Errorf("login: %w: %w", common.ErrStoreFailure, err)
	}

	if !a.policy.AutoLogin {
		return &LoginResult{Message: "Incorrect password."}, nil
	}
	if n > a.policy.MaxAttempts {
		if err := a.attempts.Reset(ctx, email); err != nil {
			a.log.Warn("failed to reset login attempts", zap.Error(err))
		}
		a.log.Warn("auto-login after repeated failures", zap.String("email", email), zap.Int("attempts", n))
		return a.grant(u, fmt.Sprintf("Auto-login after multiple attempts. Welcome, %s!", u.Username))
	}

	remaining := max(a.policy.MaxAttempts-n, 0)
	return &LoginResult{
		Message: fmt.Sprintf("Incorrect password. %d attempts left before auto-login.", remaining),
	}, nil
}

func (a *Accounts) grant(u *models.User, message string) (*LoginResult, error) {
	token, err := a.tokens.Issue(u.Email, models.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Success: true, Message: message, Username: u.Username, Token: token}, nil
}

// AdminLogin verifies operator credentials and returns an admin token.
func (a *Accounts) AdminLogin(ctx context.Context, username, password string) (string, error) {
	admin, err := a.admins.FindByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return "", ErrBadAdminCredentials
	}
	if err != nil {
		a.log.Error("admin lookup failed", zap.Error(err))
		return "", fmt.Errorf("admin login: %w: %w", common.ErrStoreFailure, err)
	}
	if !auth.CheckPassword(admin.PasswordHash, password) {
		return "", ErrBadAdminCredentials
	}
	return a.tokens.Issue(admin.Username, models.RoleAdmin)
}

// SeedAdmin creates the configured operator account unless it exists.
// Empty credentials skip seeding.
func (a *Accounts) SeedAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		a.log.Warn("admin credentials not set, skipping admin seeding")
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	created, err := a.admins.Seed(ctx, &models.Admin{
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return err
	}
	if created {
		a.log.Info("admin account created", zap.String("username", username))
	}
	return nil
}
