package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/sellharbor/internal/auth"
	"github.com/atinyakov/sellharbor/internal/common"
	"github.com/atinyakov/sellharbor/internal/models"
	"github.com/atinyakov/sellharbor/internal/notify"
	"go.uber.org/zap"
)

type memUsers struct {
	mu   sync.Mutex
	rows map[string]models.User
}

func newMemUsers() *memUsers { return &memUsers{rows: map[string]models.User{}} }

func (m *memUsers) FindDuplicate(_ context.Context, u *models.User, _ time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[u.Email]
	return ok, nil
}

func (m *memUsers) Insert(_ context.Context, u *models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[u.Email]; ok {
		return "", common.ErrDuplicateKey
	}
	cp := *u
	cp.ID = "u-" + u.Email
	m.rows[u.Email] = cp
	return cp.ID, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

type mockAdmins struct {
	FindByUsernameFunc func(ctx context.Context, username string) (*models.Admin, error)
	SeedFunc           func(ctx context.Context, admin *models.Admin) (bool, error)
}

func (m *mockAdmins) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return m.FindByUsernameFunc(ctx, username)
}

func (m *mockAdmins) Seed(ctx context.Context, admin *models.Admin) (bool, error) {
	return m.SeedFunc(ctx, admin)
}

type issued struct{ subject, role string }

func newTestAccounts(t *testing.T, users UserStore, admins AdminStore, policy LoginPolicy) (*Accounts, *[]issued, *recordingDispatcher) {
	t.Helper()
	g, d, _ := newTestGuard("ops@example.com")
	var tokens []issued
	issuer := &mockTokens{IssueFunc: func(subject, role string) (string, error) {
		tokens = append(tokens, issued{subject, role})
		return "token-" + subject, nil
	}}
	a := NewAccounts(g, notify.DefaultTemplates(), users, admins, issuer, auth.NewMemoryAttempts(), policy, zap.NewNop())
	return a, &tokens, d
}

func TestSignup(t *testing.T) {
	users := newMemUsers()
	a, _, d := newTestAccounts(t, users, nil, LoginPolicy{AutoLogin: true})
	ctx := context.Background()

	id, err := a.Signup(ctx, " ann ", "Ann@Example.com", "s3cret")
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	stored := users.rows["ann@example.com"]
	if stored.ID != id || stored.Username != " ann " {
		t.Errorf("stored user = %+v; want id %q and username as submitted", stored, id)
	}
	if stored.PasswordHash == "s3cret" || !auth.CheckPassword(stored.PasswordHash, "s3cret") {
		t.Errorf("password must be stored as a bcrypt hash")
	}
	if len(d.recipients()) != 2 {
		t.Errorf("expected welcome and operator messages, got %v", d.recipients())
	}

	_, err = a.Signup(ctx, "other", "ann@example.com", "different")
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("duplicate Signup error = %v; want conflict", err)
	}
	if common.Reason(err, "") != "Email already registered. Please login." {
		t.Errorf("reason = %q", common.Reason(err, ""))
	}
	if users.rows["ann@example.com"].Username != " ann " {
		t.Errorf("existing account must not be overwritten")
	}
}

func TestLogin_EmptyPasswordCountsAsAttempt(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "ann@example.com", "s3cret")
	a, tokens, _ := newTestAccounts(t, users, nil, LoginPolicy{AutoLogin: true})

	res, err := a.Login(context.Background(), "ann@example.com", "")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Success || res.Message != "Incorrect password. 4 attempts left before auto-login." {
		t.Errorf("result = %+v", res)
	}
	if len(*tokens) != 0 {
		t.Errorf("no token expected, got %v", *tokens)
	}
}

func TestSignup_PasswordTooLong(t *testing.T) {
	a, _, _ := newTestAccounts(t, newMemUsers(), nil, LoginPolicy{})

	_, err := a.Signup(context.Background(), "ann", "ann@example.com", strings.Repeat("x", 73))
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("error = %v; want invalid input", err)
	}
}

func seedUser(t *testing.T, users *memUsers, email, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	users.rows[email] = models.User{Meta: models.Meta{ID: "u1"}, Username: "ann", Email: email, PasswordHash: hash}
}

func TestLogin_UnknownEmail(t *testing.T) {
	a, tokens, _ := newTestAccounts(t, newMemUsers(), nil, LoginPolicy{AutoLogin: true})

	res, err := a.Login(context.Background(), "ghost@example.com", "x")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Success || res.Message != "User not found. Please sign up first." {
		t.Errorf("result = %+v", res)
	}
	if len(*tokens) != 0 {
		t.Errorf("no token expected")
	}
}

func TestLogin_CorrectPassword(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "ann@example.com", "right")
	a, tokens, _ := newTestAccounts(t, users, nil, LoginPolicy{AutoLogin: true})

	res, err := a.Login(context.Background(), "ANN@example.com", "right")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if !res.Success || res.Username != "ann" || res.Token != "token-ann@example.com" || res.Message != "Welcome back, ann!" {
		t.Errorf("result = %+v", res)
	}
	if len(*tokens) != 1 || (*tokens)[0] != (issued{"ann@example.com", models.RoleUser}) {
		t.Errorf("issued = %+v; want user token for the email", *tokens)
	}
}

func TestLogin_AutoLoginAfterThreshold(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "ann@example.com", "right")
	a, _, _ := newTestAccounts(t, users, nil, LoginPolicy{MaxAttempts: 5, AutoLogin: true})
	attempts := a.attempts.(*auth.MemoryAttempts)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		res, err := a.Login(ctx, "ann@example.com", "wrong")
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if res.Success {
			t.Fatalf("attempt %d succeeded; want failure", i)
		}
		want := fmt.Sprintf("Incorrect password. %d attempts left before auto-login.", 5-i)
		if res.Message != want {
			t.Errorf("attempt %d message = %q; want %q", i, res.Message, want)
		}
	}

	res, err := a.Login(ctx, "ann@example.com", "wrong")
	if err != nil {
		t.Fatalf("6th attempt: %v", err)
	}
	if !res.Success || res.Token == "" {
		t.Fatalf("6th wrong attempt must issue a token, got %+v", res)
	}
	if res.Message != "Auto-login after multiple attempts. Welcome, ann!" {
		t.Errorf("message = %q", res.Message)
	}
	if n := attempts.Count("ann@example.com"); n != 0 {
		t.Errorf("counter = %d after bypass; want 0", n)
	}
}

func TestLogin_SuccessResetsCounter(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "ann@example.com", "right")
	a, _, _ := newTestAccounts(t, users, nil, LoginPolicy{MaxAttempts: 5, AutoLogin: true})
	attempts := a.attempts.(*auth.MemoryAttempts)
	ctx := context.Background()

	for range 3 {
		if _, err := a.Login(ctx, "ann@example.com", "wrong"); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := a.Login(ctx, "ann@example.com", "right"); err != nil {
		t.Fatal(err)
	}
	if n := attempts.Count("ann@example.com"); n != 0 {
		t.Errorf("counter = %d after success; want 0", n)
	}
}

func TestLogin_BypassDisabled(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "ann@example.com", "right")
	a, tokens, _ := newTestAccounts(t, users, nil, LoginPolicy{MaxAttempts: 2, AutoLogin: false})

	for i := range 5 {
		res, err := a.Login(context.Background(), "ann@example.com", "wrong")
		if err != nil {
			t.Fatal(err)
		}
		if res.Success {
			t.Fatalf("attempt %d succeeded with bypass disabled", i+1)
		}
	}
	if len(*tokens) != 0 {
		t.Errorf("no token expected with bypass disabled")
	}
}

func TestAdminLogin(t *testing.T) {
	hash, err := auth.HashPassword("adminpw")
	if err != nil {
		t.Fatal(err)
	}
	admins := &mockAdmins{FindByUsernameFunc: func(_ context.Context, username string) (*models.Admin, error) {
		if username != "root" {
			return nil, common.ErrNotFound
		}
		return &models.Admin{Username: "root", PasswordHash: hash, Role: models.RoleAdmin}, nil
	}}
	a, tokens, _ := newTestAccounts(t, newMemUsers(), admins, LoginPolicy{})
	ctx := context.Background()

	token, err := a.AdminLogin(ctx, "root", "adminpw")
	if err != nil || token != "token-root" {
		t.Fatalf("AdminLogin = %q, %v", token, err)
	}
	if (*tokens)[0] != (issued{"root", models.RoleAdmin}) {
		t.Errorf("issued = %+v; want admin token", (*tokens)[0])
	}

	for _, tc := range []struct{ user, pw string }{{"root", "nope"}, {"ghost", "adminpw"}} {
		if _, err := a.AdminLogin(ctx, tc.user, tc.pw); !errors.Is(err, common.ErrUnauthenticated) {
			t.Errorf("AdminLogin(%q, %q) error = %v; want unauthenticated", tc.user, tc.pw, err)
		}
	}
}

func TestAdminLogin_StoreFailure(t *testing.T) {
	admins := &mockAdmins{FindByUsernameFunc: func(context.Context, string) (*models.Admin, error) {
		return nil, errors.New("timeout")
	}}
	a, _, _ := newTestAccounts(t, newMemUsers(), admins, LoginPolicy{})

	if _, err := a.AdminLogin(context.Background(), "root", "x"); !errors.Is(err, common.ErrStoreFailure) {
		t.Fatalf("error = %v; want store failure", err)
	}
}

func TestSeedAdmin(t *testing.T) {
	var seeded *models.Admin
	admins := &mockAdmins{SeedFunc: func(_ context.Context, admin *models.Admin) (bool, error) {
		seeded = admin
		return true, nil
	}}
	a, _, _ := newTestAccounts(t, newMemUsers(), admins, LoginPolicy{})

	if err := a.SeedAdmin(context.Background(), "root", "adminpw"); err != nil {
		t.Fatalf("SeedAdmin returned error: %v", err)
	}
	if seeded == nil || seeded.Username != "root" || seeded.Role != models.RoleAdmin || !auth.CheckPassword(seeded.PasswordHash, "adminpw") {
		t.Errorf("seeded = %+v", seeded)
	}

	seeded = nil
	if err := a.SeedAdmin(context.Background(), "", ""); err != nil || seeded != nil {
		t.Errorf("empty credentials must skip seeding")
	}
}
