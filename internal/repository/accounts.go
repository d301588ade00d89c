package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/sellharbor/internal/common"
	"github.com/atinyakov/sellharbor/internal/models"
	"github.com/google/uuid"
)

// PostgresUserRepository stores website accounts, unique on email.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// FindDuplicate reports whether an account with u.Email exists.
func (r *PostgresUserRepository) FindDuplicate(ctx context.Context, u *models.User, since time.Time) (bool, error) {
	return exists(ctx, r.DB, "users", []string{"email"}, since, u.Email)
}

// Insert stores u and returns its new identifier.
func (r *PostgresUserRepository) Insert(ctx context.Context, u *models.User) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return "", writeErr("insert user", err)
	}
	return id, nil
}

// FindByEmail returns the account registered with email, or common.ErrNotFound.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password, created_at FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// List returns every account, oldest first. Password hashes are not loaded.
func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, username, email, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update applies the non-nil fields of upd to the account with the given id
// and returns the updated row.
func (r *PostgresUserRepository) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var (
		sets []string
		args []any
	)
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("username", upd.Username)
	add("email", upd.Email)
	add("password", upd.PasswordHash)
	if len(sets) == 0 {
		return nil, common.NewInvalidInput("Nothing to update")
	}
	args = append(args, key)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING id, username, email, created_at`,
		strings.Join(sets, ", "), len(args))

	var u models.User
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, writeErr("update user", err)
	}
	return &u, nil
}

// Delete removes the account with the given id.
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, "users", id)
}

// PostgresAdminRepository stores operator accounts, unique on username.
type PostgresAdminRepository struct {
	DB *sql.DB
}

// NewPostgresAdminRepository creates a repository over db.
func NewPostgresAdminRepository(db *sql.DB) *PostgresAdminRepository {
	return &PostgresAdminRepository{DB: db}
}

// FindByUsername returns the admin with username, or common.ErrNotFound.
func (r *PostgresAdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var a models.Admin
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password, role FROM admins WHERE username = $1
	`, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &a, nil
}

// Seed inserts a unless an admin with the same username exists. The ON
// CONFLICT DO NOTHING clause makes concurrent seeding safe. It reports
// whether a row was created.
func (r *PostgresAdminRepository) Seed(ctx context.Context, a *models.Admin) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO admins (id, username, password, role) VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO NOTHING
	`, uuid.NewString(), a.Username, a.PasswordHash, a.Role)
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return n > 0, nil
}
