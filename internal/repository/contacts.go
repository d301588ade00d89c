package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinyakov/sellharbor/internal/models"
	"github.com/google/uuid"
)

// PostgresContactRepository stores contact form messages.
type PostgresContactRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresContactRepository creates a repository over db.
func NewPostgresContactRepository(db *sql.DB) *PostgresContactRepository {
	return &PostgresContactRepository{DB: db}
}

// Insert stores c and returns its new identifier.
func (r *PostgresContactRepository) Insert(ctx context.Context, c *models.ContactRequest) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO contacts (id, firstname, email, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, c.Firstname, c.Email, c.Subject, c.Message, c.CreatedAt)
	if err != nil {
		return "", writeErr("insert contact", err)
	}
	return id, nil
}

// List returns every contact request, oldest first.
func (r *PostgresContactRepository) List(ctx context.Context) ([]models.ContactRequest, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, firstname, email, subject, message, created_at FROM contacts ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := []models.ContactRequest{}
	for rows.Next() {
		var c models.ContactRequest
		if err := rows.Scan(&c.ID, &c.Firstname, &c.Email, &c.Subject, &c.Message, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes the contact request with the given id.
func (r *PostgresContactRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, "contacts", id)
}

// FindDuplicate always reports false; contact requests carry no duplicate policy.
func (r *PostgresContactRepository) FindDuplicate(context.Context, *models.ContactRequest, time.Time) (bool, error) {
	return false, nil
}
