package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinyakov/sellharbor/internal/models"
	"github.com/google/uuid"
)

// PostgresNewsletterRepository stores newsletter subscriptions, unique on email.
type PostgresNewsletterRepository struct {
	DB *sql.DB
}

// NewPostgresNewsletterRepository creates a repository over db.
func NewPostgresNewsletterRepository(db *sql.DB) *PostgresNewsletterRepository {
	return &PostgresNewsletterRepository{DB: db}
}

// FindDuplicate reports whether n.Email is already subscribed.
func (r *PostgresNewsletterRepository) FindDuplicate(ctx context.Context, n *models.NewsletterSubscription, since time.Time) (bool, error) {
	return exists(ctx, r.DB, "newsletters", []string{"email"}, since, n.Email)
}

// Insert stores n and returns its new identifier.
func (r *PostgresNewsletterRepository) Insert(ctx context.Context, n *models.NewsletterSubscription) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO newsletters (id, email, created_at) VALUES ($1, $2, $3)
	`, id, n.Email, n.CreatedAt)
	if err != nil {
		return "", writeErr("insert newsletter", err)
	}
	return id, nil
}

// List returns every subscription, oldest first.
func (r *PostgresNewsletterRepository) List(ctx context.Context) ([]models.NewsletterSubscription, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, email, created_at FROM newsletters ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list newsletters: %w", err)
	}
	defer rows.Close()

	out := []models.NewsletterSubscription{}
	for rows.Next() {
		var n models.NewsletterSubscription
		if err := rows.Scan(&n.ID, &n.Email, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Delete removes the subscription with the given id.
func (r *PostgresNewsletterRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, "newsletters", id)
}
