package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinyakov/sellharbor/internal/models"
	"github.com/google/uuid"
)

// PostgresAuditRepository stores audit requests. The duplicate window is a
// query filter only; there is no constraint behind it.
type PostgresAuditRepository struct {
	DB *sql.DB
}

// NewPostgresAuditRepository creates a repository over db.
func NewPostgresAuditRepository(db *sql.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{DB: db}
}

// FindDuplicate reports whether (email, producturl) was requested at or after since.
func (r *PostgresAuditRepository) FindDuplicate(ctx context.Context, a *models.AuditRequest, since time.Time) (bool, error) {
	return exists(ctx, r.DB, "audits", []string{"email", "producturl"}, since, a.Email, a.ProductURL)
}

// Insert stores a and returns its new identifier.
func (r *PostgresAuditRepository) Insert(ctx context.Context, a *models.AuditRequest) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO audits (id, firstname, lastname, email, brandname, producturl, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id, a.Firstname, a.Lastname, a.Email, a.Brandname, a.ProductURL, a.Message, a.CreatedAt)
	if err != nil {
		return "", writeErr("insert audit", err)
	}
	return id, nil
}

// List returns every audit request, oldest first.
func (r *PostgresAuditRepository) List(ctx context.Context) ([]models.AuditRequest, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, firstname, lastname, email, brandname, producturl, message, created_at
		FROM audits ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()

	out := []models.AuditRequest{}
	for rows.Next() {
		var a models.AuditRequest
		if err := rows.Scan(&a.ID, &a.Firstname, &a.Lastname, &a.Email, &a.Brandname, &a.ProductURL, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes the audit request with the given id.
func (r *PostgresAuditRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, "audits", id)
}
