package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinyakov/sellharbor/internal/models"
	"github.com/google/uuid"
)

// PostgresPackageRepository stores package inquiries, unique on (email, package).
type PostgresPackageRepository struct {
	DB *sql.DB
}

// NewPostgresPackageRepository creates a repository over db.
func NewPostgresPackageRepository(db *sql.DB) *PostgresPackageRepository {
	return &PostgresPackageRepository{DB: db}
}

// FindDuplicate reports whether p.Email already asked for p.Package.
func (r *PostgresPackageRepository) FindDuplicate(ctx context.Context, p *models.PackageInquiry, since time.Time) (bool, error) {
	return exists(ctx, r.DB, "packages", []string{"email", "package"}, since, p.Email, p.Package)
}

// Insert stores p and returns its new identifier.
func (r *PostgresPackageRepository) Insert(ctx context.Context, p *models.PackageInquiry) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO packages (id, package, price, name, email, company, url, business_type, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, p.Package, p.Price, p.Name, p.Email, p.Company, p.URL, p.BusinessType, p.Notes, p.CreatedAt)
	if err != nil {
		return "", writeErr("insert package", err)
	}
	return id, nil
}

// List returns every package inquiry, oldest first.
func (r *PostgresPackageRepository) List(ctx context.Context) ([]models.PackageInquiry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, package, price, name, email, company, url, business_type, notes, created_at
		FROM packages ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	out := []models.PackageInquiry{}
	for rows.Next() {
		var p models.PackageInquiry
		if err := rows.Scan(&p.ID, &p.Package, &p.Price, &p.Name, &p.Email, &p.Company, &p.URL, &p.BusinessType, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes the package inquiry with the given id.
func (r *PostgresPackageRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, "packages", id)
}
