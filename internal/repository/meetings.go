package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinyakov/sellharbor/internal/models"
	"github.com/google/uuid"
)

// PostgresMeetingRepository stores meeting bookings, unique on (email, date).
type PostgresMeetingRepository struct {
	DB *sql.DB
}

// NewPostgresMeetingRepository creates a repository over db.
func NewPostgresMeetingRepository(db *sql.DB) *PostgresMeetingRepository {
	return &PostgresMeetingRepository{DB: db}
}

// FindDuplicate reports whether m.Email already booked m.Date.
func (r *PostgresMeetingRepository) FindDuplicate(ctx context.Context, m *models.MeetingBooking, since time.Time) (bool, error) {
	return exists(ctx, r.DB, "meetings", []string{"email", "date"}, since, m.Email, m.Date)
}

// Insert stores m and returns its new identifier.
func (r *PostgresMeetingRepository) Insert(ctx context.Context, m *models.MeetingBooking) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO meetings (id, name, email, agenda, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, m.Name, m.Email, m.Agenda, m.Date, m.CreatedAt)
	if err != nil {
		return "", writeErr("insert meeting", err)
	}
	return id, nil
}

// List returns every booking, oldest first.
func (r *PostgresMeetingRepository) List(ctx context.Context) ([]models.MeetingBooking, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, email, agenda, date, created_at FROM meetings ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	out := []models.MeetingBooking{}
	for rows.Next() {
		var m models.MeetingBooking
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Agenda, &m.Date, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Delete removes the booking with the given id.
func (r *PostgresMeetingRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, "meetings", id)
}
