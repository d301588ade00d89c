// Package repository provides PostgreSQL persistence for form submissions,
// user accounts and admin accounts. Every table has a UUID primary key and a
// created_at column; forever-scoped duplicate policies are backed by unique
// indexes (see internal/db/migrations).
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/sellharbor/internal/common"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE raised when a unique index rejects a row.
const uniqueViolation = "23505"

// ErrInvalidID is returned for identifiers that are not UUIDs.
var ErrInvalidID = common.NewInvalidInput("Invalid id")

// parseID validates a client-supplied identifier.
func parseID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return u.String(), nil
}

// writeErr maps a unique violation to common.ErrDuplicateKey and wraps
// everything else with op.
func writeErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, common.ErrDuplicateKey)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// exists runs SELECT EXISTS over table matching every key column to the
// corresponding arg. A non-zero since restricts the match to rows created at
// or after it.
func exists(ctx context.Context, db *sql.DB, table string, keys []string, since time.Time, args ...any) (bool, error) {
	conds := make([]string, 0, len(keys)+1)
	for i, k := range keys {
		conds = append(conds, fmt.Sprintf("%s = $%d", k, i+1))
	}
	if !since.IsZero() {
		args = append(args, since)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s)`, table, strings.Join(conds, " AND "))

	var found bool
	if err := db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("lookup %s: %w", table, err)
	}
	return found, nil
}

// deleteByID removes one row by id, returning common.ErrNotFound when no row
// matched.
func deleteByID(ctx context.Context, db *sql.DB, table, id string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
