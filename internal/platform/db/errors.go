package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUniqueViolation is returned by repositories when an insert hits a unique
// constraint. Callers inspect it with errors.Is instead of matching the
// database error text.
var ErrUniqueViolation = errors.New("platform/db: unique constraint violation")

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// error, either raw from pgx or already mapped to ErrUniqueViolation.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrUniqueViolation) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ConstraintName extracts the violated constraint name, if any.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
