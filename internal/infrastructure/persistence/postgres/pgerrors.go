package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// classifyUniqueViolation maps a Postgres unique violation to the logical
// field it protects. Constraint names are stable in the schema; substring
// matching is the fallback for renamed constraints.
func classifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}
	c := strings.ToLower(pgErr.ConstraintName)
	switch c {
	case "uq_users_username_lower":
		return "username", true
	case "uq_users_email_lower":
		return "email", true
	case "follows_pkey":
		return "follow", true
	default:
		switch {
		case strings.Contains(c, "username"):
			return "username", true
		case strings.Contains(c, "email"):
			return "email", true
		case strings.Contains(c, "follow"):
			return "follow", true
		}
		return "", true
	}
}

// isForeignKeyViolation reports whether err is a Postgres FK violation,
// meaning a referenced user row does not exist.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23503" // foreign_key_violation
}
