package db

import (
	"database/sql"
	"strings"

	"datacore/internal/errors"
)

// notFound maps sql.ErrNoRows to a typed not-found error
func notFound(err error, resource, id string) error {
	if err == sql.ErrNoRows {
		return errors.NotFound(resource, id)
	}
	return errors.Storage("query failed", err)
}

// isConstraintViolation reports whether err is a SQLite constraint error
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "constraint")
}
