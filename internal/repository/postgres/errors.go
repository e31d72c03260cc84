package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	// Raised when an id is not a valid UUID literal.
	invalidTextRepresentation = "22P02"
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == uniqueViolation
}

// isNotFound reports a missing row, including lookups by an id that cannot exist.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || pqCode(err) == invalidTextRepresentation
}
