package gorm

import (
	"errors"

	"github.com/jackc/pgconn"
)

// PostgreSQL SQLSTATE codes mapped to store errors
const (
	foreignKeyViolation       = "23503"
	stringDataRightTruncation = "22001"
)

func isForeignKeyViolation(err error) bool {
	return hasCode(err, foreignKeyViolation)
}

func isValueTooLong(err error) bool {
	return hasCode(err, stringDataRightTruncation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
