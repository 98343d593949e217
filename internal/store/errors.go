package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when an insert hits a uniqueness constraint.
// The database constraint is the final arbiter for concurrent duplicates.
var ErrAlreadyExists = errors.New("already exists")

const uniqueViolationCode = "23505"

func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return ErrAlreadyExists
	}
	return err
}
