package services

import (
	"errors"
	"sort"
	"strings"
)

// ErrForbidden is returned when a user attempts to mutate a recipe they do
// not own.
var ErrForbidden = errors.New("forbidden")

// FieldErrors is a validation failure keyed by the offending field.
// Handlers serialize it verbatim as the 400 response body.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// AsFieldErrors unwraps err into FieldErrors if it is one.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fieldErrors FieldErrors
	if errors.As(err, &fieldErrors) {
		return fieldErrors, true
	}
	return nil, false
}
