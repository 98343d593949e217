// Package validation wraps go-playground/validator with a singleton
// instance and translation of failures into field-scoped messages keyed by
// the json field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report errors under the wire field name, not the Go field name.
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateStruct validates a request payload and returns one message per
// failing field, keyed by json name. Nil when the payload is valid.
func ValidateStruct(s any) map[string]string {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"detail": "invalid request"}
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fieldError := range validationErrors {
		fields[fieldError.Field()] = message(fieldError)
	}
	return fields
}

func message(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "must not be empty"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fieldError.Param())
	case "min":
		return fmt.Sprintf("must be %s or greater", fieldError.Param())
	default:
		return fmt.Sprintf("failed %s validation", fieldError.Tag())
	}
}
