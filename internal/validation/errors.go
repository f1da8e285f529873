// Package validation holds the input rules shared by several modules:
// RUT check digits, date and time ranges, and upload allow-lists.
// Every failure is reported as field-attributed Errors.
package validation

import (
	"strings"

	pkgerrors "intranet-cesfam/backend/pkg/errors"
)

// FieldError one invalid field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collected field errors; matches pkgerrors.ErrValidation under errors.Is.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the error kind
func (e Errors) Unwrap() error { return pkgerrors.ErrValidation }

// Add appends a field error
func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Err returns nil when nothing was collected.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Has reports whether field already failed.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Field single-field error
func Field(field, message string) error {
	return Errors{{Field: field, Message: message}}
}
