package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	// Import failure taxonomy.
	ErrIO      = errors.New("io error")
	ErrArchive = errors.New("archive error")
	ErrSchema  = errors.New("schema error")
	ErrStore   = errors.New("store error")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return fmt.Sprintf("validation: %d errors (%s)", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// SchemaError reports malformed JSON or a violated structural constraint in
// one of the archive's documents. Row is 1-based; zero means the error is not
// tied to a single row.
type SchemaError struct {
	File    string
	Row     int
	Field   string
	Message string
	Err     error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema")
	if e.File != "" {
		b.WriteString(": ")
		b.WriteString(e.File)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *SchemaError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSchema}
	}
	return []error{ErrSchema, e.Err}
}

// NewSchemaError creates a SchemaError that is not yet tied to a file.
func NewSchemaError(field, message string) *SchemaError {
	return &SchemaError{Field: field, Message: message}
}

// InFile returns a copy of err attributed to file and row. Non-schema errors
// are wrapped into a new SchemaError.
func InFile(err error, file string, row int) error {
	if err == nil {
		return nil
	}
	var se *SchemaError
	if errors.As(err, &se) {
		cp := *se
		cp.File = file
		if row > 0 {
			cp.Row = row
		}
		return &cp
	}
	var ve *ValidationError
	field := ""
	if errors.As(err, &ve) && len(ve.Errors) > 0 {
		field = ve.Errors[0].Field
	}
	return &SchemaError{File: file, Row: row, Field: field, Err: err}
}
