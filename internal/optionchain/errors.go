package optionchain

import (
	"errors"
	"fmt"
)

var (
	// ErrInputMissing is returned when a request carries no export file.
	ErrInputMissing = errors.New("no option chain file provided")

	// ErrSchema is matched by every SchemaError.
	ErrSchema = errors.New("option chain schema error")

	// ErrUnsupportedFormat is returned when no reader exists for an input.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// SchemaError reports an export that cannot be mapped onto the canonical
// schema.
type SchemaError struct {
	Reason  string
	Columns int
}

func (e *SchemaError) Error() string {
	if e.Columns > 0 {
		return fmt.Sprintf("%s (found %d data columns, want %d)", e.Reason, e.Columns, NumFields)
	}
	return e.Reason
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}
