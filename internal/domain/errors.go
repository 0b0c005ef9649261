package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownProduct is returned for a request whose product is not supported.
var ErrUnknownProduct = errors.New("unknown product")

// ErrMalformedRequest is returned when a request payload cannot be decoded.
var ErrMalformedRequest = errors.New("malformed request")

// ConfigurationError reports a required column that is absent from an entire
// input table. A run that hits it is aborted rather than scored on partial
// columns.
type ConfigurationError struct {
	Table string
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: required field %q is missing from every row", e.Table, e.Field)
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
