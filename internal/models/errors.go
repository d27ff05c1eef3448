package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRepository is returned for identifiers outside the allow-list
var ErrUnknownRepository = errors.New("unknown repository")

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrInvalidRepository ErrorType = iota
	ErrFetch
	ErrMalformedRecord
	ErrSinkWrite
	ErrInvalidConfig
	ErrSigning
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrInvalidRepository:
		return "InvalidRepository"
	case ErrFetch:
		return "Fetch"
	case ErrMalformedRecord:
		return "MalformedRecord"
	case ErrSinkWrite:
		return "SinkWrite"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrSigning:
		return "Signing"
	default:
		return "Unknown"
	}
}

// CompareError represents an error during a repository comparison
type CompareError struct {
	Type         ErrorType
	Repository   string
	Architecture string
	Algorithm    string
	Err          error
}

// Error implements the error interface
func (e *CompareError) Error() string {
	var scope []string
	for _, part := range []string{e.Repository, e.Architecture, e.Algorithm} {
		if part != "" {
			scope = append(scope, part)
		}
	}
	if len(scope) > 0 {
		return fmt.Sprintf("[%s] %s: %v", e.Type, strings.Join(scope, "/"), e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *CompareError) Unwrap() error {
	return e.Err
}

// IsErrorType reports whether err carries a CompareError of the given type
func IsErrorType(err error, t ErrorType) bool {
	var ce *CompareError
	return errors.As(err, &ce) && ce.Type == t
}
