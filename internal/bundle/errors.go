package bundle

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes bundle errors.
type ErrorCode string

const (
	// ErrCodeConfiguration indicates a bundle was declared incorrectly.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"

	// ErrCodeAttributeLookup indicates a proxy lookup named no member.
	ErrCodeAttributeLookup ErrorCode = "ATTRIBUTE_LOOKUP_ERROR"
)

// Sentinels for errors.Is matching against an *Error code.
var (
	ErrConfiguration   = errors.New("bundle configuration error")
	ErrAttributeLookup = errors.New("bundle attribute lookup error")
)

// Error is returned for invalid bundle declarations and failed proxy lookups.
// Errors surface immediately to the caller and are never retried.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Bundle is the name of the bundle involved.
	Bundle string

	// Name is the member name or lookup path involved, if any.
	Name string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (bundle=%s, name=%s)", e.Code, e.Message, e.Bundle, e.Name)
	}
	return fmt.Sprintf("%s: %s (bundle=%s)", e.Code, e.Message, e.Bundle)
}

// Is matches the package sentinels by code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Code == ErrCodeConfiguration
	case ErrAttributeLookup:
		return e.Code == ErrCodeAttributeLookup
	}
	return false
}

// IsConfigurationError returns true if the error is a bundle configuration error.
// Uses errors.As to handle wrapped errors.
func IsConfigurationError(err error) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Code == ErrCodeConfiguration
	}
	return false
}

// IsAttributeLookupError returns true if the error is a failed proxy lookup.
// Uses errors.As to handle wrapped errors.
func IsAttributeLookupError(err error) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Code == ErrCodeAttributeLookup
	}
	return false
}

func configError(bundle, name, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeConfiguration,
		Bundle:  bundle,
		Name:    name,
		Message: fmt.Sprintf(format, args...),
	}
}

func lookupError(bundle, name, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeAttributeLookup,
		Bundle:  bundle,
		Name:    name,
		Message: fmt.Sprintf(format, args...),
	}
}
