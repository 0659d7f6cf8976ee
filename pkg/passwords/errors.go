package passwords

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigurationError
	ErrConfiguration = errors.New("configuration error")

	// ErrReference matches every *ReferenceError
	ErrReference = errors.New("reference error")

	// ErrEmptyPassword is returned when the encrypted password is empty
	ErrEmptyPassword = errors.New("encrypted password must not be empty")

	// ErrNegativeExpiry is returned when expiry days are below zero
	ErrNegativeExpiry = errors.New("expiry days must not be negative")
)

// ConfigurationError reports a missing or invalid setting
type ConfigurationError struct {
	Setting string
	Value   string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("configuration error: %s is not set: %s", e.Setting, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s=%s: %s", e.Setting, e.Value, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ReferenceError reports a user ID that does not resolve to a user
type ReferenceError struct {
	UserID int64
	Err    error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("user %d: %v", e.UserID, e.Err)
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}

func (e *ReferenceError) Is(target error) bool {
	return target == ErrReference
}
