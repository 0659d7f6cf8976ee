package store

import (
	"context"
	"errors"
)

// ErrExpiryNotFound is returned when a user has no expiry record
var ErrExpiryNotFound = errors.New("password expiry not found")

// Expiry is the password expiry record of a user
type Expiry struct {
	UserID     int64
	ExpiryDays int
}

// ExpiryStore abstracts password expiry storage operations
type ExpiryStore interface {
	// UpsertExpiry creates or replaces the expiry record of a user.
	// Returns ErrUserNotFound if the user doesn't exist.
	UpsertExpiry(ctx context.Context, userID int64, days int) error

	// FetchExpiry retrieves the expiry record of a user.
	// Returns ErrExpiryNotFound if there is none.
	FetchExpiry(ctx context.Context, userID int64) (*Expiry, error)

	// DeleteExpiry removes the expiry record of a user, if any.
	DeleteExpiry(ctx context.Context, userID int64) error
}
