package store

import (
	"context"
	"errors"
	"time"
)

// MaxPasswordLength is the width of the password column, in characters
const MaxPasswordLength = 255

var (
	// ErrUserNotFound is returned when a user ID does not resolve to a user row
	ErrUserNotFound = errors.New("user not found")

	// ErrPasswordTooLong is returned for passwords over MaxPasswordLength
	ErrPasswordTooLong = errors.New("password exceeds 255 characters")
)

// HistoryEntry is one stored password of a user
type HistoryEntry struct {
	ID        int64
	UserID    int64
	Password  string
	CreatedAt time.Time
}

// HistoryStore abstracts password history storage operations
type HistoryStore interface {
	// Transaction runs fn inside a transaction. The provided store is bound
	// to the transaction; if fn returns an error everything is rolled back.
	Transaction(ctx context.Context, fn func(HistoryStore) error) error

	// LockUser takes an exclusive lock on the user for the rest of the
	// transaction. Returns ErrUserNotFound if the user doesn't exist.
	LockUser(ctx context.Context, userID int64) error

	// CountEntries counts the stored entries of a user.
	CountEntries(ctx context.Context, userID int64) (int, error)

	// DeleteOldestEntry deletes the entry with the smallest ID for the user
	// and returns it. Returns nil, nil when the user has no entries.
	DeleteOldestEntry(ctx context.Context, userID int64) (*HistoryEntry, error)

	// InsertEntry stores a new entry and fills in its ID.
	InsertEntry(ctx context.Context, entry *HistoryEntry) error

	// ListEntries returns the entries of a user ordered by ID (oldest first).
	ListEntries(ctx context.Context, userID int64) ([]HistoryEntry, error)

	// DeleteEntries removes every entry of a user and returns how many went.
	DeleteEntries(ctx context.Context, userID int64) (int64, error)
}
