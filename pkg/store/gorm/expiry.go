package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/model"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/store"
)

// Ensure ExpiryStore implements store.ExpiryStore
var _ store.ExpiryStore = (*ExpiryStore)(nil)

// ExpiryStore implements store.ExpiryStore using GORM
type ExpiryStore struct {
	db *gorm.DB
}

// NewExpiryStore creates a new ExpiryStore
func NewExpiryStore(db *gorm.DB) *ExpiryStore {
	return &ExpiryStore{db: db}
}

// UpsertExpiry creates or replaces the expiry record of a user.
func (s *ExpiryStore) UpsertExpiry(ctx context.Context, userID int64, days int) error {
	// Single statement so concurrent upserts for one user can't interleave
	err := s.db.WithContext(ctx).Exec(`
		INSERT INTO password_expiry (user_id, expiry_days) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET expiry_days = EXCLUDED.expiry_days
	`, userID, days).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrUserNotFound
		}
		return fmt.Errorf("failed to save password expiry: %w", err)
	}
	return nil
}

// FetchExpiry retrieves the expiry record of a user.
func (s *ExpiryStore) FetchExpiry(ctx context.Context, userID int64) (*store.Expiry, error) {
	var rows []model.PasswordExpiry
	tx := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows)
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to fetch password expiry: %w", tx.Error)
	}
	if len(rows) == 0 {
		return nil, store.ErrExpiryNotFound
	}
	return &store.Expiry{
		UserID:     rows[0].UserID,
		ExpiryDays: rows[0].ExpiryDays,
	}, nil
}

// DeleteExpiry removes the expiry record of a user, if any.
func (s *ExpiryStore) DeleteExpiry(ctx context.Context, userID int64) error {
	if err := s.db.WithContext(ctx).Exec(`DELETE FROM password_expiry WHERE user_id = ?`, userID).Error; err != nil {
		return fmt.Errorf("failed to delete password expiry: %w", err)
	}
	return nil
}
