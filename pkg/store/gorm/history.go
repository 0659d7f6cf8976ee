package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/model"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/store"
)

// Ensure HistoryStore implements store.HistoryStore
var _ store.HistoryStore = (*HistoryStore)(nil)

// HistoryStore implements store.HistoryStore using GORM
type HistoryStore struct {
	db *gorm.DB
}

// NewHistoryStore creates a new HistoryStore
func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Transaction wraps operations in a database transaction.
func (s *HistoryStore) Transaction(ctx context.Context, fn func(store.HistoryStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&HistoryStore{db: tx})
	})
}

// LockUser locks the user row with SELECT ... FOR UPDATE.
// Concurrent writers for the same user queue behind the lock until commit.
func (s *HistoryStore) LockUser(ctx context.Context, userID int64) error {
	var users []model.User
	tx := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		Find(&users)
	if tx.Error != nil {
		return fmt.Errorf("failed to lock user %d: %w", userID, tx.Error)
	}
	if len(users) == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// CountEntries counts the stored entries of a user.
func (s *HistoryStore) CountEntries(ctx context.Context, userID int64) (int, error) {
	var count int64
	tx := s.db.WithContext(ctx).Model(&model.PasswordHistory{}).Where("user_id = ?", userID).Count(&count)
	if tx.Error != nil {
		return 0, fmt.Errorf("failed to count password history: %w", tx.Error)
	}
	return int(count), nil
}

// DeleteOldestEntry deletes the entry with the smallest ID for the user.
func (s *HistoryStore) DeleteOldestEntry(ctx context.Context, userID int64) (*store.HistoryEntry, error) {
	var rows []model.PasswordHistory
	tx := s.db.WithContext(ctx).Raw(`
		DELETE FROM password_history
		WHERE id = (
			SELECT id FROM password_history WHERE user_id = ? ORDER BY id LIMIT 1
		)
		RETURNING id, user_id, password, created_at
	`, userID).Scan(&rows)
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to delete oldest password: %w", tx.Error)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	entry := toHistoryEntry(rows[0])
	return &entry, nil
}

// InsertEntry stores a new entry and fills in its ID.
func (s *HistoryStore) InsertEntry(ctx context.Context, entry *store.HistoryEntry) error {
	row := model.PasswordHistory{
		UserID:    entry.UserID,
		Password:  entry.Password,
		CreatedAt: entry.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrUserNotFound
		}
		if isValueTooLong(err) {
			return store.ErrPasswordTooLong
		}
		return fmt.Errorf("failed to insert password history: %w", err)
	}
	entry.ID = row.ID
	return nil
}

// ListEntries returns the entries of a user ordered by ID.
func (s *HistoryStore) ListEntries(ctx context.Context, userID int64) ([]store.HistoryEntry, error) {
	var rows []model.PasswordHistory
	tx := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&rows)
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to list password history: %w", tx.Error)
	}

	entries := make([]store.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toHistoryEntry(row))
	}
	return entries, nil
}

// DeleteEntries removes every entry of a user.
func (s *HistoryStore) DeleteEntries(ctx context.Context, userID int64) (int64, error) {
	tx := s.db.WithContext(ctx).Exec(`DELETE FROM password_history WHERE user_id = ?`, userID)
	if tx.Error != nil {
		return 0, fmt.Errorf("failed to delete password history: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

func toHistoryEntry(row model.PasswordHistory) store.HistoryEntry {
	return store.HistoryEntry{
		ID:        row.ID,
		UserID:    row.UserID,
		Password:  row.Password,
		CreatedAt: row.CreatedAt,
	}
}
