package passwords

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/audit"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/store"
)

// Change is the outcome of recording a password change
type Change struct {
	// Entry is the inserted history entry, ID included
	Entry store.HistoryEntry
	// Evicted is the entry removed to make room, or nil
	Evicted *store.HistoryEntry
}

// RecordPasswordChange appends encryptedPassword to the user's history.
//
// If the user already has policy.HistoryLife or more entries, exactly one
// entry, the oldest by ID, is deleted first. A zero now means the
// manager's clock. Everything runs in one transaction with the user
// locked; any failure leaves the history untouched.
func (m *Manager) RecordPasswordChange(ctx context.Context, policy Policy, userID int64, encryptedPassword string, now time.Time) (*Change, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if encryptedPassword == "" {
		return nil, ErrEmptyPassword
	}
	if now.IsZero() {
		now = m.now()
	}

	var change *Change
	err := m.history.Transaction(ctx, func(tx store.HistoryStore) error {
		change = &Change{
			Entry: store.HistoryEntry{
				UserID:    userID,
				Password:  encryptedPassword,
				CreatedAt: now,
			},
		}

		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}

		count, err := tx.CountEntries(ctx, userID)
		if err != nil {
			return err
		}

		// One eviction per change, even when count is already above the cap
		if count >= policy.HistoryLife {
			change.Evicted, err = tx.DeleteOldestEntry(ctx, userID)
			if err != nil {
				return err
			}
		}

		return tx.InsertEntry(ctx, &change.Entry)
	})
	if err != nil {
		err = userError(userID, err)
		m.log.WithError(err).WithField("user_id", userID).Warn("failed to record password change")
		m.audit(audit.PasswordHistoryEvent{
			UserID:       userID,
			Operation:    audit.OperationRecord,
			ErrorMessage: err.Error(),
		})
		return nil, err
	}

	fields := logrus.Fields{
		"user_id":  userID,
		"entry_id": change.Entry.ID,
	}
	if change.Evicted != nil {
		fields["evicted_id"] = change.Evicted.ID
		m.audit(audit.PasswordHistoryEvent{
			UserID:    userID,
			Operation: audit.OperationEvict,
			EntryID:   change.Evicted.ID,
			Success:   true,
		})
	}
	m.audit(audit.PasswordHistoryEvent{
		UserID:    userID,
		Operation: audit.OperationRecord,
		EntryID:   change.Entry.ID,
		Success:   true,
	})
	m.log.WithFields(fields).Info("recorded password change")

	return change, nil
}

// History returns the user's stored entries, oldest first
func (m *Manager) History(ctx context.Context, userID int64) ([]store.HistoryEntry, error) {
	return m.history.ListEntries(ctx, userID)
}

// PurgeHistory deletes every history entry of the user. It is the explicit
// cleanup for stores that don't cascade user deletion.
func (m *Manager) PurgeHistory(ctx context.Context, userID int64) (int64, error) {
	deleted, err := m.history.DeleteEntries(ctx, userID)
	if err != nil {
		m.audit(audit.PasswordHistoryEvent{
			UserID:       userID,
			Operation:    audit.OperationPurge,
			ErrorMessage: err.Error(),
		})
		return 0, err
	}

	m.log.WithFields(logrus.Fields{"user_id": userID, "deleted": deleted}).Info("purged password history")
	m.audit(audit.PasswordHistoryEvent{
		UserID:    userID,
		Operation: audit.OperationPurge,
		Count:     deleted,
		Success:   true,
	})
	return deleted, nil
}
