package passwords

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/audit"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/store"
)

// DefaultExpiryDays is returned by GetExpiry for users without a record.
// Whether it means "never expires" or "not configured" is up to the caller.
const DefaultExpiryDays = 0

// SetExpiry creates or replaces the user's expiry period
func (m *Manager) SetExpiry(ctx context.Context, userID int64, days int) error {
	if days < 0 {
		m.audit(audit.PasswordExpiryEvent{
			UserID:       userID,
			Operation:    audit.OperationSet,
			ExpiryDays:   days,
			ErrorMessage: ErrNegativeExpiry.Error(),
		})
		return ErrNegativeExpiry
	}

	if err := m.expiry.UpsertExpiry(ctx, userID, days); err != nil {
		err = userError(userID, err)
		m.log.WithError(err).WithField("user_id", userID).Warn("failed to set password expiry")
		m.audit(audit.PasswordExpiryEvent{
			UserID:       userID,
			Operation:    audit.OperationSet,
			ExpiryDays:   days,
			ErrorMessage: err.Error(),
		})
		return err
	}

	m.log.WithFields(logrus.Fields{"user_id": userID, "expiry_days": days}).Info("set password expiry")
	m.audit(audit.PasswordExpiryEvent{
		UserID:     userID,
		Operation:  audit.OperationSet,
		ExpiryDays: days,
		Success:    true,
	})
	return nil
}

// GetExpiry returns the user's expiry period, or DefaultExpiryDays when
// none was ever set
func (m *Manager) GetExpiry(ctx context.Context, userID int64) (int, error) {
	expiry, err := m.expiry.FetchExpiry(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrExpiryNotFound) {
			return DefaultExpiryDays, nil
		}
		return 0, err
	}
	return expiry.ExpiryDays, nil
}

// ClearExpiry removes the user's expiry record
func (m *Manager) ClearExpiry(ctx context.Context, userID int64) error {
	if err := m.expiry.DeleteExpiry(ctx, userID); err != nil {
		m.audit(audit.PasswordExpiryEvent{
			UserID:       userID,
			Operation:    audit.OperationClear,
			ErrorMessage: err.Error(),
		})
		return err
	}

	m.log.WithField("user_id", userID).Debug("cleared password expiry")
	m.audit(audit.PasswordExpiryEvent{
		UserID:    userID,
		Operation: audit.OperationClear,
		Success:   true,
	})
	return nil
}
