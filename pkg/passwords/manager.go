package passwords

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/audit"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/store"
)

// Auditor receives an event for every history and expiry change
type Auditor interface {
	Log(event audit.Event)
}

// Manager applies the password history and expiry rules on top of a store
type Manager struct {
	history store.HistoryStore
	expiry  store.ExpiryStore
	health  store.HealthStore
	log     logrus.FieldLogger
	auditor Auditor
	now     func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger. Defaults to logrus' standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) { m.log = log }
}

// WithAuditor sets the audit sink
func WithAuditor(auditor Auditor) Option {
	return func(m *Manager) { m.auditor = auditor }
}

// WithClock sets the time source used when a caller passes a zero time
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithHealthStore enables Status checks against the given store
func WithHealthStore(health store.HealthStore) Option {
	return func(m *Manager) { m.health = health }
}

// NewManager creates a Manager
func NewManager(history store.HistoryStore, expiry store.ExpiryStore, opts ...Option) *Manager {
	m := &Manager{
		history: history,
		expiry:  expiry,
		log:     logrus.StandardLogger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Status checks the connectivity of the backing store
func (m *Manager) Status(ctx context.Context) error {
	if m.health == nil {
		return nil
	}
	return m.health.CheckConnectivity(ctx)
}

func (m *Manager) audit(event audit.Event) {
	if m.auditor != nil {
		m.auditor.Log(event)
	}
}

// userError turns a store-level missing user into a *ReferenceError
func userError(userID int64, err error) error {
	if errors.Is(err, store.ErrUserNotFound) {
		return &ReferenceError{UserID: userID, Err: err}
	}
	return err
}
