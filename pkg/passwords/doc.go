// Package passwords keeps a bounded password history and a password expiry
// period for each user.
//
// The history of a user never holds more than Policy.HistoryLife entries
// after a change is recorded: when the user already has HistoryLife or more
// entries, the oldest one (smallest ID) is evicted before the new one is
// inserted. Count, eviction and insert run in one store transaction with
// the user locked, so concurrent changes for one user are serialized.
//
// Passwords are opaque to this package. Callers hash or encrypt them
// before calling RecordPasswordChange.
//
// # Usage
//
//	manager := passwords.NewManager(
//	    gormstore.NewHistoryStore(db),
//	    gormstore.NewExpiryStore(db),
//	    passwords.WithLogger(log),
//	)
//	policy := passwords.Policy{HistoryLife: cfg.PasswordHistoryLife}
//	change, err := manager.RecordPasswordChange(ctx, policy, userID, hashed, time.Time{})
//
//	days, err := manager.GetExpiry(ctx, userID) // 0 when never set
package passwords
