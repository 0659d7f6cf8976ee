// Package store provides storage abstractions for the password manager.
//
// This package defines interfaces for database operations, allowing the
// password manager to be decoupled from the specific database implementation.
// This enables easier testing with the in-memory store and keeps the
// retention rule independent of GORM.
//
// # Available Stores
//
//   - HistoryStore: bounded password history (lock, count, evict, insert)
//   - ExpiryStore: per-user password expiry (upsert, fetch, delete)
//   - HealthStore: connectivity checks
//
// # Implementations
//
//   - store/gorm: PostgreSQL through GORM
//   - store/memory: in-process, one mutex per store
//
// # Usage
//
//	histories := gorm.NewHistoryStore(db)
//	err := histories.Transaction(ctx, func(tx store.HistoryStore) error {
//	    if err := tx.LockUser(ctx, userID); err != nil {
//	        return err // store.ErrUserNotFound for unknown users
//	    }
//	    ...
//	})
package store
