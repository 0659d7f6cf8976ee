// Package audit provides audit logging for password manager operations.
//
// Every change to a user's password history or password expiry produces
// an Event. Events are written as RFC5424 syslog lines and, when
// AUDIT_DATABASE_URL is set, persisted to the messages table.
//
// # Event Types
//
//   - PasswordHistoryEvent: record, evict and purge of history entries
//   - PasswordExpiryEvent: set and clear of the expiry period
//
// # Usage
//
//	auditor := audit.NewAuditor(audit.NewLogger(), store, log)
//	auditor.Log(audit.PasswordHistoryEvent{
//	    UserID:    42,
//	    Operation: audit.OperationRecord,
//	    EntryID:   7,
//	    Success:   true,
//	})
package audit
