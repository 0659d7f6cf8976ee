package audit

import (
	"fmt"
	"strconv"
)

// Password history operations
const (
	OperationRecord = "record"
	OperationEvict  = "evict"
	OperationPurge  = "purge"
)

// PasswordHistoryEvent represents a change to a user's password history
type PasswordHistoryEvent struct {
	UserID       int64
	Operation    string
	EntryID      int64
	Count        int64
	Success      bool
	ErrorMessage string
}

func (e PasswordHistoryEvent) MessageID() string {
	return "password-history"
}

func (e PasswordHistoryEvent) Message() string {
	if !e.Success {
		msg := fmt.Sprintf("user %d failed to %s password history", e.UserID, e.Operation)
		if e.ErrorMessage != "" {
			msg += ": " + e.ErrorMessage
		}
		return msg
	}

	switch e.Operation {
	case OperationRecord:
		return fmt.Sprintf("user %d recorded password history entry %d", e.UserID, e.EntryID)
	case OperationEvict:
		return fmt.Sprintf("user %d evicted password history entry %d", e.UserID, e.EntryID)
	case OperationPurge:
		return fmt.Sprintf("user %d purged %d password history entries", e.UserID, e.Count)
	}
	return fmt.Sprintf("user %d %s password history", e.UserID, e.Operation)
}

func (e PasswordHistoryEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e PasswordHistoryEvent) Facility() int {
	return FacilityAuthPriv
}

func (e PasswordHistoryEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	sd := map[string]map[string]string{
		SDIDSubject: {
			"user": strconv.FormatInt(e.UserID, 10),
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result,
		},
	}
	if e.EntryID != 0 {
		sd[SDIDHistory] = map[string]string{"entry": strconv.FormatInt(e.EntryID, 10)}
	}
	if e.Operation == OperationPurge {
		sd[SDIDHistory] = map[string]string{"count": strconv.FormatInt(e.Count, 10)}
	}
	return sd
}
