package audit

import (
	"fmt"
	"strconv"
)

// Password expiry operations
const (
	OperationSet   = "set"
	OperationClear = "clear"
)

// PasswordExpiryEvent represents a change to a user's password expiry
type PasswordExpiryEvent struct {
	UserID       int64
	Operation    string
	ExpiryDays   int
	Success      bool
	ErrorMessage string
}

func (e PasswordExpiryEvent) MessageID() string {
	return "password-expiry"
}

func (e PasswordExpiryEvent) Message() string {
	if !e.Success {
		msg := fmt.Sprintf("user %d failed to %s password expiry", e.UserID, e.Operation)
		if e.ErrorMessage != "" {
			msg += ": " + e.ErrorMessage
		}
		return msg
	}
	if e.Operation == OperationClear {
		return fmt.Sprintf("user %d cleared password expiry", e.UserID)
	}
	return fmt.Sprintf("user %d set password expiry to %d days", e.UserID, e.ExpiryDays)
}

func (e PasswordExpiryEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e PasswordExpiryEvent) Facility() int {
	return FacilityAuthPriv
}

func (e PasswordExpiryEvent) StructuredData() map[string]map[string]string {
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
	if e.Operation == OperationSet {
		sd[SDIDExpiry] = map[string]string{"days": strconv.Itoa(e.ExpiryDays)}
	}
	return sd
}
