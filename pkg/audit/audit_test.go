package audit

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func fixedLogger(buf *bytes.Buffer) *Logger {
	logger := NewLogger()
	logger.SetWriter(buf)
	logger.hostname = "host1"
	logger.pid = 1234
	logger.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return logger
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := fixedLogger(&buf)

	logger.Log(PasswordHistoryEvent{
		UserID:    42,
		Operation: OperationRecord,
		EntryID:   7,
		Success:   true,
	})

	want := `<86>1 2024-03-01T09:00:00.000Z host1 passmgr 1234 password-history ` +
		`[action@32473 operation="record" result="success"][history@32473 entry="7"][subject@32473 user="42"] ` +
		"user 42 recorded password history entry 7\n"
	if got := buf.String(); got != want {
		t.Errorf("Log() =\n%q\nwant\n%q", got, want)
	}
}

func TestLoggerFormatNoStructuredData(t *testing.T) {
	var buf bytes.Buffer
	logger := fixedLogger(&buf)
	logger.hostname = ""

	line := logger.Format(bareEvent{})
	if !strings.Contains(line, " - passmgr ") {
		t.Errorf("expected '-' hostname, got %q", line)
	}
	if !strings.Contains(line, " bare - bare message") {
		t.Errorf("expected '-' structured data, got %q", line)
	}
}

type bareEvent struct{}

func (bareEvent) MessageID() string { return "bare" }
func (bareEvent) Message() string { return "bare message" }
func (bareEvent) Severity() Severity { return SeverityNotice }
func (bareEvent) Facility() int { return FacilityAuth }
func (bareEvent) StructuredData() map[string]map[string]string { return nil }

func TestEscapeSDValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, `"plain"`},
		{`a"b`, `"a\"b"`},
		{`a\b`, `"a\\b"`},
		{`a]b`, `"a\]b"`},
	}
	for _, tt := range tests {
		if got := escapeSDValue(tt.in); got != tt.want {
			t.Errorf("escapeSDValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPasswordHistoryEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   PasswordHistoryEvent
		wantMsg string
		wantSev Severity
	}{
		{
			name:    "record",
			event:   PasswordHistoryEvent{UserID: 1, Operation: OperationRecord, EntryID: 9, Success: true},
			wantMsg: "user 1 recorded password history entry 9",
			wantSev: SeverityInfo,
		},
		{
			name:    "evict",
			event:   PasswordHistoryEvent{UserID: 1, Operation: OperationEvict, EntryID: 3, Success: true},
			wantMsg: "user 1 evicted password history entry 3",
			wantSev: SeverityInfo,
		},
		{
			name:    "purge",
			event:   PasswordHistoryEvent{UserID: 1, Operation: OperationPurge, Count: 4, Success: true},
			wantMsg: "user 1 purged 4 password history entries",
			wantSev: SeverityInfo,
		},
		{
			name:    "failed record",
			event:   PasswordHistoryEvent{UserID: 1, Operation: OperationRecord, ErrorMessage: "user not found"},
			wantMsg: "user 1 failed to record password history: user not found",
			wantSev: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Message(); got != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.event.Severity(); got != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", got, tt.wantSev)
			}
			if got := tt.event.Facility(); got != FacilityAuthPriv {
				t.Errorf("Facility() = %v, want %v", got, FacilityAuthPriv)
			}
			if got := tt.event.MessageID(); got != "password-history" {
				t.Errorf("MessageID() = %q", got)
			}
		})
	}
}

func TestPasswordExpiryEvent(t *testing.T) {
	set := PasswordExpiryEvent{UserID: 5, Operation: OperationSet, ExpiryDays: 90, Success: true}
	if got := set.Message(); got != "user 5 set password expiry to 90 days" {
		t.Errorf("Message() = %q", got)
	}
	if got := set.StructuredData()[SDIDExpiry]["days"]; got != "90" {
		t.Errorf("days = %q, want 90", got)
	}

	clear := PasswordExpiryEvent{UserID: 5, Operation: OperationClear, Success: true}
	if got := clear.Message(); got != "user 5 cleared password expiry" {
		t.Errorf("Message() = %q", got)
	}
	if _, ok := clear.StructuredData()[SDIDExpiry]; ok {
		t.Error("clear event should not carry expiry days")
	}

	failed := PasswordExpiryEvent{UserID: 5, Operation: OperationSet, ExpiryDays: -1, ErrorMessage: "negative"}
	if failed.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want warning", failed.Severity())
	}
	if got := failed.StructuredData()[SDIDAction]["result"]; got != "failure" {
		t.Errorf("result = %q, want failure", got)
	}
}

func TestAuditorWritesToLogger(t *testing.T) {
	var buf bytes.Buffer
	auditor := NewAuditor(fixedLogger(&buf), nil, nil)

	auditor.Log(PasswordExpiryEvent{UserID: 3, Operation: OperationClear, Success: true})

	if !strings.Contains(buf.String(), "user 3 cleared password expiry") {
		t.Errorf("expected event in output, got %q", buf.String())
	}
}

func TestNilAuditor(t *testing.T) {
	var auditor *Auditor
	auditor.Log(PasswordExpiryEvent{UserID: 3, Operation: OperationClear, Success: true})
}
