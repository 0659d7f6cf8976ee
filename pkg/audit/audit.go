package audit

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// SDID constants for structured data IDs (RFC5424). 32473 is the
// documentation Private Enterprise Number from RFC 5612.
const (
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDHistory = "history@32473"
	SDIDExpiry  = "expiry@32473"
)

// Syslog facility constants
const (
	FacilityAuth     = 4  // LOG_AUTH
	FacilityAuthPriv = 10 // LOG_AUTHPRIV
)

// AppName is the APP-NAME field of every audit line
const AppName = "passmgr"

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger handles audit logging in RFC5424 syslog format
type Logger struct {
	writer   io.Writer
	hostname string
	appName  string
	pid      int
	now      func() time.Time
}

// NewLogger creates a new audit logger writing to stdout
func NewLogger() *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   os.Stdout,
		hostname: hostname,
		appName:  AppName,
		pid:      os.Getpid(),
		now:      time.Now,
	}
}

// SetWriter sets the output writer for the logger
func (l *Logger) SetWriter(w io.Writer) {
	l.writer = w
}

// Log writes an audit event in RFC5424 syslog format
// Format: <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) Log(event Event) {
	_, _ = io.WriteString(l.writer, l.Format(event))
}

// Format renders an event as one RFC5424 line, newline included
func (l *Logger) Format(event Event) string {
	pri := event.Facility()*8 + int(event.Severity())
	timestamp := l.now().UTC().Format("2006-01-02T15:04:05.000Z")

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}

	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	return fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		timestamp,
		hostname,
		l.appName,
		l.pid,
		event.MessageID(),
		sd,
		event.Message(),
	)
}

// formatStructuredData formats structured data per RFC5424.
// SD elements and their params are sorted so output is stable.
// Format: [sdid param1="value1" param2="value2"][sdid2 ...]
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	ids := make([]string, 0, len(sd))
	for sdid := range sd {
		ids = append(ids, sdid)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, sdid := range ids {
		params := sd[sdid]
		keys := make([]string, 0, len(params))
		for key := range params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		sb.WriteString("[")
		sb.WriteString(sdid)
		for _, key := range keys {
			sb.WriteString(" ")
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(escapeSDValue(params[key]))
		}
		sb.WriteString("]")
	}
	return sb.String()
}

// escapeSDValue escapes special characters in structured data values per RFC5424
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}

// Auditor fans an event out to the syslog logger and, when configured,
// the audit database. Store failures are logged, never returned: audit
// persistence must not fail the operation being audited.
type Auditor struct {
	logger *Logger
	store  *Store
	log    logrus.FieldLogger
}

// NewAuditor creates an Auditor. store may be nil.
func NewAuditor(logger *Logger, store *Store, log logrus.FieldLogger) *Auditor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Auditor{logger: logger, store: store, log: log}
}

// Log writes the event to every configured sink
func (a *Auditor) Log(event Event) {
	if a == nil {
		return
	}
	if a.logger != nil {
		a.logger.Log(event)
	}
	if a.store != nil {
		if err := a.store.Save(event); err != nil {
			a.log.WithError(err).WithField("msgid", event.MessageID()).Warn("audit: failed to save event")
		}
	}
}
