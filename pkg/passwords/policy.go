package passwords

import "strconv"

// HistoryLifeSetting is the name of the retention setting
const HistoryLifeSetting = "PASSWORD_HISTORY_LIFE"

// Policy carries the settings a history write depends on. It is passed to
// every RecordPasswordChange call instead of being read from globals.
type Policy struct {
	// HistoryLife is the maximum number of entries kept per user
	HistoryLife int
}

// Validate checks that HistoryLife is set and positive
func (p Policy) Validate() error {
	if p.HistoryLife > 0 {
		return nil
	}
	err := &ConfigurationError{
		Setting: HistoryLifeSetting,
		Reason:  "must be a positive integer",
	}
	if p.HistoryLife < 0 {
		err.Value = strconv.Itoa(p.HistoryLife)
	}
	return err
}
