package passwords

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, Policy{HistoryLife: 1}.Validate())

	err := Policy{}.Validate()
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Equal(t, "configuration error: PASSWORD_HISTORY_LIFE is not set: must be a positive integer", err.Error())

	err = Policy{HistoryLife: -3}.Validate()
	assert.Equal(t, "configuration error: PASSWORD_HISTORY_LIFE=-3: must be a positive integer", err.Error())
}

func TestReferenceError(t *testing.T) {
	inner := errors.New("user not found")
	err := &ReferenceError{UserID: 7, Err: inner}

	assert.Equal(t, "user 7: user not found", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.ErrorIs(t, err, ErrReference)
}
