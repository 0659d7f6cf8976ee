package passwords

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/audit"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/store"
	"github.com/doodlesbykumbi/password-manager-in-go/pkg/store/memory"
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAuditor) Log(event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// failingInsert fails every InsertEntry made inside a transaction
type failingInsert struct {
	store.HistoryStore
}

func (f failingInsert) Transaction(ctx context.Context, fn func(store.HistoryStore) error) error {
	return f.HistoryStore.Transaction(ctx, func(tx store.HistoryStore) error {
		return fn(failingInsert{tx})
	})
}

func (f failingInsert) InsertEntry(ctx context.Context, entry *store.HistoryEntry) error {
	return errors.New("disk full")
}

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, opts ...Option) (*Manager, *memory.Store) {
	t.Helper()
	mem := memory.New()
	mem.AddUser(1)
	logger, _ := test.NewNullLogger()
	opts = append([]Option{
		WithLogger(logger),
		WithClock(func() time.Time { return fixedNow }),
		WithHealthStore(mem),
	}, opts...)
	return NewManager(mem, mem, opts...), mem
}

func record(t *testing.T, m *Manager, policy Policy, userID int64, n int) []*Change {
	t.Helper()
	changes := make([]*Change, 0, n)
	for i := 1; i <= n; i++ {
		change, err := m.RecordPasswordChange(context.Background(), policy, userID, fmt.Sprintf("hash-%d", i), time.Time{})
		require.NoError(t, err)
		changes = append(changes, change)
	}
	return changes
}

func entryIDs(entries []store.HistoryEntry) []int64 {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestRecordPasswordChange_EvictsOldestAtCap(t *testing.T) {
	m, _ := newTestManager(t)
	policy := Policy{HistoryLife: 5}

	changes := record(t, m, policy, 1, 6)

	for _, change := range changes[:5] {
		assert.Nil(t, change.Evicted)
	}
	require.NotNil(t, changes[5].Evicted)
	assert.Equal(t, int64(1), changes[5].Evicted.ID)
	assert.Equal(t, "hash-1", changes[5].Evicted.Password)
	assert.Equal(t, int64(6), changes[5].Entry.ID)

	entries, err := m.History(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4, 5, 6}, entryIDs(entries))
}

func TestRecordPasswordChange_BelowCapKeepsEverything(t *testing.T) {
	m, _ := newTestManager(t)
	policy := Policy{HistoryLife: 5}

	changes := record(t, m, policy, 1, 4)

	assert.Nil(t, changes[3].Evicted)
	entries, err := m.History(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestRecordPasswordChange_CountNeverExceedsCap(t *testing.T) {
	m, _ := newTestManager(t)
	policy := Policy{HistoryLife: 3}
	ctx := context.Background()

	for i := 1; i <= 20; i++ {
		before, err := m.History(ctx, 1)
		require.NoError(t, err)

		change, err := m.RecordPasswordChange(ctx, policy, 1, fmt.Sprintf("hash-%d", i), time.Time{})
		require.NoError(t, err)

		after, err := m.History(ctx, 1)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(after), 3)

		if change.Evicted != nil {
			assert.Equal(t, before[0].ID, change.Evicted.ID, "evicted entry must be the oldest")
		}
	}
}

func TestRecordPasswordChange_LoweredCapEvictsOnePerChange(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	record(t, m, Policy{HistoryLife: 5}, 1, 5)

	change, err := m.RecordPasswordChange(ctx, Policy{HistoryLife: 3}, 1, "hash-new", time.Time{})
	require.NoError(t, err)
	require.NotNil(t, change.Evicted)
	assert.Equal(t, int64(1), change.Evicted.ID)

	entries, err := m.History(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4, 5, 6}, entryIDs(entries))
}

func TestRecordPasswordChange_UsesProvidedTime(t *testing.T) {
	m, _ := newTestManager(t)
	at := time.Date(2023, 12, 24, 18, 30, 0, 0, time.UTC)

	change, err := m.RecordPasswordChange(context.Background(), Policy{HistoryLife: 2}, 1, "hash", at)
	require.NoError(t, err)
	assert.True(t, change.Entry.CreatedAt.Equal(at))

	change, err = m.RecordPasswordChange(context.Background(), Policy{HistoryLife: 2}, 1, "hash", time.Time{})
	require.NoError(t, err)
	assert.True(t, change.Entry.CreatedAt.Equal(fixedNow))
}

func TestRecordPasswordChange_ConcurrentAtCapMinusOne(t *testing.T) {
	m, _ := newTestManager(t)
	policy := Policy{HistoryLife: 5}
	ctx := context.Background()
	record(t, m, policy, 1, 4)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.RecordPasswordChange(ctx, policy, 1, fmt.Sprintf("concurrent-%d", i), time.Time{})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	entries, err := m.History(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
	// the 10 concurrent inserts got ids 5..14; the five newest survive
	assert.Equal(t, []int64{10, 11, 12, 13, 14}, entryIDs(entries))
}

func TestRecordPasswordChange_InvalidPolicy(t *testing.T) {
	m, _ := newTestManager(t)

	for _, life := range []int{0, -1} {
		t.Run(fmt.Sprintf("life=%d", life), func(t *testing.T) {
			_, err := m.RecordPasswordChange(context.Background(), Policy{HistoryLife: life}, 1, "hash", time.Time{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, HistoryLifeSetting, cfgErr.Setting)
		})
	}

	entries, err := m.History(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecordPasswordChange_EmptyPassword(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.RecordPasswordChange(context.Background(), Policy{HistoryLife: 5}, 1, "", time.Time{})
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestRecordPasswordChange_UnknownUser(t *testing.T) {
	auditor := &recordingAuditor{}
	m, _ := newTestManager(t, WithAuditor(auditor))

	_, err := m.RecordPasswordChange(context.Background(), Policy{HistoryLife: 5}, 99, "hash", time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.ErrorIs(t, err, ErrReference)

	var refErr *ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, int64(99), refErr.UserID)

	require.Len(t, auditor.events, 1)
	event := auditor.events[0].(audit.PasswordHistoryEvent)
	assert.False(t, event.Success)
	assert.Equal(t, audit.OperationRecord, event.Operation)
}

func TestRecordPasswordChange_FailedInsertRollsBackEviction(t *testing.T) {
	m, mem := newTestManager(t)
	ctx := context.Background()
	policy := Policy{HistoryLife: 2}
	record(t, m, policy, 1, 2)

	failing := NewManager(failingInsert{mem}, mem, WithLogger(logrus.New()))
	_, err := failing.RecordPasswordChange(ctx, policy, 1, "hash-3", time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	entries, err := m.History(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, entryIDs(entries))
}

func TestRecordPasswordChange_PasswordTooLong(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	policy := Policy{HistoryLife: 2}
	record(t, m, policy, 1, 2)

	_, err := m.RecordPasswordChange(ctx, policy, 1, strings.Repeat("x", store.MaxPasswordLength+1), time.Time{})
	assert.ErrorIs(t, err, store.ErrPasswordTooLong)

	entries, err := m.History(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, entryIDs(entries), "eviction must be rolled back")
}

func TestRecordPasswordChange_AuditsAndLogs(t *testing.T) {
	auditor := &recordingAuditor{}
	logger, hook := test.NewNullLogger()
	m, _ := newTestManager(t, WithAuditor(auditor), WithLogger(logger))

	record(t, m, Policy{HistoryLife: 1}, 1, 2)

	require.Len(t, auditor.events, 3)
	assert.Equal(t, audit.OperationRecord, auditor.events[0].(audit.PasswordHistoryEvent).Operation)

	evict := auditor.events[1].(audit.PasswordHistoryEvent)
	assert.Equal(t, audit.OperationEvict, evict.Operation)
	assert.Equal(t, int64(1), evict.EntryID)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "recorded password change", last.Message)
	assert.Equal(t, int64(1), last.Data["evicted_id"])
	assert.Equal(t, int64(2), last.Data["entry_id"])
}

func TestPurgeHistory(t *testing.T) {
	auditor := &recordingAuditor{}
	m, _ := newTestManager(t, WithAuditor(auditor))
	ctx := context.Background()
	record(t, m, Policy{HistoryLife: 5}, 1, 3)
	auditor.events = nil

	deleted, err := m.PurgeHistory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	entries, err := m.History(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.Len(t, auditor.events, 1)
	assert.Equal(t, int64(3), auditor.events[0].(audit.PasswordHistoryEvent).Count)
}

func TestStatus(t *testing.T) {
	m, _ := newTestManager(t)
	assert.NoError(t, m.Status(context.Background()))

	bare := NewManager(memory.New(), memory.New())
	assert.NoError(t, bare.Status(context.Background()))
}
