// Package memory provides in-process implementations of the store
// interfaces. A single mutex is held for the whole of a transaction, which
// gives the same per-user serialization the PostgreSQL row lock gives.
package memory

import (
	"context"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/store"
)

var (
	_ store.HistoryStore = (*Store)(nil)
	_ store.ExpiryStore  = (*Store)(nil)
	_ store.HealthStore  = (*Store)(nil)
)

// Store keeps users, password history and expiry records in memory.
type Store struct {
	mu    sync.Mutex
	state *state
}

// New creates an empty Store
func New() *Store {
	return &Store{state: newState()}
}

// AddUser registers a user ID so history and expiry records can reference it.
func (s *Store) AddUser(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[userID] = struct{}{}
}

// DeleteUser removes a user together with its history and expiry record,
// the way ON DELETE CASCADE does.
func (s *Store) DeleteUser(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.users, userID)
	delete(s.state.history, userID)
	delete(s.state.expiry, userID)
}

// Transaction runs fn against a copy of the store and keeps the copy only
// when fn succeeds.
func (s *Store) Transaction(ctx context.Context, fn func(store.HistoryStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(&txStore{state: working}); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *Store) LockUser(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.lockUser(userID)
}

func (s *Store) CountEntries(ctx context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.history[userID]), nil
}

func (s *Store) DeleteOldestEntry(ctx context.Context, userID int64) (*store.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.deleteOldest(userID), nil
}

func (s *Store) InsertEntry(ctx context.Context, entry *store.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.insert(entry)
}

func (s *Store) ListEntries(ctx context.Context, userID int64) ([]store.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.list(userID), nil
}

func (s *Store) DeleteEntries(ctx context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.state.history[userID]))
	delete(s.state.history, userID)
	return n, nil
}

func (s *Store) UpsertExpiry(ctx context.Context, userID int64, days int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.users[userID]; !ok {
		return store.ErrUserNotFound
	}
	s.state.expiry[userID] = days
	return nil
}

func (s *Store) FetchExpiry(ctx context.Context, userID int64) (*store.Expiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	days, ok := s.state.expiry[userID]
	if !ok {
		return nil, store.ErrExpiryNotFound
	}
	return &store.Expiry{UserID: userID, ExpiryDays: days}, nil
}

func (s *Store) DeleteExpiry(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.expiry, userID)
	return nil
}

func (s *Store) CheckConnectivity(ctx context.Context) error {
	return nil
}

// txStore is the view handed to Transaction callbacks. The parent mutex is
// already held, so it touches state directly.
type txStore struct {
	state *state
}

func (t *txStore) Transaction(ctx context.Context, fn func(store.HistoryStore) error) error {
	return fn(t)
}

func (t *txStore) LockUser(ctx context.Context, userID int64) error {
	return t.state.lockUser(userID)
}

func (t *txStore) CountEntries(ctx context.Context, userID int64) (int, error) {
	return len(t.state.history[userID]), nil
}

func (t *txStore) DeleteOldestEntry(ctx context.Context, userID int64) (*store.HistoryEntry, error) {
	return t.state.deleteOldest(userID), nil
}

func (t *txStore) InsertEntry(ctx context.Context, entry *store.HistoryEntry) error {
	return t.state.insert(entry)
}

func (t *txStore) ListEntries(ctx context.Context, userID int64) ([]store.HistoryEntry, error) {
	return t.state.list(userID), nil
}

func (t *txStore) DeleteEntries(ctx context.Context, userID int64) (int64, error) {
	n := int64(len(t.state.history[userID]))
	delete(t.state.history, userID)
	return n, nil
}

type state struct {
	nextID  int64
	users   map[int64]struct{}
	history map[int64][]store.HistoryEntry
	expiry  map[int64]int
}

func newState() *state {
	return &state{
		users:   make(map[int64]struct{}),
		history: make(map[int64][]store.HistoryEntry),
		expiry:  make(map[int64]int),
	}
}

func (s *state) clone() *state {
	c := &state{
		nextID:  s.nextID,
		users:   make(map[int64]struct{}, len(s.users)),
		history: make(map[int64][]store.HistoryEntry, len(s.history)),
		expiry:  make(map[int64]int, len(s.expiry)),
	}
	for id := range s.users {
		c.users[id] = struct{}{}
	}
	for id, entries := range s.history {
		c.history[id] = append([]store.HistoryEntry(nil), entries...)
	}
	for id, days := range s.expiry {
		c.expiry[id] = days
	}
	return c
}

func (s *state) lockUser(userID int64) error {
	if _, ok := s.users[userID]; !ok {
		return store.ErrUserNotFound
	}
	return nil
}

func (s *state) insert(entry *store.HistoryEntry) error {
	if _, ok := s.users[entry.UserID]; !ok {
		return store.ErrUserNotFound
	}
	if utf8.RuneCountInString(entry.Password) > store.MaxPasswordLength {
		return store.ErrPasswordTooLong
	}
	s.nextID++
	entry.ID = s.nextID
	s.history[entry.UserID] = append(s.history[entry.UserID], *entry)
	return nil
}

func (s *state) deleteOldest(userID int64) *store.HistoryEntry {
	entries := s.history[userID]
	if len(entries) == 0 {
		return nil
	}

	oldest := 0
	for i := range entries {
		if entries[i].ID < entries[oldest].ID {
			oldest = i
		}
	}
	evicted := entries[oldest]
	s.history[userID] = append(entries[:oldest:oldest], entries[oldest+1:]...)
	return &evicted
}

func (s *state) list(userID int64) []store.HistoryEntry {
	entries := append([]store.HistoryEntry(nil), s.history[userID]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}
