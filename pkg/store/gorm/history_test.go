package gorm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/store"
)

func TestHistoryStore_LockUser(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewHistoryStore(db)

	rows := sqlmock.NewRows([]string{"id", "login", "created_at"}).AddRow(42, "alice", time.Now())
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	err := s.LockUser(context.Background(), 42)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_LockUser_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewHistoryStore(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "login", "created_at"}))

	err := s.LockUser(context.Background(), 404)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_CountEntries(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewHistoryStore(db)

	mock.ExpectQuery(`SELECT count\(.+\) FROM "password_history" WHERE user_id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := s.CountEntries(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_DeleteOldestEntry(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewHistoryStore(db)

	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "password", "created_at"}).
		AddRow(11, 42, "hash-1", createdAt)
	mock.ExpectQuery(`DELETE FROM password_history`).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	evicted, err := s.DeleteOldestEntry(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, evicted)
	assert.Equal(t, int64(11), evicted.ID)
	assert.Equal(t, int64(42), evicted.UserID)
	assert.Equal(t, "hash-1", evicted.Password)
	assert.True(t, createdAt.Equal(evicted.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_DeleteOldestEntry_Empty(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewHistoryStore(db)

	mock.ExpectQuery(`DELETE FROM password_history`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "password", "created_at"}))

	evicted, err := s.DeleteOldestEntry(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, evicted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_Transaction_EvictAndInsert(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewHistoryStore(db)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "login", "created_at"}).AddRow(42, "alice", now))
	mock.ExpectQuery(`SELECT count\(.+\) FROM "password_history"`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`DELETE FROM password_history`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "password", "created_at"}).AddRow(1, 42, "hash-1", now))
	mock.ExpectQuery(`INSERT INTO "password_history"`).
		WithArgs(int64(42), "hash-6", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(6))
	mock.ExpectCommit()

	entry := &store.HistoryEntry{UserID: 42, Password: "hash-6", CreatedAt: now}
	err := s.Transaction(ctx, func(tx store.HistoryStore) error {
		if err := tx.LockUser(ctx, 42); err != nil {
			return err
		}
		count, err := tx.CountEntries(ctx, 42)
		if err != nil {
			return err
		}
		if count >= 5 {
			if _, err := tx.DeleteOldestEntry(ctx, 42); err != nil {
				return err
			}
		}
		return tx.InsertEntry(ctx, entry)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_Transaction_RollsBackOnError(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewHistoryStore(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM password_history`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "password", "created_at"}).AddRow(1, 42, "hash-1", time.Now()))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx store.HistoryStore) error {
		if _, err := tx.DeleteOldestEntry(ctx, 42); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_InsertEntry_ForeignKeyViolation(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewHistoryStore(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "password_history"`).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})
	mock.ExpectRollback()

	err := s.Transaction(ctx, func(tx store.HistoryStore) error {
		return tx.InsertEntry(ctx, &store.HistoryEntry{UserID: 404, Password: "hash", CreatedAt: time.Now()})
	})
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_InsertEntry_ValueTooLong(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewHistoryStore(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "password_history"`).
		WillReturnError(&pgconn.PgError{Code: "22001", Message: "value too long for type character varying(255)"})
	mock.ExpectRollback()

	err := s.Transaction(ctx, func(tx store.HistoryStore) error {
		return tx.InsertEntry(ctx, &store.HistoryEntry{UserID: 42, Password: "hash", CreatedAt: time.Now()})
	})
	assert.ErrorIs(t, err, store.ErrPasswordTooLong)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_ListEntries(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewHistoryStore(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "password", "created_at"}).
		AddRow(2, 42, "hash-2", now).
		AddRow(3, 42, "hash-3", now)
	mock.ExpectQuery(`SELECT \* FROM "password_history" WHERE user_id = \$1 ORDER BY id`).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	entries, err := s.ListEntries(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[0].ID)
	assert.Equal(t, "hash-3", entries[1].Password)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_DeleteEntries(t *testing.T) {
	db, mock := setupTestDB(t)
	s := NewHistoryStore(db)

	mock.ExpectExec(`DELETE FROM password_history WHERE user_id = \$1`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := s.DeleteEntries(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
