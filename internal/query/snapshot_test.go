package query_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pharmadash/pharmadash/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*query.SnapshotStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return query.NewSnapshotStore(sqlx.NewDb(db, "sqlite")), mock
}

func TestSnapshotStore_Get(t *testing.T) {
	store, mock := newMockStore(t)
	fetchedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload, fetched_at FROM snapshots WHERE key = ?`)).
		WithArgs("dashboard/stats").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "fetched_at"}).
			AddRow([]byte(`{"total_skus":42}`), fetchedAt))

	payload, at, err := store.Get(context.Background(), "dashboard/stats")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_skus":42}`, string(payload))
	assert.Equal(t, fetchedAt, at)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotStore_GetMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload, fetched_at FROM snapshots WHERE key = ?`)).
		WithArgs("alerts/stats").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "fetched_at"}))

	_, _, err := store.Get(context.Background(), "alerts/stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no snapshot")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotStore_Put(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO snapshots .+ ON CONFLICT\(key\) DO UPDATE`).
		WithArgs("inventory/medicines", []byte(`[]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Put(context.Background(), "inventory/medicines", []byte(`[]`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotStore_Prune(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM snapshots WHERE fetched_at < ?`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	dropped, err := store.Prune(context.Background(), 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), dropped)
	assert.NoError(t, mock.ExpectationsWereMet())
}
