package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLiteJournal, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('transactions','valuations')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["transactions"])
	assert.True(t, found["valuations"])
}

func TestSQLiteRecordTransaction(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	ts := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
	rec := TransactionRecord{
		RunID:    "RUN-1",
		Time:     ts,
		Action:   "BUY",
		Ticker:   "AAPL",
		Quantity: 42,
		Price:    101.25,
		Cash:     5747.5,
	}

	require.NoError(t, j.RecordTransaction(rec))

	got, err := j.ListTransactions("RUN-1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, rec.RunID, got[0].RunID)
	assert.True(t, got[0].Time.Equal(ts))
	assert.Equal(t, rec.Action, got[0].Action)
	assert.Equal(t, rec.Ticker, got[0].Ticker)
	assert.Equal(t, rec.Quantity, got[0].Quantity)
	assert.InDelta(t, rec.Price, got[0].Price, 1e-9)
	assert.InDelta(t, rec.Cash, got[0].Cash, 1e-9)
}

func TestSQLiteRecordValuation(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	ts := time.Date(2020, 2, 28, 0, 0, 0, 0, time.UTC)
	rec := ValuationSnapshot{
		RunID:     "RUN-1",
		Time:      ts,
		Cash:      100.5,
		Value:     9_999.75,
		Positions: 3,
	}

	require.NoError(t, j.RecordValuation(rec))

	got, err := j.ListValuations("RUN-1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.True(t, got[0].Time.Equal(ts))
	assert.InDelta(t, rec.Cash, got[0].Cash, 1e-6)
	assert.InDelta(t, rec.Value, got[0].Value, 1e-6)
	assert.Equal(t, rec.Positions, got[0].Positions)
}

func TestSQLiteListFiltersByRun(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	ts := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTransaction(TransactionRecord{RunID: "A", Time: ts, Action: "BUY", Ticker: "AAPL"}))
	require.NoError(t, j.RecordTransaction(TransactionRecord{RunID: "B", Time: ts, Action: "SELL", Ticker: "MSFT"}))

	got, err := j.ListTransactions("A")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AAPL", got[0].Ticker)
}
