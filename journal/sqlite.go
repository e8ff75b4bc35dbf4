package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTransaction(t TransactionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO transactions
		(run_id, time, action, ticker, quantity, price, cash)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Time, t.Action, t.Ticker, t.Quantity, t.Price, t.Cash,
	)
	return err
}

func (j *SQLiteJournal) RecordValuation(v ValuationSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO valuations
		(run_id, time, cash, value, positions)
		VALUES (?, ?, ?, ?, ?)`,
		v.RunID, v.Time, v.Cash, v.Value, v.Positions,
	)
	return err
}

// ListTransactions returns a run's transactions in time order.
func (j *SQLiteJournal) ListTransactions(runID string) ([]TransactionRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, action, ticker, quantity, price, cash
		FROM transactions WHERE run_id = ? ORDER BY time, rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRecord
	for rows.Next() {
		var t TransactionRecord
		if err := rows.Scan(&t.RunID, &t.Time, &t.Action, &t.Ticker, &t.Quantity, &t.Price, &t.Cash); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListValuations returns a run's valuation snapshots in time order.
func (j *SQLiteJournal) ListValuations(runID string) ([]ValuationSnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, cash, value, positions
		FROM valuations WHERE run_id = ? ORDER BY time, rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ValuationSnapshot
	for rows.Next() {
		var v ValuationSnapshot
		if err := rows.Scan(&v.RunID, &v.Time, &v.Cash, &v.Value, &v.Positions); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
