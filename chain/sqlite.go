package chain

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS chains (
	name TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// SQLiteStore persists chains in a single SQLite database, one row per
// chain name.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the store database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Persist(c *Chain) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("chain: marshal %q: %w", c.Name, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO chains (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		c.Name, data, time.Now().UTC(),
	)
	return err
}

func (s *SQLiteStore) Load(name string) (*Chain, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM chains WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	c := &Chain{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("chain: decode %q: %w", name, err)
	}
	return c, nil
}

func (s *SQLiteStore) Remove(name string) error {
	res, err := s.db.Exec(`DELETE FROM chains WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrChainNotFound, name)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
