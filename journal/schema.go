// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	action TEXT NOT NULL,
	ticker TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	cash REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS valuations (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	value REAL NOT NULL,
	positions INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_run ON transactions(run_id, time);
CREATE INDEX IF NOT EXISTS idx_valuations_run ON valuations(run_id, time);
`
