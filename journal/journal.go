// Package journal records what a backtest run did: every booked
// transaction and a valuation snapshot per rebalance. The audit chain is
// the tamper-evident record; the journal is the queryable one.
package journal

import "time"

// TransactionRecord is one booked trade, tagged with the run it belongs to.
type TransactionRecord struct {
	RunID    string
	Time     time.Time
	Action   string
	Ticker   string
	Quantity int64
	Price    float64
	Cash     float64
}

// ValuationSnapshot captures the ledger's worth at one rebalance date.
type ValuationSnapshot struct {
	RunID     string
	Time      time.Time
	Cash      float64
	Value     float64
	Positions int
}

type Journal interface {
	RecordTransaction(TransactionRecord) error
	RecordValuation(ValuationSnapshot) error
	Close() error
}

// Nop discards everything. It is the default when journaling is disabled.
type Nop struct{}

func (Nop) RecordTransaction(TransactionRecord) error { return nil }
func (Nop) RecordValuation(ValuationSnapshot) error   { return nil }
func (Nop) Close() error                              { return nil }
