// Package backtest drives a rebalancing simulation over a historical price
// series: it walks the calendar day by day, trades through the ledger on
// scheduled dates, and records every rebalance in the audit chain.
package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/salonensamuli/pybacktestchain/chain"
	"github.com/salonensamuli/pybacktestchain/data"
	"github.com/salonensamuli/pybacktestchain/internal/id"
	"github.com/salonensamuli/pybacktestchain/journal"
	"github.com/salonensamuli/pybacktestchain/ledger"
	"github.com/salonensamuli/pybacktestchain/schedule"
	"github.com/salonensamuli/pybacktestchain/strategy"
)

// State is the driver's lifecycle phase. There is no way back out of a
// terminal state.
type State int

const (
	StateInitialized State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "INITIALIZED"
	case StateRunning:
		return "RUNNING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DefaultLookback matches the original strategy window of roughly a year
// of calendar days.
const DefaultLookback = 360 * 24 * time.Hour

// Config holds everything a run needs. It is copied into the driver at
// construction; there is no shared mutable state between runs.
type Config struct {
	Universe    []string
	Start, End  time.Time
	InitialCash float64

	Source    data.PriceSource
	Provider  strategy.Factory
	Scheduler schedule.Scheduler
	Store     chain.Store

	// Lookback bounds the history window exposed to the provider.
	// Zero means DefaultLookback.
	Lookback time.Duration

	// ChainName keys the persisted audit chain. Empty generates a unique
	// name so concurrent runs cannot collide.
	ChainName string

	// Journal receives transaction and valuation records. Nil disables
	// journaling.
	Journal journal.Journal

	Logger *slog.Logger
}

// Result summarizes a completed run.
type Result struct {
	RunID       string
	ChainName   string
	InitialCash float64
	FinalValue  float64
	Rebalances  int
	Blocks      int
	Start, End  time.Time
}

// Snapshot is the audit-block payload: the post-trade ledger state at one
// rebalance, plus the transactions booked there.
type Snapshot struct {
	Time         time.Time            `json:"time"`
	Cash         float64              `json:"cash"`
	Value        float64              `json:"value,omitempty"`
	Positions    []ledger.Position    `json:"positions"`
	Transactions []ledger.Transaction `json:"transactions"`
}

// Driver owns the ledger and audit chain for exactly one run.
type Driver struct {
	cfg    Config
	state  State
	runID  string
	ledger *ledger.Ledger
	chain  *chain.Chain
	log    *slog.Logger
}

// New validates the configuration and returns a driver in
// StateInitialized.
func New(cfg Config) (*Driver, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("backtest: Source is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("backtest: Provider is required")
	}
	if cfg.Scheduler == nil {
		return nil, fmt.Errorf("backtest: Scheduler is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("backtest: Store is required")
	}
	if len(cfg.Universe) == 0 {
		return nil, fmt.Errorf("backtest: Universe is required")
	}
	if cfg.End.Before(cfg.Start) {
		return nil, fmt.Errorf("backtest: End %s is before Start %s",
			cfg.End.Format("2006-01-02"), cfg.Start.Format("2006-01-02"))
	}
	if cfg.InitialCash <= 0 {
		return nil, fmt.Errorf("backtest: InitialCash must be positive")
	}

	if cfg.Lookback == 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.Journal == nil {
		cfg.Journal = journal.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	runID := id.New()
	if cfg.ChainName == "" {
		cfg.ChainName = id.ChainName("backtest")
	}

	return &Driver{
		cfg:    cfg,
		state:  StateInitialized,
		runID:  runID,
		ledger: ledger.New(cfg.InitialCash, cfg.Logger),
		log:    cfg.Logger.With("run_id", runID, "chain", cfg.ChainName),
	}, nil
}

// State returns the driver's current lifecycle phase.
func (d *Driver) State() State { return d.state }

// RunID returns the run's unique id.
func (d *Driver) RunID() string { return d.runID }

// Ledger exposes the run's ledger for inspection. The driver remains its
// sole mutator.
func (d *Driver) Ledger() *ledger.Ledger { return d.ledger }

// Chain returns the audit chain built by Run, or nil before Run.
func (d *Driver) Chain() *chain.Chain { return d.chain }

// Run executes the backtest. The single up-front history fetch is the
// only fatal step: if it errors or comes back empty the driver moves to
// StateFailed. Trade rejections and per-ticker price gaps are logged and
// absorbed; the run always walks every day from Start to End inclusive.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	if d.state != StateInitialized {
		return Result{}, fmt.Errorf("backtest: driver already ran (state %s)", d.state)
	}
	d.state = StateRunning
	d.log.Info("run started",
		"start", d.cfg.Start.Format("2006-01-02"),
		"end", d.cfg.End.Format("2006-01-02"),
		"universe", d.cfg.Universe)

	hist, err := d.cfg.Source.GetPriceHistory(ctx, d.cfg.Universe, d.cfg.Start, d.cfg.End)
	if err != nil {
		d.state = StateFailed
		d.log.Error("price history fetch failed", "err", err)
		return Result{}, fmt.Errorf("backtest: fetch price history: %w", err)
	}
	if hist.Empty() {
		d.state = StateFailed
		d.log.Error("price history empty")
		return Result{}, fmt.Errorf("backtest: fetch price history: %w", data.ErrNoData)
	}

	provider := d.cfg.Provider(hist, d.cfg.Lookback)
	d.chain = chain.New(d.cfg.ChainName)

	start := midnightUTC(d.cfg.Start)
	end := midnightUTC(d.cfg.End)

	rebalances := 0
	booked := 0

	for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
		if !d.cfg.Scheduler.IsDue(t) {
			continue
		}

		info := provider.ComputeInformation(t)
		weights := provider.ComputePortfolio(t, info)

		if err := d.ledger.ExecutePortfolio(weights, info.Prices, t); err != nil {
			// Valuation failed for this rebalance; the run itself goes on.
			d.log.Warn("rebalance skipped", "time", t, "err", err)
		}

		txs := d.ledger.Transactions()
		batch := txs[booked:]
		booked = len(txs)

		value := 0.0
		if v, err := d.ledger.PortfolioValue(info.Prices); err == nil {
			value = v
		} else {
			d.log.Warn("valuation unavailable at rebalance", "time", t, "err", err)
		}

		d.journalBatch(t, batch, value)
		d.appendBlock(t, batch, value)
		rebalances++
		d.log.Info("rebalanced", "time", t.Format("2006-01-02"),
			"trades", len(batch), "value", value)
	}

	finalValue, err := d.ledger.PortfolioValue(hist.PricesAt(end))
	if err != nil {
		// Every held ticker was bought at a priced date, so this should
		// not happen; fall back to cash rather than failing a finished run.
		d.log.Warn("final valuation incomplete", "err", err)
		finalValue = d.ledger.Cash()
	}

	if err := d.cfg.Store.Persist(d.chain); err != nil {
		d.state = StateFailed
		d.log.Error("audit chain persist failed", "err", err)
		return Result{}, fmt.Errorf("backtest: persist chain: %w", err)
	}

	d.state = StateCompleted
	d.log.Info("run completed", "final_value", finalValue, "rebalances", rebalances)

	return Result{
		RunID:       d.runID,
		ChainName:   d.cfg.ChainName,
		InitialCash: d.cfg.InitialCash,
		FinalValue:  finalValue,
		Rebalances:  rebalances,
		Blocks:      d.chain.Len(),
		Start:       start,
		End:         end,
	}, nil
}

func (d *Driver) journalBatch(t time.Time, batch []ledger.Transaction, value float64) {
	for _, tx := range batch {
		err := d.cfg.Journal.RecordTransaction(journal.TransactionRecord{
			RunID:    d.runID,
			Time:     tx.Time,
			Action:   string(tx.Action),
			Ticker:   tx.Ticker,
			Quantity: tx.Quantity,
			Price:    tx.Price,
			Cash:     tx.Cash,
		})
		if err != nil {
			d.log.Warn("journal transaction failed", "err", err)
		}
	}
	err := d.cfg.Journal.RecordValuation(journal.ValuationSnapshot{
		RunID:     d.runID,
		Time:      t,
		Cash:      d.ledger.Cash(),
		Value:     value,
		Positions: len(d.ledger.Positions()),
	})
	if err != nil {
		d.log.Warn("journal valuation failed", "err", err)
	}
}

func (d *Driver) appendBlock(t time.Time, batch []ledger.Transaction, value float64) {
	snap := Snapshot{
		Time:         t,
		Cash:         d.ledger.Cash(),
		Value:        value,
		Positions:    d.ledger.Positions(),
		Transactions: batch,
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		// Snapshot is plain data; marshal cannot realistically fail. Keep
		// the one-block-per-rebalance invariant anyway.
		d.log.Error("snapshot marshal failed", "err", err)
		payload = []byte(fmt.Sprintf(`{"time":%q,"error":%q}`, t.Format(time.RFC3339), err))
	}
	d.chain.Append(payload)
}

func midnightUTC(t time.Time) time.Time {
	y, m, day := t.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
