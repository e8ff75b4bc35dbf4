// Package ledger tracks cash, open positions, and the transaction history
// for a single backtest run. One Ledger is owned by exactly one driver; it
// is not safe for concurrent use and does not need to be.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// ErrMissingPrice is returned by PortfolioValue when a held ticker is
// absent from the supplied price map.
var ErrMissingPrice = errors.New("ledger: missing price data")

// Action identifies the side of a booked transaction.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Position is a held quantity of one instrument together with its
// volume-weighted average entry price. Positions exist only while the
// quantity is positive; a sell that drains a position removes it.
type Position struct {
	Ticker     string  `json:"ticker"`
	Quantity   int64   `json:"quantity"`
	EntryPrice float64 `json:"entry_price"`
}

// Transaction is one immutable entry in the transaction log. Cash is the
// ledger's cash balance immediately after the trade was booked.
type Transaction struct {
	Time     time.Time `json:"time"`
	Action   Action    `json:"action"`
	Ticker   string    `json:"ticker"`
	Quantity int64     `json:"quantity"`
	Price    float64   `json:"price"`
	Cash     float64   `json:"cash"`
}

// RejectReason names why a trade was not executed.
type RejectReason string

const (
	RejectNone               RejectReason = ""
	RejectInsufficientCash   RejectReason = "insufficient cash"
	RejectInsufficientShares RejectReason = "insufficient shares"
)

// TradeResult reports the outcome of a Buy or Sell. A rejected trade is a
// no-op: the ledger is left exactly as it was. Callers that want
// best-effort semantics can simply ignore the result.
type TradeResult struct {
	Executed bool
	Reason   RejectReason
}

// Ledger owns the cash balance, the position map, and the append-only
// transaction log.
type Ledger struct {
	cash      float64
	positions map[string]*Position
	log       []Transaction
	logger    *slog.Logger
}

// New returns a Ledger seeded with the given cash balance. A nil logger
// falls back to slog.Default().
func New(initialCash float64, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		cash:      initialCash,
		positions: make(map[string]*Position),
		logger:    logger,
	}
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// Position returns a copy of the position for ticker, if one is held.
func (l *Ledger) Position(ticker string) (Position, bool) {
	p, ok := l.positions[ticker]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Positions returns a copy of all currently held positions.
func (l *Ledger) Positions() []Position {
	out := make([]Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Transactions returns the transaction log in booking order.
func (l *Ledger) Transactions() []Transaction {
	out := make([]Transaction, len(l.log))
	copy(out, l.log)
	return out
}

// Buy debits cash and opens or grows a position at the volume-weighted
// average entry price. If cash cannot cover price*quantity the trade is
// rejected and nothing changes.
func (l *Ledger) Buy(ticker string, quantity int64, price float64, t time.Time) TradeResult {
	cost := price * float64(quantity)
	if l.cash < cost {
		l.logger.Warn("buy rejected",
			"reason", string(RejectInsufficientCash),
			"ticker", ticker, "quantity", quantity, "price", price, "cash", l.cash)
		return TradeResult{Reason: RejectInsufficientCash}
	}

	l.cash -= cost
	if p, ok := l.positions[ticker]; ok {
		newQty := p.Quantity + quantity
		p.EntryPrice = (p.EntryPrice*float64(p.Quantity) + price*float64(quantity)) / float64(newQty)
		p.Quantity = newQty
	} else {
		l.positions[ticker] = &Position{Ticker: ticker, Quantity: quantity, EntryPrice: price}
	}
	l.book(t, ActionBuy, ticker, quantity, price)
	return TradeResult{Executed: true}
}

// Sell credits cash and shrinks a position. Selling more shares than are
// held (or a ticker with no position) is rejected and nothing changes. A
// position whose quantity reaches zero is removed from the ledger.
func (l *Ledger) Sell(ticker string, quantity int64, price float64, t time.Time) TradeResult {
	p, ok := l.positions[ticker]
	if !ok || p.Quantity < quantity {
		held := int64(0)
		if ok {
			held = p.Quantity
		}
		l.logger.Warn("sell rejected",
			"reason", string(RejectInsufficientShares),
			"ticker", ticker, "quantity", quantity, "held", held)
		return TradeResult{Reason: RejectInsufficientShares}
	}

	p.Quantity -= quantity
	l.cash += price * float64(quantity)
	if p.Quantity == 0 {
		delete(l.positions, ticker)
	}
	l.book(t, ActionSell, ticker, quantity, price)
	return TradeResult{Executed: true}
}

// PortfolioValue returns cash plus the mark-to-market value of every held
// position. A held ticker missing from prices fails the whole call.
func (l *Ledger) PortfolioValue(prices map[string]float64) (float64, error) {
	total := l.cash
	for ticker, p := range l.positions {
		px, ok := prices[ticker]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingPrice, ticker)
		}
		total += float64(p.Quantity) * px
	}
	return total, nil
}

// ExecutePortfolio trades toward the given target weights. The total
// portfolio value is computed once, before any trade, and every ticker in
// the call is sized against that same snapshot — later trades in the call
// deliberately do not see the cash effects of earlier ones. A ticker with
// no price is skipped; the rest of the call proceeds. Tickers are visited
// in sorted order so the transaction log is deterministic.
func (l *Ledger) ExecutePortfolio(weights, prices map[string]float64, t time.Time) error {
	total, err := l.PortfolioValue(prices)
	if err != nil {
		return err
	}

	tickers := make([]string, 0, len(weights))
	for ticker := range weights {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		price, ok := prices[ticker]
		if !ok {
			l.logger.Warn("no price for ticker, skipping", "ticker", ticker, "time", t)
			continue
		}
		if price <= 0 {
			l.logger.Warn("non-positive price for ticker, skipping", "ticker", ticker, "price", price)
			continue
		}

		var held int64
		if p, ok := l.positions[ticker]; ok {
			held = p.Quantity
		}

		targetValue := total * weights[ticker]
		currentValue := float64(held) * price
		qty := int64((targetValue - currentValue) / price) // truncates toward zero

		switch {
		case qty > 0:
			l.Buy(ticker, qty, price, t)
		case qty < 0:
			l.Sell(ticker, -qty, price, t)
		}
	}
	return nil
}

func (l *Ledger) book(t time.Time, action Action, ticker string, quantity int64, price float64) {
	l.log = append(l.log, Transaction{
		Time:     t,
		Action:   action,
		Ticker:   ticker,
		Quantity: quantity,
		Price:    price,
		Cash:     l.cash,
	})
}
