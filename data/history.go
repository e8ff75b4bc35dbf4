// Package data provides the price-history table a backtest replays and the
// sources that produce it.
package data

import (
	"errors"
	"sort"
	"time"
)

// ErrNoData is returned when a source yields no usable rows for the
// requested universe and range.
var ErrNoData = errors.New("data: no price data")

// Bar is one observation: the adjusted close of one ticker on one date.
type Bar struct {
	Date     time.Time
	Ticker   string
	AdjClose float64
}

// History is an in-memory price table sorted by date. It is immutable once
// built; windows share the underlying storage.
type History struct {
	bars []Bar
}

// NewHistory sorts the given bars by date (stable, so same-day rows keep
// their input order) and wraps them.
func NewHistory(bars []Bar) *History {
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return &History{bars: sorted}
}

// Len returns the number of rows.
func (h *History) Len() int { return len(h.bars) }

// Empty reports whether the history holds no rows at all.
func (h *History) Empty() bool { return len(h.bars) == 0 }

// Bars returns the rows in date order.
func (h *History) Bars() []Bar {
	out := make([]Bar, len(h.bars))
	copy(out, h.bars)
	return out
}

// Tickers returns the distinct tickers present, sorted.
func (h *History) Tickers() []string {
	seen := make(map[string]struct{})
	for _, b := range h.bars {
		seen[b.Ticker] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Window returns the slice of history with dates in (t-lookback, t]. This
// is the only view a strategy ever sees, which rules out look-ahead by
// construction.
func (h *History) Window(t time.Time, lookback time.Duration) *History {
	from := t.Add(-lookback)
	lo := sort.Search(len(h.bars), func(i int) bool { return h.bars[i].Date.After(from) })
	hi := sort.Search(len(h.bars), func(i int) bool { return h.bars[i].Date.After(t) })
	return &History{bars: h.bars[lo:hi]}
}

// PricesAt returns, per ticker, the last adjusted close observed on or
// before t.
func (h *History) PricesAt(t time.Time) map[string]float64 {
	prices := make(map[string]float64)
	for _, b := range h.bars {
		if b.Date.After(t) {
			break
		}
		prices[b.Ticker] = b.AdjClose
	}
	return prices
}

// Start returns the earliest date in the history.
func (h *History) Start() time.Time {
	if len(h.bars) == 0 {
		return time.Time{}
	}
	return h.bars[0].Date
}

// End returns the latest date in the history.
func (h *History) End() time.Time {
	if len(h.bars) == 0 {
		return time.Time{}
	}
	return h.bars[len(h.bars)-1].Date
}
