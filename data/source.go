package data

import (
	"context"
	"time"
)

// PriceSource produces the full price history for a universe over a date
// range. The driver calls it exactly once per run, up front.
type PriceSource interface {
	GetPriceHistory(ctx context.Context, tickers []string, start, end time.Time) (*History, error)
}

// MemorySource serves a pre-built history, filtered to the requested
// universe and range. Used by tests and canned demos.
type MemorySource struct {
	History *History
}

func (s *MemorySource) GetPriceHistory(_ context.Context, tickers []string, start, end time.Time) (*History, error) {
	want := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		want[t] = struct{}{}
	}

	var bars []Bar
	for _, b := range s.History.Bars() {
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		if _, ok := want[b.Ticker]; !ok {
			continue
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return NewHistory(bars), nil
}
