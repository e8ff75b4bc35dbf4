// Package strategy turns price history into target portfolio weights.
// Providers only ever see history on or before the rebalance date; the
// window construction in package data enforces that.
package strategy

import (
	"fmt"
	"strings"
	"time"

	"github.com/salonensamuli/pybacktestchain/data"
)

// InformationSet is the snapshot a provider works from at one rebalance
// date: the trailing history window and the latest price per ticker.
type InformationSet struct {
	AsOf    time.Time
	Prices  map[string]float64
	History *data.History
}

// Provider computes an information snapshot for a date and, from it, the
// target portfolio weights. Weights may be negative and need not sum to
// one; a ticker absent from the map has zero target weight.
type Provider interface {
	ComputeInformation(t time.Time) InformationSet
	ComputePortfolio(t time.Time, info InformationSet) map[string]float64
}

// Factory builds a provider over a fetched history with the configured
// lookback window.
type Factory func(h *data.History, lookback time.Duration) Provider

var registry = make(map[string]Factory)

// Register makes a provider factory available under a name.
func Register(name string, f Factory) {
	registry[strings.ToLower(strings.TrimSpace(name))] = f
}

// ByName returns a registered provider factory.
func ByName(name string) (Factory, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("strategy: unknown provider %q", name)
	}
	return f, nil
}

func init() {
	Register("equal-weight", func(h *data.History, lookback time.Duration) Provider {
		return &EqualWeight{History: h, Lookback: lookback}
	})
	Register("first-two-moments", func(h *data.History, lookback time.Duration) Provider {
		return &FirstTwoMoments{History: h, Lookback: lookback}
	})
}
