package strategy

import (
	"time"

	"github.com/salonensamuli/pybacktestchain/data"
)

// EqualWeight targets 1/n in every ticker priced at the rebalance date.
type EqualWeight struct {
	History  *data.History
	Lookback time.Duration
}

func (p *EqualWeight) ComputeInformation(t time.Time) InformationSet {
	w := p.History.Window(t, p.Lookback)
	return InformationSet{AsOf: t, Prices: w.PricesAt(t), History: w}
}

func (p *EqualWeight) ComputePortfolio(_ time.Time, info InformationSet) map[string]float64 {
	n := len(info.Prices)
	weights := make(map[string]float64, n)
	if n == 0 {
		return weights
	}
	for ticker := range info.Prices {
		weights[ticker] = 1.0 / float64(n)
	}
	return weights
}
