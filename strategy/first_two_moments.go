package strategy

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/salonensamuli/pybacktestchain/data"
)

// minObservations is the smallest number of aligned daily returns the
// moment estimates are computed from. Below it the provider falls back to
// equal weights.
const minObservations = 3

// ridge keeps the covariance matrix positive definite when the window is
// short relative to the universe.
const ridge = 1e-8

// FirstTwoMoments estimates the mean vector and covariance matrix of daily
// returns over the trailing window and targets the long-only normalized
// solution of Σw = μ. Windows too short to estimate moments, or with a
// covariance matrix that will not factorize, fall back to equal weights.
type FirstTwoMoments struct {
	History  *data.History
	Lookback time.Duration
}

func (p *FirstTwoMoments) ComputeInformation(t time.Time) InformationSet {
	w := p.History.Window(t, p.Lookback)
	return InformationSet{AsOf: t, Prices: w.PricesAt(t), History: w}
}

func (p *FirstTwoMoments) ComputePortfolio(_ time.Time, info InformationSet) map[string]float64 {
	tickers := make([]string, 0, len(info.Prices))
	for ticker := range info.Prices {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	if len(tickers) == 0 {
		return map[string]float64{}
	}

	returns, ok := alignedReturns(info.History, tickers)
	if !ok {
		return equalWeights(tickers)
	}

	n := len(tickers)
	obs := len(returns) / n

	mu := make([]float64, n)
	col := make([]float64, obs)
	for j := 0; j < n; j++ {
		for i := 0; i < obs; i++ {
			col[i] = returns[i*n+j]
		}
		mu[j] = stat.Mean(col, nil)
	}

	cov := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(cov, mat.NewDense(obs, n, returns), nil)
	for j := 0; j < n; j++ {
		cov.SetSym(j, j, cov.At(j, j)+ridge)
	}

	var chol mat.Cholesky
	if !chol.Factorize(cov) {
		return equalWeights(tickers)
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, mat.NewVecDense(n, mu)); err != nil {
		return equalWeights(tickers)
	}

	// Long-only: clamp shorts to zero and renormalize.
	sum := 0.0
	raw := make([]float64, n)
	for j := 0; j < n; j++ {
		v := w.AtVec(j)
		if v < 0 {
			v = 0
		}
		raw[j] = v
		sum += v
	}
	if sum <= 0 {
		return equalWeights(tickers)
	}

	weights := make(map[string]float64, n)
	for j, ticker := range tickers {
		weights[ticker] = raw[j] / sum
	}
	return weights
}

// alignedReturns builds a row-major obs x len(tickers) matrix of simple
// daily returns over the dates where every ticker has a price.
func alignedReturns(h *data.History, tickers []string) ([]float64, bool) {
	byDate := make(map[time.Time]map[string]float64)
	for _, b := range h.Bars() {
		m, ok := byDate[b.Date]
		if !ok {
			m = make(map[string]float64, len(tickers))
			byDate[b.Date] = m
		}
		m[b.Ticker] = b.AdjClose
	}

	var dates []time.Time
	for d, m := range byDate {
		if len(m) < len(tickers) {
			continue
		}
		complete := true
		for _, t := range tickers {
			if _, ok := m[t]; !ok {
				complete = false
				break
			}
		}
		if complete {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	if len(dates) < minObservations+1 {
		return nil, false
	}

	n := len(tickers)
	obs := len(dates) - 1
	returns := make([]float64, obs*n)
	for i := 1; i < len(dates); i++ {
		prev, cur := byDate[dates[i-1]], byDate[dates[i]]
		for j, ticker := range tickers {
			if prev[ticker] == 0 {
				return nil, false
			}
			returns[(i-1)*n+j] = cur[ticker]/prev[ticker] - 1
		}
	}
	return returns, true
}

func equalWeights(tickers []string) map[string]float64 {
	weights := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		weights[t] = 1.0 / float64(len(tickers))
	}
	return weights
}
