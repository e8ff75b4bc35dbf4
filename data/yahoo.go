package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// YahooSource fetches daily adjusted closes from the Yahoo Finance v8
// chart API, one request per ticker. It needs no API key.
type YahooSource struct {
	// BaseURL defaults to the public endpoint; tests point it at a local
	// server.
	BaseURL string
	Client  *http.Client
}

const yahooBaseURL = "https://query2.finance.yahoo.com"

// NewYahooSource returns a source with an 8-second request timeout.
func NewYahooSource() *YahooSource {
	return &YahooSource{
		BaseURL: yahooBaseURL,
		Client:  &http.Client{Timeout: 8 * time.Second},
	}
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Adjclose []struct {
					Adjclose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (s *YahooSource) GetPriceHistory(ctx context.Context, tickers []string, start, end time.Time) (*History, error) {
	var bars []Bar
	for _, ticker := range tickers {
		tb, err := s.fetch(ctx, ticker, start, end)
		if err != nil {
			return nil, fmt.Errorf("data: yahoo %s: %w", ticker, err)
		}
		bars = append(bars, tb...)
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return NewHistory(bars), nil
}

func (s *YahooSource) fetch(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error) {
	base := s.BaseURL
	if base == "" {
		base = yahooBaseURL
	}
	cli := s.Client
	if cli == nil {
		cli = &http.Client{Timeout: 8 * time.Second}
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", fmt.Sprint(start.Unix()))
	// period2 is exclusive; push it past the end of the last day.
	q.Set("period2", fmt.Sprint(end.Add(24*time.Hour).Unix()))
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", base, url.PathEscape(ticker), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "backtestchain/1.0")

	resp, err := cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	var raw yahooChart
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	if raw.Chart.Error != nil {
		return nil, fmt.Errorf("%s: %s", raw.Chart.Error.Code, raw.Chart.Error.Description)
	}
	if len(raw.Chart.Result) == 0 {
		return nil, fmt.Errorf("no result")
	}

	res := raw.Chart.Result[0]
	var closes []*float64
	if len(res.Indicators.Adjclose) > 0 {
		closes = res.Indicators.Adjclose[0].Adjclose
	} else if len(res.Indicators.Quote) > 0 {
		closes = res.Indicators.Quote[0].Close
	}

	var bars []Bar
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		day := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		bars = append(bars, Bar{Date: day, Ticker: ticker, AdjClose: *closes[i]})
	}
	return bars, nil
}
