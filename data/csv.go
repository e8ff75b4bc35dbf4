package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVSource reads price history from a date,ticker,adj_close file. A
// header row is tolerated. Dates may be 2006-01-02 or RFC 3339.
type CSVSource struct {
	Path string
}

func (s *CSVSource) GetPriceHistory(ctx context.Context, tickers []string, start, end time.Time) (*History, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("data: open %s: %w", s.Path, err)
	}
	defer f.Close()

	want := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		want[strings.ToUpper(t)] = struct{}{}
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var bars []Bar
	first := true
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("data: read %s: %w", s.Path, err)
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("data: bad row (need date,ticker,adj_close): %v", row)
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}

		date, err := parseDate(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("data: bad date %q: %w", row[0], err)
		}
		ticker := strings.ToUpper(strings.TrimSpace(row[1]))
		px, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("data: bad price %q: %w", row[2], err)
		}

		if date.Before(start) || date.After(end) {
			continue
		}
		if _, ok := want[ticker]; !ok {
			continue
		}
		bars = append(bars, Bar{Date: date, Ticker: ticker, AdjClose: px})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s over %s..%s", ErrNoData, s.Path,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return NewHistory(bars), nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
