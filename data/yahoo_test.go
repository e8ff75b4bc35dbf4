package data

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYahooSourceParsesChart(t *testing.T) {
	t.Parallel()

	jan2 := date(2020, time.January, 2).Unix()
	jan3 := date(2020, time.January, 3).Unix()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprintf(w, `{"chart":{"result":[{
			"timestamp":[%d,%d],
			"indicators":{"adjclose":[{"adjclose":[100.5,null]}],
			"quote":[{"close":[101.0,102.0]}]}
		}]}}`, jan2, jan3)
	}))
	t.Cleanup(srv.Close)

	src := &YahooSource{BaseURL: srv.URL, Client: srv.Client()}
	h, err := src.GetPriceHistory(context.Background(), []string{"aapl"},
		date(2020, time.January, 1), date(2020, time.January, 31))
	require.NoError(t, err)

	// The null adjclose row is dropped.
	require.Equal(t, 1, h.Len())
	b := h.Bars()[0]
	assert.Equal(t, "AAPL", b.Ticker)
	assert.Equal(t, date(2020, time.January, 2), b.Date)
	assert.InDelta(t, 100.5, b.AdjClose, 1e-9)
}

func TestYahooSourceAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	t.Cleanup(srv.Close)

	src := &YahooSource{BaseURL: srv.URL, Client: srv.Client()}
	_, err := src.GetPriceHistory(context.Background(), []string{"GHOST"},
		date(2020, time.January, 1), date(2020, time.January, 31))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not Found")
}

func TestYahooSourceHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	src := &YahooSource{BaseURL: srv.URL, Client: srv.Client()}
	_, err := src.GetPriceHistory(context.Background(), []string{"AAPL"},
		date(2020, time.January, 1), date(2020, time.January, 31))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 429")
}
