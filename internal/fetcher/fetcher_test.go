package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func barsJSON(symbol string, dates ...string) string {
	body := fmt.Sprintf(`{"symbol":%q,"bars":[`, symbol)
	for i, d := range dates {
		if i > 0 {
			body += ","
		}
		px := 100.0 + float64(i)
		body += fmt.Sprintf(`{"date":%q,"open":%g,"high":%g,"low":%g,"close":%g,"volume":1000}`,
			d, px-1, px+1, px-2, px)
	}
	return body + "]}"
}

func TestFetchDailyBars(t *testing.T) {
	t.Run("fetches and validates ascending series", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/daily/AAPL", r.URL.Path)
			assert.Equal(t, "30", r.URL.Query().Get("days"))
			assert.Equal(t, "secret", r.URL.Query().Get("apikey"))
			fmt.Fprint(w, barsJSON("AAPL", "2024-01-15", "2024-01-16", "2024-01-17"))
		}))
		defer srv.Close()

		f := New(srv.URL, "secret", 100, 10, 5*time.Second)
		series, err := f.FetchDailyBars(context.Background(), "AAPL", 30)
		require.NoError(t, err)
		require.Len(t, series, 3)
		assert.Equal(t, []float64{100, 101, 102}, series.Closes())
	})

	t.Run("rejects non-ascending series", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, barsJSON("AAPL", "2024-01-16", "2024-01-15"))
		}))
		defer srv.Close()

		f := New(srv.URL, "", 100, 10, 5*time.Second)
		_, err := f.FetchDailyBars(context.Background(), "AAPL", 30)
		assert.Error(t, err)
	})

	t.Run("rejects non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		f := New(srv.URL, "", 100, 10, 5*time.Second)
		_, err := f.FetchDailyBars(context.Background(), "AAPL", 30)
		assert.Error(t, err)
	})

	t.Run("breaker opens after consecutive failures", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		f := New(srv.URL, "", 1000, 1000, 5*time.Second)
		for i := 0; i < 10; i++ {
			_, err := f.FetchDailyBars(context.Background(), "AAPL", 30)
			assert.Error(t, err)
		}
		// the breaker trips at 5 consecutive failures; later calls fail fast
		assert.Equal(t, int32(5), calls.Load())
	})

	t.Run("cancelled context aborts before request", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// zero-burst limiter forces a wait, which the cancelled context aborts
		f := New(srv.URL, "", 1, 0, 5*time.Second)
		_, err := f.FetchDailyBars(ctx, "AAPL", 30)
		assert.Error(t, err)
		assert.Equal(t, int32(0), calls.Load())
	})
}
