// Package fetcher pulls daily price history from the upstream market-data
// provider, with client-side rate limiting and a circuit breaker so a
// degraded provider cannot stall the analyzer.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
)

// PriceFetcher retrieves daily price history for a symbol.
type PriceFetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) (models.PriceSeries, error)
}

// HTTPFetcher is the production PriceFetcher against a JSON REST provider.
type HTTPFetcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient overrides the underlying HTTP client, used in tests.
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) { f.client = c }
}

// New creates an HTTPFetcher with the given rate limit and a breaker that
// trips after 5 consecutive failures and probes again after 30 seconds.
func New(baseURL, apiKey string, requestsPerSec float64, burst int, timeout time.Duration, opts ...Option) *HTTPFetcher {
	settings := gobreaker.Settings{Name: "price-fetcher"}
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	}
	settings.Timeout = 30 * time.Second

	f := &HTTPFetcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// barsResponse is the provider's wire format for daily history.
type barsResponse struct {
	Symbol string `json:"symbol"`
	Bars   []struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume int64   `json:"volume"`
	} `json:"bars"`
}

// FetchDailyBars retrieves up to days daily bars for symbol, ascending by
// date. The call waits on the rate limiter first, so a cancelled context
// returns before any request is made.
func (f *HTTPFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) (models.PriceSeries, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	result, err := f.breaker.Execute(func() (interface{}, error) {
		return f.fetch(ctx, symbol, days)
	})
	if err != nil {
		return nil, err
	}
	return result.(models.PriceSeries), nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, symbol string, days int) (models.PriceSeries, error) {
	u := fmt.Sprintf("%s/v1/daily/%s?days=%d&apikey=%s",
		f.baseURL, url.PathEscape(symbol), days, url.QueryEscape(f.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily bars for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d for %s", resp.StatusCode, symbol)
	}

	var body barsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	series := make(models.PriceSeries, 0, len(body.Bars))
	for _, b := range body.Bars {
		date, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid bar date %q for %s: %w", b.Date, symbol, err)
		}
		series = append(series, models.PricePoint{
			Date:   date,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}

	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("provider returned invalid series for %s: %w", symbol, err)
	}
	return series, nil
}
