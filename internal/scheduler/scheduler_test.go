package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
)

type fakeWatchlist struct {
	entries []*models.WatchlistEntry
	err     error
}

func (f *fakeWatchlist) GetWatchlist(enabledOnly bool) ([]*models.WatchlistEntry, error) {
	return f.entries, f.err
}

func TestRunOnce(t *testing.T) {
	t.Run("analyzes every watchlist symbol", func(t *testing.T) {
		watchlist := &fakeWatchlist{entries: []*models.WatchlistEntry{
			{Symbol: "AAPL"}, {Symbol: "MSFT"}, {Symbol: "TSLA"},
		}}

		var analyzed []string
		s := New(watchlist, func(_ context.Context, symbol string) error {
			analyzed = append(analyzed, symbol)
			return nil
		})

		s.runOnce()
		assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, analyzed)
	})

	t.Run("one failing symbol does not stop the sweep", func(t *testing.T) {
		watchlist := &fakeWatchlist{entries: []*models.WatchlistEntry{
			{Symbol: "AAPL"}, {Symbol: "BAD"}, {Symbol: "TSLA"},
		}}

		var analyzed []string
		s := New(watchlist, func(_ context.Context, symbol string) error {
			analyzed = append(analyzed, symbol)
			if symbol == "BAD" {
				return errors.New("no price data")
			}
			return nil
		})

		s.runOnce()
		assert.Len(t, analyzed, 3)
	})

	t.Run("watchlist load failure skips the sweep", func(t *testing.T) {
		watchlist := &fakeWatchlist{err: errors.New("connection refused")}

		called := false
		s := New(watchlist, func(_ context.Context, _ string) error {
			called = true
			return nil
		})

		s.runOnce()
		assert.False(t, called)
	})
}

func TestStartValidatesSpec(t *testing.T) {
	s := New(&fakeWatchlist{}, func(_ context.Context, _ string) error { return nil })
	defer s.Stop()

	require.Error(t, New(&fakeWatchlist{}, nil).Start("not a cron spec"))
	assert.NoError(t, s.Start("0 */15 * * * *"))
}
