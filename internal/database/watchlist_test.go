package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
)

func TestWatchlistRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("AddToWatchlist defaults priority to medium", func(t *testing.T) {
		testDB.TruncateAll(t)

		entry := &models.WatchlistEntry{Symbol: "AAPL", Enabled: true}
		require.NoError(t, testDB.AddToWatchlist(entry))

		got, err := testDB.GetWatchlistEntry("AAPL")
		require.NoError(t, err)
		assert.Equal(t, 2, got.Priority)
		assert.True(t, got.Enabled)
	})

	t.Run("AddToWatchlist upserts on conflict", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.AddToWatchlist(&models.WatchlistEntry{
			Symbol: "AAPL", Enabled: true, Priority: 1,
		}))
		minConf := 75.0
		require.NoError(t, testDB.AddToWatchlist(&models.WatchlistEntry{
			Symbol: "AAPL", Enabled: false, Priority: 3, MinConfidence: &minConf,
		}))

		got, err := testDB.GetWatchlistEntry("AAPL")
		require.NoError(t, err)
		assert.False(t, got.Enabled)
		assert.Equal(t, 3, got.Priority)
		require.NotNil(t, got.MinConfidence)
		assert.Equal(t, 75.0, *got.MinConfidence)
	})

	t.Run("GetWatchlist filters disabled and orders by priority", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.AddToWatchlist(&models.WatchlistEntry{Symbol: "MSFT", Enabled: true, Priority: 3}))
		require.NoError(t, testDB.AddToWatchlist(&models.WatchlistEntry{Symbol: "AAPL", Enabled: true, Priority: 1}))
		require.NoError(t, testDB.AddToWatchlist(&models.WatchlistEntry{Symbol: "TSLA", Enabled: false, Priority: 2}))

		enabled, err := testDB.GetWatchlist(true)
		require.NoError(t, err)
		require.Len(t, enabled, 2)
		assert.Equal(t, "AAPL", enabled[0].Symbol)
		assert.Equal(t, "MSFT", enabled[1].Symbol)

		all, err := testDB.GetWatchlist(false)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("UpdateWatchlistAnalysis records latest signal", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.AddToWatchlist(&models.WatchlistEntry{Symbol: "AAPL", Enabled: true}))

		analyzedAt := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
		require.NoError(t, testDB.UpdateWatchlistAnalysis("AAPL", "BUY", 12.5, analyzedAt))

		got, err := testDB.GetWatchlistEntry("AAPL")
		require.NoError(t, err)
		assert.Equal(t, "BUY", got.LastSignal)
		require.NotNil(t, got.LastScore)
		assert.Equal(t, 12.5, *got.LastScore)
		require.NotNil(t, got.LastAnalyzed)
		assert.True(t, got.LastAnalyzed.Equal(analyzedAt))
	})

	t.Run("UpdateWatchlistAnalysis missing symbol errors", func(t *testing.T) {
		testDB.TruncateAll(t)

		err := testDB.UpdateWatchlistAnalysis("NOPE", "HOLD", 0, time.Now())
		assert.Error(t, err)
	})

	t.Run("SetWatchlistEnabled toggles entry", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.AddToWatchlist(&models.WatchlistEntry{Symbol: "AAPL", Enabled: true}))
		require.NoError(t, testDB.SetWatchlistEnabled("AAPL", false))

		got, err := testDB.GetWatchlistEntry("AAPL")
		require.NoError(t, err)
		assert.False(t, got.Enabled)
	})

	t.Run("RemoveFromWatchlist deletes entry", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.AddToWatchlist(&models.WatchlistEntry{Symbol: "AAPL", Enabled: true}))
		require.NoError(t, testDB.RemoveFromWatchlist("AAPL"))

		_, err := testDB.GetWatchlistEntry("AAPL")
		assert.Error(t, err)
		assert.Error(t, testDB.RemoveFromWatchlist("AAPL"))
	})
}
