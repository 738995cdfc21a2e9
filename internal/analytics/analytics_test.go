package analytics

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/marketcli/internal/history"
	"github.com/studiowebux/marketcli/internal/types"
)

func seed(t *testing.T) (*history.Manager, *Manager) {
	t.Helper()
	h, err := history.NewManager(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	ctx := context.Background()
	calls := []struct {
		market string
		result types.CallResult
	}{
		{"spot", types.CallResult{Endpoint: "Spot Ping", Method: "GET", URL: "u", Status: 200, Duration: 10, ResponseSize: 2}},
		{"spot", types.CallResult{Endpoint: "Spot Ping", Method: "GET", URL: "u", Status: 200, Duration: 30, ResponseSize: 2}},
		{"spot", types.CallResult{Endpoint: "Spot Ping", Method: "GET", URL: "u", Status: 500, Duration: 50, Error: "HTTP error! status: 500"}},
		{"spot", types.CallResult{Endpoint: "Spot Ping", Method: "GET", URL: "u", Status: 0, Duration: 5, Error: "Connection refused"}},
		{"futures", types.CallResult{Endpoint: "Futures Depth", Method: "GET", URL: "u", Status: 400, Duration: 20, Error: "symbol query parameter is required"}},
	}
	for _, c := range calls {
		r := c.result
		_, err := h.Save(ctx, c.market, &r)
		require.NoError(t, err)
	}

	return h, NewManager(h.DB())
}

func TestStatsPerEndpoint(t *testing.T) {
	_, m := seed(t)

	list, err := m.StatsPerEndpoint(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	var ping Stats
	for _, s := range list {
		if s.Endpoint == "Spot Ping" {
			ping = s
		}
	}

	assert.Equal(t, "spot", ping.Market)
	assert.Equal(t, 4, ping.TotalCalls)
	assert.Equal(t, 2, ping.SuccessCount)
	assert.Equal(t, 2, ping.FailureCount)
	assert.Equal(t, 1, ping.TransportFailures)
	assert.InDelta(t, 23.75, ping.AvgDurationMs, 0.001)
	assert.Equal(t, int64(5), ping.MinDurationMs)
	assert.Equal(t, int64(50), ping.MaxDurationMs)
	assert.Equal(t, int64(4), ping.TotalRespSize)
	assert.Equal(t, map[int]int{0: 1, 200: 2, 500: 1}, ping.StatusCodes)
	assert.Equal(t, []int{0, 200, 500}, SortedStatusCodes(ping))
	assert.InDelta(t, 50.0, ping.SuccessRate(), 0.001)
	assert.False(t, ping.LastCalled.IsZero())
}

func TestStatsForEndpoint(t *testing.T) {
	_, m := seed(t)
	ctx := context.Background()

	s, ok, err := m.StatsForEndpoint(ctx, "Futures Depth")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, s.TotalCalls)
	assert.Equal(t, map[int]int{400: 1}, s.StatusCodes)

	_, ok, err = m.StatsForEndpoint(ctx, "Spot Klines")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStats_Empty(t *testing.T) {
	h, err := history.NewManager(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer h.Close()

	list, err := NewManager(h.DB()).StatsPerEndpoint(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, Totals(list).TotalCalls)
	assert.Equal(t, 0.0, Totals(list).SuccessRate())
}

func TestTotals(t *testing.T) {
	_, m := seed(t)
	list, err := m.StatsPerEndpoint(context.Background())
	require.NoError(t, err)

	total := Totals(list)
	assert.Equal(t, "all", total.Endpoint)
	assert.Equal(t, 5, total.TotalCalls)
	assert.Equal(t, 2, total.SuccessCount)
	assert.Equal(t, 3, total.FailureCount)
	assert.InDelta(t, 23.0, total.AvgDurationMs, 0.001)
	assert.Equal(t, int64(5), total.MinDurationMs)
	assert.Equal(t, int64(50), total.MaxDurationMs)
	assert.Equal(t, 2, total.StatusCodes[200])
	assert.Equal(t, 1, total.StatusCodes[400])
}
