package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/marketcli/internal/types"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	// deterministic, strictly increasing timestamps
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return m
}

func result(endpoint string, status int, errMsg string) *types.CallResult {
	return &types.CallResult{
		Endpoint:     endpoint,
		Method:       "GET",
		URL:          "http://localhost/api/crypto/x",
		Status:       status,
		Duration:     42,
		ResponseSize: 128,
		Error:        errMsg,
	}
}

func TestManager_SaveAndList(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	first, err := m.Save(ctx, "spot", result("Spot Ping", 200, ""))
	require.NoError(t, err)
	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err)

	_, err = m.Save(ctx, "futures", result("Futures Ping", 0, "Connection refused"))
	require.NoError(t, err)

	entries, err := m.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Futures Ping", entries[0].Endpoint)
	assert.Equal(t, "futures", entries[0].Market)
	assert.Equal(t, "Connection refused", entries[0].Error)
	assert.Equal(t, 0, entries[0].Status)

	assert.Equal(t, "Spot Ping", entries[1].Endpoint)
	assert.Equal(t, "", entries[1].Error)
	assert.Equal(t, int64(42), entries[1].Duration)
	assert.Equal(t, 128, entries[1].ResponseSize)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))
}

func TestManager_ListLimit(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	for i := 0; i < 5; i++ {
		_, err := m.Save(ctx, "spot", result("Spot Ping", 200, ""))
		require.NoError(t, err)
	}

	entries, err := m.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = m.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestManager_ListForEndpoint(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	_, _ = m.Save(ctx, "spot", result("Spot Ping", 200, ""))
	_, _ = m.Save(ctx, "spot", result("Spot Depth", 200, ""))
	_, _ = m.Save(ctx, "spot", result("Spot Ping", 500, "HTTP error! status: 500"))

	entries, err := m.ListForEndpoint(ctx, "Spot Ping", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 500, entries[0].Status)
	assert.Equal(t, 200, entries[1].Status)
}

func TestManager_GetDeleteClear(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	saved, err := m.Save(ctx, "spot", result("Spot Ping", 200, ""))
	require.NoError(t, err)
	_, _ = m.Save(ctx, "spot", result("Spot Time", 200, ""))

	got, err := m.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	require.NoError(t, m.Delete(ctx, saved.ID))
	_, err = m.Get(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, saved.ID), ErrNotFound)

	count, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, m.Clear(ctx))
	count, err = m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestManager_Resolve(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	saved, err := m.Save(ctx, "spot", result("Spot Ping", 200, ""))
	require.NoError(t, err)

	got, err := m.Resolve(ctx, saved.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)

	_, err = m.Resolve(ctx, "zzzz")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Resolve(ctx, "  "+saved.ID[:8]+" ")
	assert.NoError(t, err)

	_, _ = m.Save(ctx, "spot", result("Spot Time", 200, ""))
	_, err = m.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_ResolveTreatsWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	saved, err := m.Save(ctx, "spot", result("Spot Ping", 200, ""))
	require.NoError(t, err)

	for _, id := range []string{"%", "_", "%" + saved.ID[1:], "_" + saved.ID[1:8], "   "} {
		_, err := m.Resolve(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound, "id %q", id)
	}

	got, err := m.Resolve(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
}

func TestRecorder_ToggleWhileRecording(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	r := NewRecorder(m, true, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			r.Record(ctx, result("Spot Ping", 200, ""))
		}
	}()
	for i := 0; i < 20; i++ {
		r.SetEnabled(i%2 == 0)
	}
	<-done

	r.SetEnabled(false)
	assert.False(t, r.Enabled())
}

func TestManager_ReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	m, err := NewManager(path)
	require.NoError(t, err)
	_, err = m.Save(ctx, "spot", result("Spot Ping", 200, ""))
	require.NoError(t, err)
	require.NoError(t, m.Close())

	m, err = NewManager(path)
	require.NoError(t, err)
	defer m.Close()
	count, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	r := NewRecorder(m, true, zerolog.Nop())
	r.Record(ctx, result("Spot Depth", 200, ""))

	entries, err := m.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "spot", entries[0].Market)

	r.SetEnabled(false)
	r.Record(ctx, result("Spot Depth", 200, ""))
	count, _ := m.Count(ctx)
	assert.Equal(t, 1, count)

	r.SetEnabled(true)
	assert.True(t, r.Enabled())
	r.Record(ctx, result("Spot Depth", 200, ""))
	count, _ = m.Count(ctx)
	assert.Equal(t, 2, count)

	var nilRecorder *Recorder
	assert.False(t, nilRecorder.Enabled())
	assert.False(t, NewRecorder(nil, true, zerolog.Nop()).Enabled())
}
