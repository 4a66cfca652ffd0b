package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pk-ux/put-options-trading/internal/adapters/storage"
	"github.com/pk-ux/put-options-trading/internal/domain"
)

func newStore(t *testing.T, watchlist ...string) *storage.SQLiteStore {
	t.Helper()
	s, err := storage.NewSQLiteStore(":memory:", domain.DefaultScreeningConfig(), watchlist)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_SeedsOnFirstOpen(t *testing.T) {
	s := newStore(t, "aapl", "MSFT", "AAPL")
	ctx := context.Background()

	cfg, err := s.LoadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, 45, cfg.MaxDTE)
	assert.Equal(t, []domain.SortKey{domain.SortAnnualizedReturn}, cfg.SortBy)

	wl, err := s.Watchlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, wl)
}

func TestSQLiteStore_SaveConfigCreatesNewVersion(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first, err := s.LoadConfig(ctx)
	require.NoError(t, err)

	next := first.Clone()
	next.MinAnnualizedReturn = 35
	next.DayCount = domain.DayCountCalendar
	saved, err := s.SaveConfig(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Version)

	latest, err := s.LoadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, latest)
	assert.Equal(t, 20.0, first.MinAnnualizedReturn, "la versión anterior no cambia")

	n, err := s.ConfigVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLiteStore_SaveConfigRejectsInvalid(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	bad := domain.DefaultScreeningConfig()
	bad.MaxResults = 0
	_, err := s.SaveConfig(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	n, err := s.ConfigVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_WatchlistAddRemove(t *testing.T) {
	s := newStore(t, "SPY")
	ctx := context.Background()

	sym, err := s.AddSymbol(ctx, " nvda ")
	require.NoError(t, err)
	assert.Equal(t, "NVDA", sym)

	_, err = s.AddSymbol(ctx, "spy")
	assert.ErrorIs(t, err, domain.ErrDuplicateSymbol)

	_, err = s.AddSymbol(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	require.NoError(t, s.RemoveSymbol(ctx, "spy"))
	require.NoError(t, s.RemoveSymbol(ctx, "NOTTHERE"))

	wl, err := s.Watchlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA"}, wl)
}

func TestSQLiteStore_ReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screener.db")
	ctx := context.Background()

	s, err := storage.NewSQLiteStore(path, domain.DefaultScreeningConfig(), []string{"AAPL"})
	require.NoError(t, err)
	cfg := domain.DefaultScreeningConfig()
	cfg.MaxDTE = 30
	_, err = s.SaveConfig(ctx, cfg)
	require.NoError(t, err)
	_, err = s.AddSymbol(ctx, "META")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = storage.NewSQLiteStore(path, domain.DefaultScreeningConfig(), []string{"IGNORED"})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.LoadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, 30, got.MaxDTE)

	wl, err := s.Watchlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "META"}, wl)
}

func TestSQLiteStore_EmptiedWatchlistStaysEmptyAfterReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screener.db")
	ctx := context.Background()

	s, err := storage.NewSQLiteStore(path, domain.DefaultScreeningConfig(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	require.NoError(t, s.RemoveSymbol(ctx, "AAPL"))
	require.NoError(t, s.RemoveSymbol(ctx, "MSFT"))
	require.NoError(t, s.Close())

	s, err = storage.NewSQLiteStore(path, domain.DefaultScreeningConfig(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	defer s.Close()

	wl, err := s.Watchlist(ctx)
	require.NoError(t, err)
	assert.Empty(t, wl, "el YAML solo siembra una base nueva")

	n, err := s.ConfigVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_AddSymbolRejectsReservedSummary(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, sym := range []string{"Summary", "SUMMARY", " summary "} {
		_, err := s.AddSymbol(ctx, sym)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig, sym)
	}

	wl, err := s.Watchlist(ctx)
	require.NoError(t, err)
	assert.Empty(t, wl)
}
