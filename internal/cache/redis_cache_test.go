package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catatkas/backend/internal/domain"
)

func TestNoopSummaryCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c SummaryCache = NoopSummaryCache{}

	require.NoError(t, c.Set(ctx, "k", &domain.DashboardSummary{SalesTotal: 1}, time.Minute))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRedisSummaryCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("CATATKAS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set CATATKAS_TEST_REDIS_ADDR to run redis integration test")
	}

	ctx := context.Background()
	c := NewRedisSummaryCache(addr, "", 0)
	t.Cleanup(func() {
		_ = c.Close()
	})
	require.NoError(t, c.Ping(ctx))

	key := "test:" + time.Now().Format(time.RFC3339Nano)
	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	want := &domain.DashboardSummary{From: "2026-03-01", To: "2026-03-31", SalesTotal: 125000, GrossMarginPct: "21.50"}
	require.NoError(t, c.Set(ctx, key, want, time.Minute))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.SalesTotal, got.SalesTotal)
	assert.Equal(t, want.GrossMarginPct, got.GrossMarginPct)
}
