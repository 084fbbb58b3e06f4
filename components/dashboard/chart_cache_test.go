package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCacheStoresEntry(t *testing.T) {
	cache := NewChartCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}

	val1, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	val2, err := cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, "html", val1)
	assert.Equal(t, val1, val2)
	assert.Equal(t, 1, calls)
}

func TestChartCacheExpires(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewChartCache(time.Minute)
	cache.now = func() time.Time { return now }
	calls := 0
	render := func() (string, error) {
		calls++
		return "fresh", nil
	}

	_, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestChartCacheInvalidateByWidget(t *testing.T) {
	cache := NewChartCache(time.Minute)
	spec := ChartSpec{Type: ChartBar, Title: "Sales"}
	for _, scope := range []string{"inst-1", "inst-1", "inst-2"} {
		_, err := cache.GetOrRender(cacheKey(scope, spec), func() (string, error) { return scope, nil })
		require.NoError(t, err)
	}
	_, err := cache.GetOrRender(cacheKey("inst-1", ChartSpec{Type: ChartLine}), func() (string, error) { return "line", nil })
	require.NoError(t, err)
	require.Equal(t, 3, cache.Len())

	cache.Invalidate("inst-1")
	assert.Equal(t, 1, cache.Len())
}

func TestChartCachePurgeDropsExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewChartCache(time.Minute)
	cache.now = func() time.Time { return now }
	_, _ = cache.GetOrRender("a", func() (string, error) { return "a", nil })
	now = now.Add(30 * time.Second)
	_, _ = cache.GetOrRender("b", func() (string, error) { return "b", nil })
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, cache.Purge())
	assert.Equal(t, 1, cache.Len())
}

func TestChartCacheDisabledWithZeroTTL(t *testing.T) {
	cache := NewChartCache(0)
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := cache.GetOrRender("key", func() (string, error) {
			calls++
			return "x", nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}
