package query_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/internal/query"
	"github.com/pharmadash/pharmadash/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(staleness time.Duration) *query.Cache {
	return query.NewCache(staleness, nil, logger.Nop())
}

func TestFetch_LiveThenCached(t *testing.T) {
	cache := newCache(time.Minute)
	calls := 0
	fetch := func(ctx context.Context) ([]api.Medicine, error) {
		calls++
		return []api.Medicine{{ID: 1, SKU: "MED001", Name: "Paracetamol 500mg"}}, nil
	}

	first := query.Fetch(context.Background(), cache, query.KeyMedicines("", ""), fetch)
	require.NoError(t, first.Err)
	assert.Equal(t, query.SourceLive, first.Source)
	assert.Len(t, first.Data, 1)

	second := query.Fetch(context.Background(), cache, query.KeyMedicines("", ""), fetch)
	require.NoError(t, second.Err)
	assert.Equal(t, query.SourceCached, second.Source)
	assert.Equal(t, 1, calls, "fresh cache hit must not refetch")
}

func TestFetch_StalenessWindowExpires(t *testing.T) {
	cache := newCache(10 * time.Millisecond)
	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	r := query.Fetch(context.Background(), cache, "k", fetch)
	assert.Equal(t, query.SourceLive, r.Source)

	time.Sleep(20 * time.Millisecond)

	r = query.Fetch(context.Background(), cache, "k", fetch)
	assert.Equal(t, query.SourceLive, r.Source)
	assert.Equal(t, 2, calls)
}

func TestFetch_InFlightDeduplication(t *testing.T) {
	cache := newCache(0) // no staleness window, only in-flight sharing
	var calls atomic.Int64
	release := make(chan struct{})

	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "data", nil
	}

	var wg sync.WaitGroup
	results := make([]query.Result[string], 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = query.Fetch(context.Background(), cache, "shared", fetch)
		}(i)
	}

	// Give the goroutines time to pile up on the same key, then release.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "concurrent identical queries share one call")
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, "data", r.Data)
	}
}

func TestFetch_FailureFallsBackToStaleEntry(t *testing.T) {
	cache := newCache(time.Nanosecond)

	ok := func(ctx context.Context) ([]api.Alert, error) {
		return []api.Alert{{ID: 1, Message: "low stock"}}, nil
	}
	r := query.Fetch(context.Background(), cache, query.KeyAlertsUnacknowledged(), ok)
	require.NoError(t, r.Err)

	time.Sleep(time.Millisecond) // age the entry out of the window

	failing := func(ctx context.Context) ([]api.Alert, error) {
		return nil, fmt.Errorf("connection refused")
	}
	r = query.Fetch(context.Background(), cache, query.KeyAlertsUnacknowledged(), failing)

	assert.Equal(t, query.SourceSnapshot, r.Source, "fallback must be marked, not passed off as live")
	require.Error(t, r.Err)
	assert.Len(t, r.Data, 1)
}

func TestFetch_FailureWithoutFallback(t *testing.T) {
	cache := newCache(time.Minute)
	failing := func(ctx context.Context) ([]api.Alert, error) {
		return nil, fmt.Errorf("connection refused")
	}

	r := query.Fetch(context.Background(), cache, "alerts/unacknowledged", failing)
	require.Error(t, r.Err)
	assert.Empty(t, r.Data)
}

func TestInvalidate_PrefixesCountedOnce(t *testing.T) {
	cache := newCache(time.Minute)
	seed := func(key string) {
		query.Fetch(context.Background(), cache, key, func(ctx context.Context) (string, error) {
			return "v", nil
		})
	}
	seed(query.KeyMedicines("", ""))
	seed(query.KeyStockLevels(false))
	seed(query.KeyDashboardStats())
	seed(query.KeyAlertStats())
	seed(query.KeySuppliers(true))

	removed := cache.Invalidate(query.AfterInventoryUpload()...)
	assert.Equal(t, 4, removed, "medicines, stock levels, dashboard and alerts are dirtied exactly once each")

	// Suppliers were untouched.
	r := query.Fetch(context.Background(), cache, query.KeySuppliers(true), func(ctx context.Context) (string, error) {
		t.Fatal("suppliers entry should still be cached")
		return "", nil
	})
	assert.Equal(t, query.SourceCached, r.Source)
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	cache := newCache(time.Minute)
	calls := 0
	fetch := func(ctx context.Context) ([]api.Alert, error) {
		calls++
		if calls == 1 {
			return []api.Alert{{ID: 1}, {ID: 2}}, nil
		}
		return []api.Alert{{ID: 2}}, nil
	}

	r := query.Fetch(context.Background(), cache, query.KeyAlertsUnacknowledged(), fetch)
	assert.Len(t, r.Data, 2)

	// Acknowledging alert 1 dirties the alerts group; the next read refetches
	// and the acknowledged alert is gone.
	cache.Invalidate(query.AfterAlertAcknowledge()...)

	r = query.Fetch(context.Background(), cache, query.KeyAlertsUnacknowledged(), fetch)
	assert.Equal(t, query.SourceLive, r.Source)
	require.Len(t, r.Data, 1)
	assert.Equal(t, 2, r.Data[0].ID)
}
