package query_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pharmadash/pharmadash/internal/query"
	"github.com/pharmadash/pharmadash/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestPoller_RunsImmediately(t *testing.T) {
	ran := make(chan struct{})
	p := query.NewPoller("alerts", time.Hour, func(ctx context.Context) error {
		close(ran)
		return nil
	}, logger.Nop())

	p.Start(context.Background())
	defer p.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("poller did not run before the first tick")
	}
}

func TestPoller_TicksOnInterval(t *testing.T) {
	var runs atomic.Int64
	p := query.NewPoller("reorder", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, logger.Nop())

	p.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	p.Stop()

	assert.GreaterOrEqual(t, runs.Load(), int64(3))
}

func TestPoller_StopHaltsUpdates(t *testing.T) {
	var runs atomic.Int64
	p := query.NewPoller("alerts", 5*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, logger.Nop())

	p.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	p.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop returns")
}

func TestPoller_ErrorsDoNotStopPolling(t *testing.T) {
	var runs atomic.Int64
	p := query.NewPoller("alerts", 5*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return assert.AnError
	}, logger.Nop())

	p.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	p.Stop()

	assert.GreaterOrEqual(t, runs.Load(), int64(2), "a failing poll still retries on the next tick")
}
