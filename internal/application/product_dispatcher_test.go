package application

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/transfers/pkg/logging"
)

func TestProductDispatcher_OutlivesCallerContext(t *testing.T) {
	release := make(chan struct{})
	var cancelled atomic.Bool
	resolver := &mockProductResolver{resolveFunc: func(ctx context.Context, _ []string) error {
		<-release
		cancelled.Store(ctx.Err() != nil)
		return nil
	}}
	d := NewProductDispatcher(resolver, DefaultDispatcherConfig(), logging.Discard(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	chunks := d.Dispatch(ctx, []string{"P1", "P2"})
	cancel()
	close(release)

	require.NoError(t, d.Drain(context.Background()))
	assert.Equal(t, 1, chunks)
	assert.False(t, cancelled.Load())
}

func TestProductDispatcher_BoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	resolver := &mockProductResolver{resolveFunc: func(context.Context, []string) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return nil
	}}
	d := NewProductDispatcher(resolver, DispatcherConfig{BatchSize: 1, Concurrency: 2}, logging.Discard(), nil)

	assert.Equal(t, 6, d.Dispatch(context.Background(), []string{"A", "B", "C", "D", "E", "F"}))
	require.NoError(t, d.Drain(context.Background()))

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Len(t, resolver.resolved(), 6)
}

func TestProductDispatcher_RecordsFailuresAndPanics(t *testing.T) {
	metrics := newRecordingMetrics()
	resolver := &mockProductResolver{resolveFunc: func(_ context.Context, ids []string) error {
		switch ids[0] {
		case "A":
			return errors.New("product service down")
		case "B":
			panic("boom")
		}
		return nil
	}}
	d := NewProductDispatcher(resolver, DispatcherConfig{BatchSize: 1, Concurrency: 3}, logging.Discard(), metrics)

	d.Dispatch(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, d.Drain(context.Background()))

	assert.Equal(t, 2, metrics.dispatches[false])
	assert.Equal(t, 1, metrics.dispatches[true])
}

func TestProductDispatcher_DrainHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	resolver := &mockProductResolver{resolveFunc: func(context.Context, []string) error {
		<-release
		return nil
	}}
	d := NewProductDispatcher(resolver, DefaultDispatcherConfig(), logging.Discard(), nil)
	d.Dispatch(context.Background(), []string{"P1"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, d.Drain(ctx), context.DeadlineExceeded)
}

func TestProductDispatcher_NothingToDispatch(t *testing.T) {
	d := NewProductDispatcher(&mockProductResolver{}, DefaultDispatcherConfig(), logging.Discard(), nil)
	assert.Zero(t, d.Dispatch(context.Background(), nil))

	var none *ProductDispatcher
	assert.Zero(t, none.Dispatch(context.Background(), []string{"P1"}))
}
