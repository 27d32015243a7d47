package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/wms-platform/transfers/internal/domain"
	"github.com/wms-platform/transfers/pkg/logging"
)

// DispatcherConfig bounds product resolution work.
type DispatcherConfig struct {
	BatchSize   int
	Concurrency int64
	Timeout     time.Duration
}

// DefaultDispatcherConfig returns the dispatcher defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		BatchSize:   domain.ProductBatchSize,
		Concurrency: 4,
		Timeout:     30 * time.Second,
	}
}

// ProductDispatcher sends product ids to a ProductResolver in chunks without
// waiting for the outcome. Chunks run on contexts detached from the caller's
// cancellation and are tracked until Drain.
type ProductDispatcher struct {
	resolver ProductResolver
	config   DispatcherConfig
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	logger   *logging.Logger
	metrics  Metrics
}

// NewProductDispatcher creates a dispatcher. A nil resolver makes Dispatch a no-op.
func NewProductDispatcher(resolver ProductResolver, config DispatcherConfig, logger *logging.Logger, metrics Metrics) *ProductDispatcher {
	if config.BatchSize <= 0 {
		config.BatchSize = domain.ProductBatchSize
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &ProductDispatcher{
		resolver: resolver,
		config:   config,
		sem:      semaphore.NewWeighted(config.Concurrency),
		logger:   logger.WithComponent("product-dispatcher"),
		metrics:  metricsOrNoop(metrics),
	}
}

// Dispatch deduplicates ids, splits them into chunks and resolves every chunk in the
// background. It returns the number of chunks scheduled.
func (d *ProductDispatcher) Dispatch(ctx context.Context, ids []string) int {
	if d == nil || d.resolver == nil {
		return 0
	}

	chunks := domain.Chunk(ids, d.config.BatchSize)
	detached := context.WithoutCancel(ctx)
	for _, chunk := range chunks {
		d.wg.Add(1)
		go d.resolve(detached, chunk)
	}
	return len(chunks)
}

func (d *ProductDispatcher) resolve(ctx context.Context, chunk []string) {
	defer d.wg.Done()

	if err := d.sem.Acquire(ctx, 1); err != nil {
		d.metrics.RecordProductDispatch(false)
		return
	}
	defer d.sem.Release(1)

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	err := d.call(ctx, chunk)
	d.metrics.RecordProductDispatch(err == nil)
	if err != nil {
		d.logger.WithContext(ctx).WithError(err).Warn("Product resolution failed",
			"products", len(chunk),
		)
	}
}

func (d *ProductDispatcher) call(ctx context.Context, chunk []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("product resolution panicked: %v", r)
		}
	}()
	return d.resolver.ResolveProducts(ctx, chunk)
}

// Drain waits until every dispatched chunk has finished or ctx is done.
func (d *ProductDispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
