package middleware

import (
	"context"
	"time"

	"github.com/absmach/cartridge/repository"
	"github.com/go-kit/kit/metrics"
)

var _ repository.Synchronizer = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     repository.Synchronizer
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc repository.Synchronizer) repository.Synchronizer {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Register(ctx context.Context, reg repository.Registration) (repository.State, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "register").Add(1)
		mm.latency.With("method", "register").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Register(ctx, reg)
}

func (mm *metricsMiddleware) Sync(ctx context.Context, tenantID int) (string, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "sync").Add(1)
		mm.latency.With("method", "sync").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Sync(ctx, tenantID)
}

func (mm *metricsMiddleware) Evict(ctx context.Context, tenantID int) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "evict").Add(1)
		mm.latency.With("method", "evict").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Evict(ctx, tenantID)
}

func (mm *metricsMiddleware) Get(ctx context.Context, tenantID int) (repository.State, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "get").Add(1)
		mm.latency.With("method", "get").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Get(ctx, tenantID)
}

func (mm *metricsMiddleware) List(ctx context.Context) ([]repository.State, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list").Add(1)
		mm.latency.With("method", "list").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.List(ctx)
}
