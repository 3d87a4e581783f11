package middleware

import (
	"context"
	"time"

	"github.com/absmach/cartridge/extension"
	"github.com/go-kit/kit/metrics"
)

var _ extension.Dispatcher = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     extension.Dispatcher
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc extension.Dispatcher) extension.Dispatcher {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Dispatch(ctx context.Context, hook extension.Hook, env extension.Env) (extension.Result, error) {
	defer func(begin time.Time) {
		method := "dispatch-" + hook.Key()
		mm.counter.With("method", method).Add(1)
		mm.latency.With("method", method).Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Dispatch(ctx, hook, env)
}

func (mm *metricsMiddleware) Close(ctx context.Context) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "close").Add(1)
		mm.latency.With("method", "close").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Close(ctx)
}
