package middleware_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/absmach/cartridge/extension"
	"github.com/absmach/cartridge/extension/middleware"
	"github.com/absmach/cartridge/extension/mocks"
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type counter struct {
	mu      *sync.Mutex
	methods map[string]float64
	method  string
}

func newCounter() *counter {
	return &counter{mu: &sync.Mutex{}, methods: make(map[string]float64)}
}

func (c *counter) With(labelValues ...string) metrics.Counter {
	nc := *c
	for i := 0; i+1 < len(labelValues); i += 2 {
		if labelValues[i] == "method" {
			nc.method = labelValues[i+1]
		}
	}

	return &nc
}

func (c *counter) Add(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.methods[c.method] += delta
}

func (c *counter) value(method string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.methods[method]
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	errHook := errors.New("exit status 1")

	cases := []struct {
		desc string
		hook extension.Hook
		err  error
	}{
		{desc: "successful hook", hook: extension.InstanceStarted},
		{desc: "failed hook", hook: extension.ArtifactsUpdated, err: errHook},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewDispatcher(t)
			want := extension.Result{Invocation: extension.Invocation{Hook: tc.hook}, ExitCode: 0}
			svc.On("Dispatch", mock.Anything, tc.hook, mock.Anything).Return(want, tc.err).Once()
			svc.On("Close", mock.Anything).Return(nil).Once()

			c := newCounter()
			d := middleware.Metrics(c, discard.NewHistogram(), svc)

			res, err := d.Dispatch(context.Background(), tc.hook, extension.Env{})
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, want, res)
			assert.NoError(t, d.Close(context.Background()))

			assert.Equal(t, float64(1), c.value("dispatch-"+tc.hook.Key()))
			assert.Equal(t, float64(1), c.value("close"))
		})
	}
}

func TestTracing(t *testing.T) {
	t.Parallel()

	errHook := errors.New("exit status 2")

	cases := []struct {
		desc   string
		err    error
		status codes.Code
	}{
		{desc: "successful hook", status: codes.Unset},
		{desc: "failed hook", err: errHook, status: codes.Error},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			recorder := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

			svc := mocks.NewDispatcher(t)
			svc.On("Dispatch", mock.Anything, extension.Clean, mock.Anything).
				Return(extension.Result{Invocation: extension.Invocation{Hook: extension.Clean, Script: "/ext/clean.sh"}}, tc.err).
				Once()

			d := middleware.Tracing(tp.Tracer("test"), svc)
			_, err := d.Dispatch(context.Background(), extension.Clean, extension.Env{})
			assert.ErrorIs(t, err, tc.err)

			spans := recorder.Ended()
			if assert.Len(t, spans, 1) {
				assert.Equal(t, "dispatch-hook", spans[0].Name())
				assert.Equal(t, tc.status, spans[0].Status().Code)
			}
		})
	}
}

func TestLogging(t *testing.T) {
	t.Parallel()

	errClose := errors.New("in-flight hooks did not finish")

	svc := mocks.NewDispatcher(t)
	svc.On("Dispatch", mock.Anything, extension.MountVolumes, mock.Anything).
		Return(extension.Result{Skipped: true}, nil).
		Once()
	svc.On("Close", mock.Anything).Return(errClose).Once()

	d := middleware.Logging(slog.Default(), svc)

	res, err := d.Dispatch(context.Background(), extension.MountVolumes, extension.Env{})
	assert.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.ErrorIs(t, d.Close(context.Background()), errClose)
}
