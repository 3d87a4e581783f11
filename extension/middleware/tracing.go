package middleware

import (
	"context"

	"github.com/absmach/cartridge/extension"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ extension.Dispatcher = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    extension.Dispatcher
}

func Tracing(tracer trace.Tracer, svc extension.Dispatcher) extension.Dispatcher {
	return &tracing{tracer, svc}
}

func (tm *tracing) Dispatch(ctx context.Context, hook extension.Hook, env extension.Env) (res extension.Result, err error) {
	ctx, span := tm.tracer.Start(ctx, "dispatch-hook", trace.WithAttributes(
		attribute.String("hook", hook.Key()),
	))
	defer func() {
		span.SetAttributes(
			attribute.String("script", res.Script),
			attribute.Int("exit_code", res.ExitCode),
			attribute.Bool("skipped", res.Skipped),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return tm.svc.Dispatch(ctx, hook, env)
}

func (tm *tracing) Close(ctx context.Context) error {
	ctx, span := tm.tracer.Start(ctx, "close-dispatcher")
	defer span.End()

	return tm.svc.Close(ctx)
}
