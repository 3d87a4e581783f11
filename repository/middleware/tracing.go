package middleware

import (
	"context"

	"github.com/absmach/cartridge/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ repository.Synchronizer = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    repository.Synchronizer
}

func Tracing(tracer trace.Tracer, svc repository.Synchronizer) repository.Synchronizer {
	return &tracing{tracer, svc}
}

func (tm *tracing) Register(ctx context.Context, reg repository.Registration) (repository.State, error) {
	ctx, span := tm.tracer.Start(ctx, "register-repository", trace.WithAttributes(
		attribute.Int("tenant_id", reg.TenantID),
		attribute.Bool("commit_enabled", reg.CommitEnabled),
	))
	defer span.End()

	return tm.svc.Register(ctx, reg)
}

func (tm *tracing) Sync(ctx context.Context, tenantID int) (string, error) {
	ctx, span := tm.tracer.Start(ctx, "sync-repository", trace.WithAttributes(
		attribute.Int("tenant_id", tenantID),
	))
	defer span.End()

	return tm.svc.Sync(ctx, tenantID)
}

func (tm *tracing) Evict(ctx context.Context, tenantID int) error {
	ctx, span := tm.tracer.Start(ctx, "evict-repository", trace.WithAttributes(
		attribute.Int("tenant_id", tenantID),
	))
	defer span.End()

	return tm.svc.Evict(ctx, tenantID)
}

func (tm *tracing) Get(ctx context.Context, tenantID int) (repository.State, error) {
	ctx, span := tm.tracer.Start(ctx, "get-repository", trace.WithAttributes(
		attribute.Int("tenant_id", tenantID),
	))
	defer span.End()

	return tm.svc.Get(ctx, tenantID)
}

func (tm *tracing) List(ctx context.Context) ([]repository.State, error) {
	ctx, span := tm.tracer.Start(ctx, "list-repositories")
	defer span.End()

	return tm.svc.List(ctx)
}
