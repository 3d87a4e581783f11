package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/cartridge/repository"
)

var _ repository.Synchronizer = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    repository.Synchronizer
}

func Logging(logger *slog.Logger, svc repository.Synchronizer) repository.Synchronizer {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Register(ctx context.Context, reg repository.Registration) (st repository.State, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("repository",
				slog.Int("tenant_id", reg.TenantID),
				slog.String("local_path", st.LocalPath),
				slog.Bool("commit_enabled", reg.CommitEnabled),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Register repository failed", args...)

			return
		}
		lm.logger.Info("Register repository completed successfully", args...)
	}(time.Now())

	return lm.svc.Register(ctx, reg)
}

func (lm *loggingMiddleware) Sync(ctx context.Context, tenantID int) (commitID string, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("repository",
				slog.Int("tenant_id", tenantID),
				slog.String("commit_id", commitID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Sync repository failed", args...)

			return
		}
		lm.logger.Info("Sync repository completed successfully", args...)
	}(time.Now())

	return lm.svc.Sync(ctx, tenantID)
}

func (lm *loggingMiddleware) Evict(ctx context.Context, tenantID int) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("repository",
				slog.Int("tenant_id", tenantID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Evict repository failed", args...)

			return
		}
		lm.logger.Info("Evict repository completed successfully", args...)
	}(time.Now())

	return lm.svc.Evict(ctx, tenantID)
}

func (lm *loggingMiddleware) Get(ctx context.Context, tenantID int) (st repository.State, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("repository",
				slog.Int("tenant_id", tenantID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get repository failed", args...)

			return
		}
		lm.logger.Debug("Get repository completed successfully", args...)
	}(time.Now())

	return lm.svc.Get(ctx, tenantID)
}

func (lm *loggingMiddleware) List(ctx context.Context) (states []repository.State, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("count", len(states)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List repositories failed", args...)

			return
		}
		lm.logger.Debug("List repositories completed successfully", args...)
	}(time.Now())

	return lm.svc.List(ctx)
}
