package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/cartridge/extension"
)

var _ extension.Dispatcher = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    extension.Dispatcher
}

func Logging(logger *slog.Logger, svc extension.Dispatcher) extension.Dispatcher {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Dispatch(ctx context.Context, hook extension.Hook, env extension.Env) (res extension.Result, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("hook",
				slog.String("key", hook.Key()),
				slog.String("script", res.Script),
				slog.Int("exit_code", res.ExitCode),
				slog.Bool("skipped", res.Skipped),
			),
		}
		if err != nil {
			args = append(args,
				slog.String("stderr", res.Stderr),
				slog.Any("error", err))
			lm.logger.Warn("Dispatch hook failed", args...)

			return
		}
		lm.logger.Info("Dispatch hook completed successfully", args...)
	}(time.Now())

	return lm.svc.Dispatch(ctx, hook, env)
}

func (lm *loggingMiddleware) Close(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Close dispatcher failed", args...)

			return
		}
		lm.logger.Info("Close dispatcher completed successfully", args...)
	}(time.Now())

	return lm.svc.Close(ctx)
}
