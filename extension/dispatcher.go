package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/absmach/cartridge"
	pkgerrors "github.com/absmach/cartridge/pkg/errors"
	"github.com/spf13/afero"
)

var (
	ErrHookTimeout = errors.New("extension hook timed out")
	ErrHookFailed  = errors.New("extension hook failed")
	ErrUnknownHook = errors.New("unknown extension hook")
	ErrMissingEnv  = errors.New("extension hook environment incomplete")
	ErrHookMissing = errors.New("extension script not found")
	ErrClosed      = fmt.Errorf("extension dispatcher %w", pkgerrors.ErrClosed)
)

// Invocation names the script a hook resolved to and the environment it
// runs with.
type Invocation struct {
	Hook   Hook
	Script string
	Env    Env
}

// Result describes one hook invocation.
type Result struct {
	Invocation
	ExitCode int
	Stdout   string
	Stderr   string
	// Skipped is set when the deployment does not provide the script.
	Skipped  bool
	Duration time.Duration
}

// Dispatcher runs extension hooks synchronously, each within the
// configured deadline.
type Dispatcher interface {
	Dispatch(ctx context.Context, hook Hook, env Env) (Result, error)
	// Close refuses new dispatches and waits for the running ones.
	Close(ctx context.Context) error
}

type dispatcher struct {
	dir       string
	timeout   time.Duration
	overrides map[string]string
	fs        afero.Fs
	executor  Executor
	logger    *slog.Logger

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func NewDispatcher(cfg *cartridge.Config, fs afero.Fs, executor Executor, logger *slog.Logger) Dispatcher {
	return &dispatcher{
		dir:       cfg.Extensions.Dir,
		timeout:   cfg.Extensions.Timeout,
		overrides: cfg.Extensions.Scripts,
		fs:        fs,
		executor:  executor,
		logger:    logger,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, hook Hook, env Env) (Result, error) {
	if !hook.Valid() {
		return Result{Invocation: Invocation{Hook: hook}}, ErrUnknownHook
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()

		return Result{Invocation: Invocation{Hook: hook}}, ErrClosed
	}
	d.inflight.Add(1)
	d.mu.Unlock()
	defer d.inflight.Done()

	res := Result{
		Invocation: Invocation{
			Hook:   hook,
			Script: filepath.Join(d.dir, hook.Script(d.overrides)),
			Env:    env,
		},
	}

	exists, err := afero.Exists(d.fs, res.Script)
	if err != nil {
		return res, fmt.Errorf("failed to look up script %s: %w", res.Script, err)
	}
	if !exists {
		res.Skipped = true
		d.logger.Warn("skipping hook",
			slog.String("hook", hook.Key()),
			slog.String("script", res.Script),
			slog.Any("error", ErrHookMissing))

		return res, nil
	}

	if missing := env.Missing(hook.Required()); len(missing) > 0 {
		return res, fmt.Errorf("%w: %s requires %s", ErrMissingEnv, hook.Key(), strings.Join(missing, ", "))
	}

	// In-flight hooks outlive the caller's cancellation so that shutdown
	// can drain them; only the hook deadline stops them.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	start := time.Now()
	out, err := d.executor.Run(ctx, res.Script, env)
	res.Duration = time.Since(start)
	res.ExitCode = out.ExitCode
	res.Stdout = out.Stdout
	res.Stderr = out.Stderr

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return res, fmt.Errorf("%w: %s after %s", ErrHookTimeout, hook.Key(), d.timeout)
	case err != nil:
		return res, fmt.Errorf("%w: %s: %w", ErrHookFailed, hook.Key(), err)
	case out.ExitCode != 0:
		return res, fmt.Errorf("%w: %s exited with code %d", ErrHookFailed, hook.Key(), out.ExitCode)
	}

	return res, nil
}

func (d *dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
