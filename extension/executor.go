package extension

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	defaultShell = "/bin/sh"
	waitDelay    = 5 * time.Second
)

// Output is what a finished script left behind.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor runs a script with the given environment. A non-zero exit is
// reported through Output, not as an error.
type Executor interface {
	Run(ctx context.Context, script string, env Env) (Output, error)
}

type shellExecutor struct {
	shell string
}

func NewShellExecutor(shell string) Executor {
	if shell == "" {
		shell = defaultShell
	}

	return &shellExecutor{shell: shell}
}

func (e *shellExecutor) Run(ctx context.Context, script string, env Env) (Output, error) {
	cmd := exec.CommandContext(ctx, e.shell, script)
	cmd.Dir = filepath.Dir(script)
	cmd.Env = append(os.Environ(), env.List()...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return out, nil
	case ctx.Err() != nil:
		out.ExitCode = -1

		return out, ctx.Err()
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()

		return out, nil
	default:
		return out, fmt.Errorf("error running %s: %w", script, err)
	}
}
