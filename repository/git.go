package repository

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const (
	defaultGitBinary = "git"
	committerName    = "cartridge-agent"
	committerEmail   = "cartridge-agent@localhost"

	envGitUsername = "CARTRIDGE_GIT_USERNAME"
	envGitPassword = "CARTRIDGE_GIT_PASSWORD"
	// credentialHelper answers git credential lookups from the environment.
	credentialHelper = `!f() { test "$1" = get || exit 0; echo "username=${CARTRIDGE_GIT_USERNAME}"; echo "password=${CARTRIDGE_GIT_PASSWORD}"; }; f`
)

// Credentials authenticate against a remote. They reach git through the
// environment of the child process and never appear in its arguments.
type Credentials struct {
	Username string
	Password string
}

// Git is the subset of version control operations the synchronizer
// needs. Paths are local working copies.
type Git interface {
	Clone(ctx context.Context, url, path string, creds Credentials) error
	Pull(ctx context.Context, path string, creds Credentials) error
	HasChanges(ctx context.Context, path string) (bool, error)
	Commit(ctx context.Context, path, message string) error
	Push(ctx context.Context, path string, creds Credentials) error
	// UndoCommit drops the last local commit and keeps its changes in the
	// working tree.
	UndoCommit(ctx context.Context, path string) error
	Head(ctx context.Context, path string) (string, error)
}

type gitCLI struct {
	binary string
}

// NewGit returns a Git backed by the git command line client.
func NewGit(binary string) Git {
	if binary == "" {
		binary = defaultGitBinary
	}

	return &gitCLI{binary: binary}
}

func (g *gitCLI) Clone(ctx context.Context, url, path string, creds Credentials) error {
	_, err := g.run(ctx, "", creds, "clone", "--quiet", url, path)

	return err
}

func (g *gitCLI) Pull(ctx context.Context, path string, creds Credentials) error {
	_, err := g.run(ctx, path, creds, "pull", "--quiet", "--ff-only")

	return err
}

func (g *gitCLI) HasChanges(ctx context.Context, path string) (bool, error) {
	out, err := g.run(ctx, path, Credentials{}, "status", "--porcelain")
	if err != nil {
		return false, err
	}

	return out != "", nil
}

func (g *gitCLI) Commit(ctx context.Context, path, message string) error {
	if _, err := g.run(ctx, path, Credentials{}, "add", "--all"); err != nil {
		return err
	}

	_, err := g.run(ctx, path, Credentials{},
		"-c", "user.name="+committerName,
		"-c", "user.email="+committerEmail,
		"commit", "--quiet", "-m", message)

	return err
}

func (g *gitCLI) Push(ctx context.Context, path string, creds Credentials) error {
	_, err := g.run(ctx, path, creds, "push", "--quiet")

	return err
}

func (g *gitCLI) UndoCommit(ctx context.Context, path string) error {
	_, err := g.run(ctx, path, Credentials{}, "reset", "--soft", "HEAD~1")

	return err
}

func (g *gitCLI) Head(ctx context.Context, path string) (string, error) {
	return g.run(ctx, path, Credentials{}, "rev-parse", "HEAD")
}

func (g *gitCLI) run(ctx context.Context, dir string, creds Credentials, args ...string) (string, error) {
	env := append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	if creds.Username != "" {
		// The empty helper clears any configured ones first.
		args = append([]string{"-c", "credential.helper=", "-c", "credential.helper=" + credentialHelper}, args...)
		env = append(env, envGitUsername+"="+creds.Username, envGitPassword+"="+creds.Password)
	}

	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = dir
	cmd.Env = env

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w\n%s", gitVerb(args), err, strings.TrimSpace(string(output)))
	}

	return strings.TrimSpace(string(output)), nil
}

func gitVerb(args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "-c" {
			i++

			continue
		}

		return args[i]
	}

	return ""
}
