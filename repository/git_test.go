package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/absmach/cartridge/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGit installs a git stand-in that records its arguments and
// environment, and returns its path and the record file.
func fakeGit(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	record := filepath.Join(dir, "invocation")
	binary := filepath.Join(dir, "git")
	script := "#!/bin/sh\n{ echo \"args $*\"; env; } > '" + record + "'\n"
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))

	return binary, record
}

func TestGitCredentials(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc  string
		creds repository.Credentials
		run   func(git repository.Git, dir string, creds repository.Credentials) error
	}{
		{
			desc:  "clone with credentials",
			creds: adminCreds,
			run: func(git repository.Git, dir string, creds repository.Credentials) error {
				return git.Clone(context.Background(), repoURL, localPath, creds)
			},
		},
		{
			desc:  "pull with credentials",
			creds: adminCreds,
			run: func(git repository.Git, dir string, creds repository.Credentials) error {
				return git.Pull(context.Background(), dir, creds)
			},
		},
		{
			desc:  "push with credentials",
			creds: adminCreds,
			run: func(git repository.Git, dir string, creds repository.Credentials) error {
				return git.Push(context.Background(), dir, creds)
			},
		},
		{
			desc: "clone without credentials",
			run: func(git repository.Git, dir string, creds repository.Credentials) error {
				return git.Clone(context.Background(), repoURL, localPath, creds)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			binary, record := fakeGit(t)
			require.NoError(t, tc.run(repository.NewGit(binary), t.TempDir(), tc.creds))

			data, err := os.ReadFile(record)
			require.NoError(t, err)
			lines := strings.Split(string(data), "\n")
			require.True(t, strings.HasPrefix(lines[0], "args "))
			args, env := lines[0], lines[1:]

			assert.NotContains(t, args, "secret")
			assert.NotContains(t, args, "admin@")
			assert.Contains(t, env, "GIT_TERMINAL_PROMPT=0")

			if tc.creds.Username == "" {
				assert.NotContains(t, args, "credential.helper")
				assert.NotContains(t, env, "CARTRIDGE_GIT_PASSWORD=secret")

				return
			}
			assert.Contains(t, args, "credential.helper=!f()")
			assert.Contains(t, env, "CARTRIDGE_GIT_USERNAME=admin")
			assert.Contains(t, env, "CARTRIDGE_GIT_PASSWORD=secret")
		})
	}
}

func TestGitCloneURL(t *testing.T) {
	t.Parallel()

	binary, record := fakeGit(t)
	require.NoError(t, repository.NewGit(binary).Clone(context.Background(), repoURL, localPath, adminCreds))

	data, err := os.ReadFile(record)
	require.NoError(t, err)
	assert.Contains(t, string(data), "clone --quiet "+repoURL+" "+localPath)
}
