package repository_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/absmach/cartridge"
	pkgerrors "github.com/absmach/cartridge/pkg/errors"
	"github.com/absmach/cartridge/pkg/storage"
	"github.com/absmach/cartridge/repository"
	"github.com/absmach/cartridge/repository/mocks"
	"github.com/absmach/cartridge/tenant"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	tenantID  = 42
	repoURL   = "https://git.example.com/t42.git"
	localPath = "/repos/42"
	headID    = "9fceb02d0ae598e95dc970b74767f19372d61af8"
)

var adminCreds = repository.Credentials{Username: "admin", Password: "secret"}

func testConfig() *cartridge.Config {
	return &cartridge.Config{
		Artifacts: cartridge.ArtifactsConfig{
			AutoCommit:   true,
			AutoCheckout: true,
		},
		Repository: cartridge.RepositoryConfig{
			SuperTenantPath: cartridge.SuperTenantTempPath,
			TenantRoot:      "/repos",
			SyncTimeout:     5 * time.Second,
		},
	}
}

func newSynchronizer(t *testing.T, git repository.Git, fs afero.Fs, scope string) repository.Synchronizer {
	t.Helper()

	resolver := tenant.NewResolver(scope, slog.Default())

	return repository.NewSynchronizer(testConfig(), git, fs, resolver, storage.NewInMemoryStorage[int, repository.State](), slog.Default())
}

func register(t *testing.T, s repository.Synchronizer, commitEnabled bool) {
	t.Helper()

	st, err := s.Register(context.Background(), repository.Registration{
		TenantID:      tenantID,
		RepoURL:       repoURL,
		Username:      "admin",
		Password:      "secret",
		CommitEnabled: commitEnabled,
	})
	require.NoError(t, err)
	require.Equal(t, localPath, st.LocalPath)
}

func withCheckout(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(localPath+"/.git", 0o755))

	return fs
}

func TestSync(t *testing.T) {
	t.Parallel()

	pushErr := errors.New("remote rejected")

	cases := []struct {
		desc          string
		existing      bool
		commitEnabled bool
		setup         func(git *mocks.Git)
		err           error
		head          string
	}{
		{
			desc: "clones missing local copy",
			setup: func(git *mocks.Git) {
				git.On("Clone", mock.Anything, repoURL, localPath, adminCreds).Return(nil).Once()
				git.On("Head", mock.Anything, localPath).Return(headID, nil).Once()
			},
			head: headID,
		},
		{
			desc:     "pulls existing local copy",
			existing: true,
			setup: func(git *mocks.Git) {
				git.On("Pull", mock.Anything, localPath, mock.Anything).Return(nil).Once()
				git.On("Head", mock.Anything, localPath).Return(headID, nil).Once()
			},
			head: headID,
		},
		{
			desc:          "commits and pushes local changes",
			existing:      true,
			commitEnabled: true,
			setup: func(git *mocks.Git) {
				git.On("Pull", mock.Anything, localPath, mock.Anything).Return(nil).Once()
				git.On("HasChanges", mock.Anything, localPath).Return(true, nil).Once()
				git.On("Commit", mock.Anything, localPath, mock.AnythingOfType("string")).Return(nil).Once()
				git.On("Push", mock.Anything, localPath, mock.Anything).Return(nil).Once()
				git.On("Head", mock.Anything, localPath).Return(headID, nil).Once()
			},
			head: headID,
		},
		{
			desc:          "clean tree is not committed",
			existing:      true,
			commitEnabled: true,
			setup: func(git *mocks.Git) {
				git.On("Pull", mock.Anything, localPath, mock.Anything).Return(nil).Once()
				git.On("HasChanges", mock.Anything, localPath).Return(false, nil).Once()
				git.On("Head", mock.Anything, localPath).Return(headID, nil).Once()
			},
			head: headID,
		},
		{
			desc:          "failed push rolls back the commit",
			existing:      true,
			commitEnabled: true,
			setup: func(git *mocks.Git) {
				git.On("Pull", mock.Anything, localPath, mock.Anything).Return(nil).Once()
				git.On("HasChanges", mock.Anything, localPath).Return(true, nil).Once()
				git.On("Commit", mock.Anything, localPath, mock.AnythingOfType("string")).Return(nil).Once()
				git.On("Push", mock.Anything, localPath, mock.Anything).Return(pushErr).Once()
				git.On("UndoCommit", mock.Anything, localPath).Return(nil).Once()
			},
			err: pushErr,
		},
		{
			desc: "checkout failure",
			setup: func(git *mocks.Git) {
				git.On("Clone", mock.Anything, mock.Anything, localPath, mock.Anything).Return(errors.New("authentication failed")).Once()
			},
			err: repository.ErrSync,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			if tc.existing {
				fs = withCheckout(t)
			}

			git := mocks.NewGit(t)
			tc.setup(git)

			s := newSynchronizer(t, git, fs, "*")
			register(t, s, tc.commitEnabled)

			head, err := s.Sync(context.Background(), tenantID)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.ErrorIs(t, err, repository.ErrSync)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.head, head)

			st, err := s.Get(context.Background(), tenantID)
			require.NoError(t, err)
			assert.Equal(t, tc.head, st.LastCommitID)
			assert.False(t, st.LastSync.IsZero())
			assert.Empty(t, st.LastError)
		})
	}
}

func TestSyncPushFailureLeavesState(t *testing.T) {
	t.Parallel()

	git := mocks.NewGit(t)
	git.On("Pull", mock.Anything, localPath, mock.Anything).Return(nil).Twice()
	git.On("HasChanges", mock.Anything, localPath).Return(false, nil).Once()
	git.On("Head", mock.Anything, localPath).Return(headID, nil).Once()

	s := newSynchronizer(t, git, withCheckout(t), "*")
	register(t, s, true)

	_, err := s.Sync(context.Background(), tenantID)
	require.NoError(t, err)
	before, err := s.Get(context.Background(), tenantID)
	require.NoError(t, err)

	git.On("HasChanges", mock.Anything, localPath).Return(true, nil).Once()
	git.On("Commit", mock.Anything, localPath, mock.Anything).Return(nil).Once()
	git.On("Push", mock.Anything, localPath, mock.Anything).Return(errors.New("non-fast-forward")).Once()
	git.On("UndoCommit", mock.Anything, localPath).Return(nil).Once()

	_, err = s.Sync(context.Background(), tenantID)
	assert.ErrorIs(t, err, repository.ErrSync)

	after, err := s.Get(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSyncCheckoutFailureRecorded(t *testing.T) {
	t.Parallel()

	git := mocks.NewGit(t)
	git.On("Clone", mock.Anything, mock.Anything, localPath, mock.Anything).Return(errors.New("could not resolve host")).Once()

	s := newSynchronizer(t, git, afero.NewMemMapFs(), "*")
	register(t, s, false)

	_, err := s.Sync(context.Background(), tenantID)
	assert.ErrorIs(t, err, repository.ErrSync)

	st, err := s.Get(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Contains(t, st.LastError, "could not resolve host")
	assert.Empty(t, st.LastCommitID)
}

func TestSyncCoalesces(t *testing.T) {
	t.Parallel()

	const callers = 8

	started := make(chan struct{})
	release := make(chan struct{})

	git := mocks.NewGit(t)
	git.On("Clone", mock.Anything, mock.Anything, localPath, mock.Anything).
		Return(func(context.Context, string, string, repository.Credentials) error {
			close(started)
			<-release

			return nil
		}).Once()
	git.On("Head", mock.Anything, localPath).Return(headID, nil).Once()

	s := newSynchronizer(t, git, afero.NewMemMapFs(), "*")
	register(t, s, false)

	var wg sync.WaitGroup
	heads := make(chan string, callers)
	errs := make(chan error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		head, err := s.Sync(context.Background(), tenantID)
		heads <- head
		errs <- err
	}()
	<-started

	for range callers - 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			head, err := s.Sync(context.Background(), tenantID)
			heads <- head
			errs <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(heads)
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	for head := range heads {
		assert.Equal(t, headID, head)
	}
}

func TestSyncStopsBetweenSteps(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	git := mocks.NewGit(t)
	git.On("Pull", mock.Anything, localPath, mock.Anything).
		Return(func(stepCtx context.Context, _ string, _ repository.Credentials) error {
			cancel()

			return stepCtx.Err()
		}).Once()

	s := newSynchronizer(t, git, withCheckout(t), "*")
	register(t, s, true)

	_, err := s.Sync(ctx, tenantID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyncScope(t *testing.T) {
	t.Parallel()

	git := mocks.NewGit(t)
	s := newSynchronizer(t, git, afero.NewMemMapFs(), "1-10")

	_, err := s.Register(context.Background(), repository.Registration{TenantID: tenantID, RepoURL: repoURL})
	assert.ErrorIs(t, err, repository.ErrOutOfScope)

	_, err = s.Sync(context.Background(), tenantID)
	assert.ErrorIs(t, err, repository.ErrOutOfScope)

	st, err := s.Register(context.Background(), repository.Registration{TenantID: repository.SuperTenantID, RepoURL: repoURL})
	require.NoError(t, err)
	assert.Equal(t, cartridge.SuperTenantTempPath, st.LocalPath)
}

func TestSyncUnregistered(t *testing.T) {
	t.Parallel()

	s := newSynchronizer(t, mocks.NewGit(t), afero.NewMemMapFs(), "*")

	_, err := s.Sync(context.Background(), tenantID)
	assert.ErrorIs(t, err, repository.ErrSync)
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestNoAutoCheckout(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Artifacts.AutoCheckout = false

	git := mocks.NewGit(t)
	s := repository.NewSynchronizer(cfg, git, afero.NewMemMapFs(), tenant.NewResolver("*", slog.Default()), storage.NewInMemoryStorage[int, repository.State](), slog.Default())
	register(t, s, false)

	_, err := s.Sync(context.Background(), tenantID)
	assert.ErrorIs(t, err, repository.ErrNoCheckout)
}

func TestRegisterAndEvict(t *testing.T) {
	t.Parallel()

	git := mocks.NewGit(t)
	git.On("Pull", mock.Anything, localPath, mock.Anything).Return(nil).Once()
	git.On("Head", mock.Anything, localPath).Return(headID, nil).Once()

	s := newSynchronizer(t, git, withCheckout(t), "*")
	register(t, s, false)

	_, err := s.Sync(context.Background(), tenantID)
	require.NoError(t, err)

	st, err := s.Register(context.Background(), repository.Registration{TenantID: tenantID, RepoURL: repoURL, CommitEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, headID, st.LastCommitID, "same remote keeps sync history")
	assert.True(t, st.CommitEnabled)

	st, err = s.Register(context.Background(), repository.Registration{TenantID: tenantID, RepoURL: "https://git.example.com/other.git"})
	require.NoError(t, err)
	assert.Empty(t, st.LastCommitID, "new remote resets sync history")

	_, err = s.Register(context.Background(), repository.Registration{TenantID: 7, RepoURL: repoURL})
	require.NoError(t, err)

	states, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, 7, states[0].TenantID)
	assert.Equal(t, tenantID, states[1].TenantID)

	require.NoError(t, s.Evict(context.Background(), tenantID))
	require.NoError(t, s.Evict(context.Background(), tenantID))

	_, err = s.Get(context.Background(), tenantID)
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}
