package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"time"

	"github.com/absmach/cartridge"
	pkgerrors "github.com/absmach/cartridge/pkg/errors"
	"github.com/absmach/cartridge/pkg/storage"
	"github.com/absmach/cartridge/tenant"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"
)

const SuperTenantID = cartridge.SuperTenantID

var (
	ErrSync       = errors.New("repository sync failed")
	ErrOutOfScope = errors.New("tenant outside instance scope")
	ErrNoCheckout = errors.New("no local copy and auto checkout disabled")
)

// Synchronizer keeps local working copies of tenant artifact
// repositories in step with their remotes.
type Synchronizer interface {
	// Register records or refreshes the repository of a tenant.
	Register(ctx context.Context, reg Registration) (State, error)
	// Sync checks out the tenant repository and, when enabled, commits and
	// pushes local changes. It returns the resulting head commit.
	Sync(ctx context.Context, tenantID int) (string, error)
	// Evict forgets a tenant repository. The local copy is left in place.
	Evict(ctx context.Context, tenantID int) error
	Get(ctx context.Context, tenantID int) (State, error)
	List(ctx context.Context) ([]State, error)
}

type synchronizer struct {
	cfg      *cartridge.Config
	git      Git
	fs       afero.Fs
	resolver *tenant.Resolver
	store    storage.Storage[int, State]
	group    singleflight.Group
	logger   *slog.Logger
}

func NewSynchronizer(cfg *cartridge.Config, git Git, fs afero.Fs, resolver *tenant.Resolver, store storage.Storage[int, State], logger *slog.Logger) Synchronizer {
	return &synchronizer{
		cfg:      cfg,
		git:      git,
		fs:       fs,
		resolver: resolver,
		store:    store,
		logger:   logger,
	}
}

func (s *synchronizer) Register(ctx context.Context, reg Registration) (State, error) {
	if err := s.checkScope(reg.TenantID); err != nil {
		return State{}, err
	}

	st, err := s.store.Get(ctx, reg.TenantID)
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		st = State{
			TenantID:     reg.TenantID,
			LocalPath:    s.cfg.RepoPath(reg.TenantID),
			AutoCommit:   s.cfg.Artifacts.AutoCommit,
			AutoCheckout: s.cfg.Artifacts.AutoCheckout,
		}
	case err != nil:
		return State{}, err
	case st.RepoURL != reg.RepoURL:
		st.LastCommitID = ""
		st.LastError = ""
	}

	st.RepoURL = reg.RepoURL
	st.Username = reg.Username
	st.Password = reg.Password
	st.CommitEnabled = reg.CommitEnabled

	if err := s.store.Upsert(ctx, st.TenantID, st); err != nil {
		return State{}, err
	}

	return st, nil
}

func (s *synchronizer) Sync(ctx context.Context, tenantID int) (string, error) {
	if err := s.checkScope(tenantID); err != nil {
		return "", err
	}

	v, err, shared := s.group.Do(strconv.Itoa(tenantID), func() (any, error) {
		return s.sync(ctx, tenantID)
	})
	if shared {
		s.logger.Debug("joined running repository sync", slog.Int("tenant_id", tenantID))
	}
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

func (s *synchronizer) sync(ctx context.Context, tenantID int) (string, error) {
	st, err := s.store.Get(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("%w: tenant %d: %w", ErrSync, tenantID, err)
	}

	// Steps run to completion under the sync deadline; cancellation of ctx
	// is only observed between them.
	stepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Repository.SyncTimeout)
	defer cancel()

	if err := s.checkout(ctx, stepCtx, st); err != nil {
		st.LastError = err.Error()
		s.save(ctx, st)

		return "", fmt.Errorf("%w: tenant %d: %w", ErrSync, tenantID, err)
	}

	if st.AutoCommit && st.CommitEnabled {
		if err := s.commit(ctx, stepCtx, st); err != nil {
			return "", fmt.Errorf("%w: tenant %d: %w", ErrSync, tenantID, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	head, err := s.git.Head(stepCtx, st.LocalPath)
	if err != nil {
		return "", fmt.Errorf("%w: tenant %d: %w", ErrSync, tenantID, err)
	}

	st.LastSync = time.Now()
	st.LastCommitID = head
	st.LastError = ""
	s.save(ctx, st)

	return head, nil
}

func (s *synchronizer) checkout(ctx, stepCtx context.Context, st State) error {
	exists, err := afero.DirExists(s.fs, filepath.Join(st.LocalPath, ".git"))
	if err != nil {
		return err
	}

	switch {
	case exists && !st.AutoCheckout:
		return nil
	case !exists && !st.AutoCheckout:
		return ErrNoCheckout
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if exists {
		s.logger.Info("pulling repository",
			slog.Int("tenant_id", st.TenantID),
			slog.String("path", st.LocalPath))

		return s.git.Pull(stepCtx, st.LocalPath, st.credentials())
	}

	if err := s.fs.MkdirAll(filepath.Dir(filepath.Clean(st.LocalPath)), 0o755); err != nil {
		return err
	}

	s.logger.Info("cloning repository",
		slog.Int("tenant_id", st.TenantID),
		slog.String("url", st.redactedURL()),
		slog.String("path", st.LocalPath))

	return s.git.Clone(stepCtx, st.RepoURL, st.LocalPath, st.credentials())
}

func (s *synchronizer) commit(ctx, stepCtx context.Context, st State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dirty, err := s.git.HasChanges(stepCtx, st.LocalPath)
	if err != nil || !dirty {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	msg := "Artifacts auto-committed by cartridge agent at " + time.Now().UTC().Format(time.RFC3339)
	if err := s.git.Commit(stepCtx, st.LocalPath, msg); err != nil {
		return err
	}

	if err := s.git.Push(stepCtx, st.LocalPath, st.credentials()); err != nil {
		if undoErr := s.git.UndoCommit(stepCtx, st.LocalPath); undoErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back local commit: %w", undoErr))
		}

		return err
	}

	s.logger.Info("pushed local artifact changes", slog.Int("tenant_id", st.TenantID))

	return nil
}

// save writes st back unless the tenant was evicted meanwhile.
func (s *synchronizer) save(ctx context.Context, st State) {
	err := s.store.Update(context.WithoutCancel(ctx), st.TenantID, st)
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		s.logger.Debug("repository evicted during sync", slog.Int("tenant_id", st.TenantID))
	case err != nil:
		s.logger.Error("failed to save repository state",
			slog.Int("tenant_id", st.TenantID),
			slog.Any("error", err))
	}
}

func (s *synchronizer) Evict(ctx context.Context, tenantID int) error {
	if err := s.store.Delete(ctx, tenantID); err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return err
	}

	return nil
}

func (s *synchronizer) Get(ctx context.Context, tenantID int) (State, error) {
	return s.store.Get(ctx, tenantID)
}

func (s *synchronizer) List(ctx context.Context) ([]State, error) {
	states, _, err := s.store.List(ctx, 0, math.MaxUint64)

	return states, err
}

func (s *synchronizer) checkScope(tenantID int) error {
	if tenantID == SuperTenantID || s.resolver.InScope(tenantID) {
		return nil
	}

	return fmt.Errorf("%w: tenant %d not in %s", ErrOutOfScope, tenantID, s.resolver.Scope())
}
