package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/absmach/cartridge"
	"github.com/absmach/cartridge/event"
	"github.com/absmach/cartridge/extension"
	"github.com/absmach/cartridge/repository"
	"github.com/absmach/cartridge/tenant"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Status is a snapshot of the agent.
type Status struct {
	MemberID  string    `json:"member_id"`
	ClusterID string    `json:"cluster_id"`
	State     State     `json:"state"`
	Since     time.Time `json:"since"`
	Scope     string    `json:"tenant_scope"`
}

// Service exposes the agent to the status API.
type Service interface {
	Status(ctx context.Context) Status
	Repositories(ctx context.Context) ([]repository.State, error)
}

var _ Service = (*Agent)(nil)

// Agent drives the instance through its lifecycle. Every event, whether
// received from the broker or produced by the artifact update timer, is
// handled on one goroutine in arrival order.
type Agent struct {
	cfg        *cartridge.Config
	dispatcher extension.Dispatcher
	repos      repository.Synchronizer
	resolver   *tenant.Resolver
	reporter   Reporter
	logger     *slog.Logger

	queue chan event.Event
	done  chan struct{}

	mu    sync.RWMutex
	state State
	since time.Time

	// Owned by the loop.
	topologyReceived bool
	tenantsReceived  bool

	background sync.WaitGroup
}

func New(cfg *cartridge.Config, dispatcher extension.Dispatcher, repos repository.Synchronizer, resolver *tenant.Resolver, reporter Reporter, logger *slog.Logger) *Agent {
	return &Agent{
		cfg:        cfg,
		dispatcher: dispatcher,
		repos:      repos,
		resolver:   resolver,
		reporter:   reporter,
		logger:     logger,
		queue:      make(chan event.Event, cfg.QueueSize),
		done:       make(chan struct{}),
		state:      Starting,
		since:      time.Now(),
	}
}

// Enqueue blocks until the event is queued, the agent terminates or ctx
// is done.
func (a *Agent) Enqueue(ctx context.Context, ev event.Event) error {
	select {
	case <-a.done:
		return ErrTerminated
	default:
	}

	select {
	case a.queue <- ev:
		return nil
	case <-a.done:
		return ErrTerminated
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run bootstraps the instance and processes events until the instance
// terminates. Cancelling ctx terminates the instance.
func (a *Agent) Run(ctx context.Context) error {
	defer a.background.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.bootstrap(ctx)

	a.background.Add(1)
	go a.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			a.terminate(ctx, "shutdown requested")

			return nil
		case ev := <-a.queue:
			a.handle(ctx, ev)
			if a.current() == Terminated {
				return nil
			}
		}
	}
}

func (a *Agent) Status(_ context.Context) Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return Status{
		MemberID:  a.cfg.Instance.MemberID,
		ClusterID: a.cfg.Instance.ClusterID,
		State:     a.state,
		Since:     a.since,
		Scope:     a.resolver.Scope().String(),
	}
}

func (a *Agent) Repositories(ctx context.Context) ([]repository.State, error) {
	return a.repos.List(ctx)
}

func (a *Agent) tick(ctx context.Context) {
	defer a.background.Done()

	ticker := time.NewTicker(a.cfg.Artifacts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.done:
			return
		case <-ticker.C:
			select {
			case a.queue <- event.NewTick():
			default:
				a.logger.Warn("event queue full, dropping artifact update tick")
			}
		}
	}
}

func (a *Agent) handle(ctx context.Context, ev event.Event) {
	if a.current() == Terminated {
		return
	}

	if ev.Kind.TenantScoped() && !a.resolver.Accepts(ev.TenantID, ev.TenantRange) {
		a.logger.Debug("event outside tenant scope",
			slog.String("kind", ev.Kind.String()),
			slog.Int("tenant_id", ev.TenantID),
			slog.String("range", ev.TenantRange))

		return
	}

	ic := a.cfg.Instance

	switch ev.Kind {
	case event.MemberActivated:
		if ev.MemberID == ic.MemberID {
			a.activate(ctx)

			return
		}
		a.observe(ctx, extension.MemberActivated, ev)
	case event.MemberTerminated:
		if ev.MemberID == ic.MemberID {
			a.terminate(ctx, "member terminated")

			return
		}
		a.observe(ctx, extension.MemberTerminated, ev)
	case event.MemberSuspended:
		if ev.MemberID != ic.MemberID {
			a.observe(ctx, extension.MemberSuspended, ev)
		}
	case event.MemberStarted:
		if ev.MemberID != ic.MemberID {
			a.observe(ctx, extension.MemberStarted, ev)
		}
	case event.CompleteTopology:
		if rng, ok := ev.ClusterTenantRange(ic.ClusterID); ok {
			a.resolver.SetScope(rng)
		}
		if !a.topologyReceived {
			a.topologyReceived = true
			a.observe(ctx, extension.CompleteTopology, ev)
		}
		a.updateArtifacts(ctx, ev)
	case event.CompleteTenant:
		if !a.tenantsReceived {
			a.tenantsReceived = true
			a.observe(ctx, extension.CompleteTenant, ev)
		}
	case event.TenantSubscribed:
		a.observe(ctx, extension.TenantSubscribed, ev)
	case event.TenantUnsubscribed:
		if err := a.repos.Evict(ctx, ev.TenantID); err != nil {
			a.reportFailure(ctx, fmt.Errorf("failed to evict repository of tenant %d: %w", ev.TenantID, err))
		}
		a.observe(ctx, extension.TenantUnsubscribed, ev)
	case event.DomainAdded:
		a.observe(ctx, extension.SubscriptionDomainAdded, ev)
		a.updateArtifacts(ctx, ev)
	case event.DomainRemoved:
		a.observe(ctx, extension.SubscriptionDomainRemoved, ev)
		a.updateArtifacts(ctx, ev)
	case event.ArtifactUpdated:
		if !ev.InCluster(ic.ClusterID) {
			return
		}
		a.register(ctx, ev)
		a.updateArtifacts(ctx, ev)
	case event.InstanceCleanupMember:
		if ev.MemberID == ic.MemberID {
			a.terminate(ctx, "cleanup requested for member")
		}
	case event.InstanceCleanupCluster:
		if ev.InCluster(ic.ClusterID) {
			a.terminate(ctx, "cleanup requested for cluster")
		}
	case event.ArtifactUpdateTick:
		switch a.current() {
		case Starting:
			a.bootstrap(ctx)
		case Activated:
			a.updateArtifacts(ctx, ev)
		}
	case event.InstanceStatus, event.HealthStat:
		// Echoes of what instances publish, ours included.
	default:
		a.logger.Warn("ignoring unexpected event",
			slog.String("kind", ev.Kind.String()),
			slog.String("topic", ev.Topic))
	}
}

// bootstrap checks out the instance's own artifacts and starts its
// servers. A failed step leaves the instance in Starting and is retried
// on the next timer tick.
func (a *Agent) bootstrap(ctx context.Context) {
	ic := a.cfg.Instance
	env := extension.NewEnv(ic)

	if ic.RepoURL != "" {
		reg := repository.Registration{
			TenantID:      ic.TenantID,
			RepoURL:       ic.RepoURL,
			CommitEnabled: a.cfg.Artifacts.CommitEnabled,
		}
		if _, err := a.repos.Register(ctx, reg); err != nil {
			a.reportFailure(ctx, fmt.Errorf("failed to register instance repository: %w", err))

			return
		}
		if _, err := a.repos.Sync(ctx, ic.TenantID); err != nil {
			a.reportFailure(ctx, err)

			return
		}
	}

	if _, err := a.dispatch(ctx, extension.MountVolumes, env); err != nil {
		a.reportFailure(ctx, err)
	}

	for _, hook := range []extension.Hook{extension.StartServers, extension.InstanceStarted} {
		fired, err := a.dispatch(ctx, hook, env)
		if err != nil {
			a.reportFailure(ctx, err)

			return
		}
		if !fired {
			return
		}
	}

	if err := a.transition(Started); err != nil {
		a.logger.Warn("bootstrap ignored", slog.Any("error", err))

		return
	}

	if err := a.reporter.InstanceStarted(ctx); err != nil {
		a.logger.Warn("failed to announce instance start", slog.Any("error", err))
	}

	a.background.Add(1)
	go func() {
		defer a.background.Done()

		if err := a.reporter.InstanceActivated(ctx); err != nil && ctx.Err() == nil {
			a.reportFailure(ctx, err)
		}
	}()
}

func (a *Agent) activate(ctx context.Context) {
	if cur := a.current(); cur != Started {
		a.logger.Info("ignoring activation",
			slog.String("state", cur.String()),
			slog.Any("error", ErrUnexpectedTransition))

		return
	}

	fired, err := a.dispatch(ctx, extension.InstanceActivated, extension.NewEnv(a.cfg.Instance))
	if err != nil {
		a.reportFailure(ctx, err)

		return
	}
	if !fired {
		return
	}

	if err := a.transition(Activated); err != nil {
		a.logger.Warn("activation ignored", slog.Any("error", err))
	}
}

// updateArtifacts runs one artifact update cycle: all known repositories
// are synced concurrently and artifacts-updated.sh runs once.
func (a *Agent) updateArtifacts(ctx context.Context, ev event.Event) {
	if !a.cfg.Artifacts.UpdateEnabled {
		return
	}
	if cur := a.current(); cur != Activated {
		a.logger.Debug("skipping artifact update",
			slog.String("trigger", ev.Kind.String()),
			slog.String("state", cur.String()))

		return
	}

	if err := a.transition(ArtifactsUpdating); err != nil {
		a.logger.Warn("artifact update ignored", slog.Any("error", err))

		return
	}
	defer func() {
		if err := a.transition(Activated); err != nil {
			a.logger.Warn("artifact update did not complete", slog.Any("error", err))
		}
	}()

	repos, err := a.repos.List(ctx)
	if err != nil {
		a.reportFailure(ctx, fmt.Errorf("failed to list repositories: %w", err))
	}

	var (
		mu      sync.Mutex
		commits []string
		errs    []error
		g       errgroup.Group
	)
	for _, repo := range repos {
		g.Go(func() error {
			commit, err := a.repos.Sync(ctx, repo.TenantID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)

				return nil
			}
			if commit != "" {
				commits = append(commits, commit)
			}

			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil && ctx.Err() == nil {
		a.reportFailure(ctx, err)
	}

	env := extension.NewEnv(a.cfg.Instance).
		WithPayload(ev.Payload).
		With(cartridge.EnvCommitIDs, strings.Join(commits, ","))
	for _, hook := range []extension.Hook{extension.ArtifactsCopy, extension.ArtifactsUpdated} {
		if _, err := a.dispatch(ctx, hook, env); err != nil {
			a.reportFailure(ctx, err)
		}
	}

	a.logger.Info("artifact update completed",
		slog.String("trigger", ev.Kind.String()),
		slog.Int("repositories", len(repos)),
		slog.Int("failed", len(errs)))
}

func (a *Agent) register(ctx context.Context, ev event.Event) {
	if ev.RepoURL == "" {
		return
	}

	tenantID := a.cfg.Instance.TenantID
	if ev.HasTenant {
		tenantID = ev.TenantID
	}

	reg := repository.Registration{
		TenantID:      tenantID,
		RepoURL:       ev.RepoURL,
		Username:      ev.RepoUsername,
		Password:      ev.RepoPassword,
		CommitEnabled: ev.CommitEnabled,
	}
	if _, err := a.repos.Register(ctx, reg); err != nil {
		a.reportFailure(ctx, fmt.Errorf("failed to register repository of tenant %d: %w", tenantID, err))
	}
}

// observe fires the hook that reports a platform event this instance is
// not the subject of.
func (a *Agent) observe(ctx context.Context, hook extension.Hook, ev event.Event) {
	env := extension.NewEnv(a.cfg.Instance).WithPayload(ev.Payload)
	if ev.HasTenant {
		env = env.WithTenant(ev.TenantID)
	}
	if ev.Domain != "" {
		env = env.With(cartridge.EnvSubscriptionDomain, ev.Domain)
	}
	if ev.ApplicationContext != "" {
		env = env.With(cartridge.EnvApplicationContext, ev.ApplicationContext)
	}

	if _, err := a.dispatch(ctx, hook, env); err != nil {
		a.reportFailure(ctx, err)
	}
}

// dispatch fires hook unless shutdown was requested, in which case it
// reports false. Hooks already running are left to finish.
func (a *Agent) dispatch(ctx context.Context, hook extension.Hook, env extension.Env) (bool, error) {
	if ctx.Err() != nil {
		a.logger.Info("shutdown requested, not firing hook", slog.String("hook", hook.Key()))

		return false, nil
	}

	_, err := a.dispatcher.Dispatch(ctx, hook, env)

	return true, err
}

func (a *Agent) terminate(ctx context.Context, reason string) {
	if err := a.transition(Terminated); err != nil {
		return
	}
	close(a.done)

	a.logger.Info("terminating instance", slog.String("reason", reason))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if _, err := a.dispatcher.Dispatch(ctx, extension.Clean, extension.NewEnv(a.cfg.Instance)); err != nil {
		a.logger.Error("clean hook failed", slog.Any("error", err))
	}

	if err := a.reporter.ReadyToShutdown(ctx); err != nil {
		a.logger.Warn("failed to announce shutdown", slog.Any("error", err))
	}

	if err := a.dispatcher.Close(ctx); err != nil {
		a.logger.Warn("extension hooks did not drain", slog.Any("error", err))
	}
}

func (a *Agent) reportFailure(ctx context.Context, err error) {
	a.reporter.ReportFailure(context.WithoutCancel(ctx), err)
}

func (a *Agent) current() State {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.state
}

func (a *Agent) transition(to State) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.state.canTransition(to) {
		return fmt.Errorf("%w: %s to %s", ErrUnexpectedTransition, a.state, to)
	}

	a.logger.Info("state changed", slog.String("from", a.state.String()), slog.String("to", to.String()))
	a.state = to
	a.since = time.Now()

	return nil
}
