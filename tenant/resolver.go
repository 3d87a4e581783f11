package tenant

import (
	"log/slog"
	"sync"
)

// Resolver decides whether tenant scoped work belongs to this instance.
// The instance scope is the range; the tenant ID of an event is the point
// tested against it.
type Resolver struct {
	mu     sync.RWMutex
	scope  Range
	logged sync.Map
	logger *slog.Logger
}

func NewResolver(scope string, logger *slog.Logger) *Resolver {
	r := &Resolver{logger: logger}
	r.scope = r.parse(scope)

	return r
}

// InRange reports whether tenantID lies inside rangeStr. A missing or
// malformed range applies to all tenants.
func (r *Resolver) InRange(tenantID int, rangeStr string) bool {
	return r.parse(rangeStr).Contains(tenantID)
}

// InScope reports whether tenantID lies inside the instance scope.
func (r *Resolver) InScope(tenantID int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.scope.Contains(tenantID)
}

// Accepts reports whether a tenant scoped event is meant for this
// instance: its tenant must be in scope and, when the event names the
// range it was addressed to, that range must lie within the scope.
// Events addressed to a wider range belong to the partition owning it.
func (r *Resolver) Accepts(tenantID int, eventRange string) bool {
	r.mu.RLock()
	scope := r.scope
	r.mu.RUnlock()

	if !scope.Contains(tenantID) {
		return false
	}
	rng, ok := r.tryParse(eventRange)
	if !ok || eventRange == "" {
		return true
	}

	return scope.Covers(rng)
}

// SetScope replaces the instance scope, typically after a topology update
// reassigned the partition.
func (r *Resolver) SetScope(rangeStr string) {
	scope := r.parse(rangeStr)

	r.mu.Lock()
	defer r.mu.Unlock()

	if scope != r.scope {
		r.logger.Info("tenant scope updated", slog.String("from", r.scope.String()), slog.String("to", scope.String()))
	}
	r.scope = scope
}

func (r *Resolver) Scope() Range {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.scope
}

func (r *Resolver) parse(rangeStr string) Range {
	rng, _ := r.tryParse(rangeStr)

	return rng
}

// tryParse reports false for a malformed range, which is then handled as
// if it were absent. Each distinct malformed value is logged once.
func (r *Resolver) tryParse(rangeStr string) (Range, bool) {
	rng, err := ParseRange(rangeStr)
	if err != nil {
		if _, seen := r.logged.LoadOrStore(rangeStr, struct{}{}); !seen {
			r.logger.Warn("treating malformed tenant range as absent",
				slog.String("range", rangeStr),
				slog.Any("error", err))
		}

		return All, false
	}

	return rng, true
}
