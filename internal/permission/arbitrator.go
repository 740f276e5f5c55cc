package permission

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const defaultCacheTTL = 30 * time.Second

// ErrDenied is returned when a tool is refused, either by static/durable
// classification or because the operator answered no to an ask prompt.
type ErrDenied struct {
	Tool string
}

func (e *ErrDenied) Error() string {
	return fmt.Sprintf("permission_denied: %s", e.Tool)
}

// Confirmer surfaces an ask-class tool to the operator and blocks until
// they answer. The UI collaborator implements this; the arbitrator only
// calls it when no session or durable override already resolves the
// question.
type Confirmer interface {
	Confirm(ctx context.Context, toolName string) (bool, error)
}

// Arbitrator resolves a tool name to allow/ask/deny, consulting, in
// order of precedence: session-only in-memory override (cleared at
// process exit) → durable PolicyOverride (cached, stale-while-revalidate)
// → the tool's static default classification.
type Arbitrator struct {
	store     OverrideStore
	cache     *overrideCache
	confirmer Confirmer

	mu               sync.RWMutex
	sessionOverrides map[string]Decision // keyed by tool name, this process only

	skipPermissions bool
}

// New builds an Arbitrator. store may be nil, in which case only the
// session override and static default layers are consulted — the admin
// surface and durable overrides are simply unavailable.
func New(store OverrideStore, confirmer Confirmer, skipPermissions bool) *Arbitrator {
	return &Arbitrator{
		store:            store,
		cache:            newOverrideCache(defaultCacheTTL),
		confirmer:        confirmer,
		sessionOverrides: make(map[string]Decision),
		skipPermissions:  skipPermissions,
	}
}

// SetSessionOverride records an in-memory-only override for this
// process's lifetime, taking precedence over any durable override.
func (a *Arbitrator) SetSessionOverride(toolName string, decision Decision) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessionOverrides[toolName] = decision
}

func (a *Arbitrator) sessionOverride(toolName string) (Decision, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	d, ok := a.sessionOverrides[toolName]
	return d, ok
}

// classify resolves the precedence chain without consulting the
// confirmer — session override, then durable override, then static
// default. It never returns an error from the durable layer: a lookup
// failure degrades to the static default rather than blocking dispatch.
func (a *Arbitrator) classify(ctx context.Context, projectID, toolName string) Decision {
	if d, ok := a.sessionOverride(toolName); ok {
		return d
	}

	if a.store != nil {
		if d, ok := a.durableOverride(ctx, projectID, toolName); ok {
			return d
		}
	}

	return DefaultFor(toolName)
}

func (a *Arbitrator) durableOverride(ctx context.Context, projectID, toolName string) (Decision, bool) {
	result := a.cache.get(projectID, toolName)

	if result.Hit {
		if result.NeedsRefresh {
			go a.refresh(projectID, toolName)
		}
		if result.Override == nil {
			return "", false
		}
		return result.Override.Decision, true
	}

	// Miss: block on a single synchronous lookup, matching the latency
	// profile this hot path requires — every dispatch consults the
	// arbitrator, so a cold cache must still resolve promptly.
	override, err := a.store.Get(ctx, projectID, toolName)
	if err != nil {
		return "", false
	}
	a.cache.set(projectID, toolName, override)
	if override == nil {
		return "", false
	}
	return override.Decision, true
}

func (a *Arbitrator) refresh(projectID, toolName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	override, err := a.store.Get(ctx, projectID, toolName)
	if err != nil {
		return
	}
	a.cache.set(projectID, toolName, override)
}

// Resolve is the per-dispatch entry point: classify the tool, promote
// ask→allow under --dangerously-skip-permissions (never promoting deny),
// and for a remaining ask, suspend on the confirmer.
func (a *Arbitrator) Resolve(ctx context.Context, projectID, toolName string) error {
	decision := a.classify(ctx, projectID, toolName)

	if decision == Ask && a.skipPermissions {
		decision = Allow
	}

	switch decision {
	case Allow:
		return nil
	case Deny:
		return &ErrDenied{Tool: toolName}
	case Ask:
		if a.confirmer == nil {
			return &ErrDenied{Tool: toolName}
		}
		ok, err := a.confirmer.Confirm(ctx, toolName)
		if err != nil {
			return fmt.Errorf("permission: confirm %s: %w", toolName, err)
		}
		if !ok {
			return &ErrDenied{Tool: toolName}
		}
		return nil
	default:
		return &ErrDenied{Tool: toolName}
	}
}

// SetOverride writes a durable override through to the store (when
// configured) and invalidates the cache entry so the next Resolve call
// sees the new decision rather than a stale cached one.
func (a *Arbitrator) SetOverride(ctx context.Context, projectID, toolName string, decision Decision) error {
	if a.store == nil {
		return fmt.Errorf("permission: no durable override store configured")
	}
	if err := a.store.Set(ctx, projectID, toolName, decision); err != nil {
		return err
	}
	a.cache.delete(projectID, toolName)
	return nil
}
