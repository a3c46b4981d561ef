package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/fee"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
)

// DefaultTimeout bounds how long a single hook may run.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onTransfer             []OnTransfer
	onApproval             []OnApproval
	onAdministratorChanged []OnAdministratorChanged
	onTokensSwapped        []OnTokensSwapped
	onPriceChanged         []OnPriceChanged
	onFeeChanged           []OnFeeChanged
	onFeeBurned            []OnFeeBurned
	onVotingStarted        []OnVotingStarted
	onVoted                []OnVoted
	onVotingEnded          []OnVotingEnded
	onOperationFailed      []OnOperationFailed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnTransfer); ok {
		r.onTransfer = append(r.onTransfer, v)
	}
	if v, ok := p.(OnApproval); ok {
		r.onApproval = append(r.onApproval, v)
	}
	if v, ok := p.(OnAdministratorChanged); ok {
		r.onAdministratorChanged = append(r.onAdministratorChanged, v)
	}
	if v, ok := p.(OnTokensSwapped); ok {
		r.onTokensSwapped = append(r.onTokensSwapped, v)
	}
	if v, ok := p.(OnPriceChanged); ok {
		r.onPriceChanged = append(r.onPriceChanged, v)
	}
	if v, ok := p.(OnFeeChanged); ok {
		r.onFeeChanged = append(r.onFeeChanged, v)
	}
	if v, ok := p.(OnFeeBurned); ok {
		r.onFeeBurned = append(r.onFeeBurned, v)
	}
	if v, ok := p.(OnVotingStarted); ok {
		r.onVotingStarted = append(r.onVotingStarted, v)
	}
	if v, ok := p.(OnVoted); ok {
		r.onVoted = append(r.onVoted, v)
	}
	if v, ok := p.(OnVotingEnded); ok {
		r.onVotingEnded = append(r.onVotingEnded, v)
	}
	if v, ok := p.(OnOperationFailed); ok {
		r.onOperationFailed = append(r.onOperationFailed, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	name string
	typ  reflect.Type
}{
	{"OnInit", reflect.TypeOf((*OnInit)(nil)).Elem()},
	{"OnShutdown", reflect.TypeOf((*OnShutdown)(nil)).Elem()},
	{"OnTransfer", reflect.TypeOf((*OnTransfer)(nil)).Elem()},
	{"OnApproval", reflect.TypeOf((*OnApproval)(nil)).Elem()},
	{"OnAdministratorChanged", reflect.TypeOf((*OnAdministratorChanged)(nil)).Elem()},
	{"OnTokensSwapped", reflect.TypeOf((*OnTokensSwapped)(nil)).Elem()},
	{"OnPriceChanged", reflect.TypeOf((*OnPriceChanged)(nil)).Elem()},
	{"OnFeeChanged", reflect.TypeOf((*OnFeeChanged)(nil)).Elem()},
	{"OnFeeBurned", reflect.TypeOf((*OnFeeBurned)(nil)).Elem()},
	{"OnVotingStarted", reflect.TypeOf((*OnVotingStarted)(nil)).Elem()},
	{"OnVoted", reflect.TypeOf((*OnVoted)(nil)).Elem()},
	{"OnVotingEnded", reflect.TypeOf((*OnVotingEnded)(nil)).Elem()},
	{"OnOperationFailed", reflect.TypeOf((*OnOperationFailed)(nil)).Elem()},
}

// implementedInterfaces returns the hook names implemented by the plugin.
func implementedInterfaces(p Plugin) []string {
	var names []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.typ) {
			names = append(names, h.name)
		}
	}
	return names
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// snapshot copies a cached hook list under the read lock.
func snapshot[T Plugin](r *Registry, list *[]T) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]T(nil), (*list)...)
}

// emit calls fn for each plugin, logging failures without stopping.
func emit[T Plugin](ctx context.Context, r *Registry, hook string, plugins []T, fn func(T) error) {
	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return fn(p)
		}); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, c interface{}) {
	emit(ctx, r, "OnInit", snapshot(r, &r.onInit), func(p OnInit) error {
		return p.OnInit(ctx, c)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, "OnShutdown", snapshot(r, &r.onShutdown), func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitTransfer emits a transfer, mint or burn event.
func (r *Registry) EmitTransfer(ctx context.Context, t *ledger.Transfer) {
	emit(ctx, r, "OnTransfer", snapshot(r, &r.onTransfer), func(p OnTransfer) error {
		return p.OnTransfer(ctx, t)
	})
}

// EmitApproval emits an allowance approval event.
func (r *Registry) EmitApproval(ctx context.Context, a *ledger.Approval) {
	emit(ctx, r, "OnApproval", snapshot(r, &r.onApproval), func(p OnApproval) error {
		return p.OnApproval(ctx, a)
	})
}

// EmitAdministratorChanged emits an administrator change event.
func (r *Registry) EmitAdministratorChanged(ctx context.Context, previous, current id.AccountID) {
	emit(ctx, r, "OnAdministratorChanged", snapshot(r, &r.onAdministratorChanged), func(p OnAdministratorChanged) error {
		return p.OnAdministratorChanged(ctx, previous, current)
	})
}

// EmitTokensSwapped emits a swap event.
func (r *Registry) EmitTokensSwapped(ctx context.Context, s *exchange.Swap) {
	emit(ctx, r, "OnTokensSwapped", snapshot(r, &r.onTokensSwapped), func(p OnTokensSwapped) error {
		return p.OnTokensSwapped(ctx, s)
	})
}

// EmitPriceChanged emits a price change event.
func (r *Registry) EmitPriceChanged(ctx context.Context, c *exchange.PriceChange) {
	emit(ctx, r, "OnPriceChanged", snapshot(r, &r.onPriceChanged), func(p OnPriceChanged) error {
		return p.OnPriceChanged(ctx, c)
	})
}

// EmitFeeChanged emits a fee percentage change event.
func (r *Registry) EmitFeeChanged(ctx context.Context, c *fee.Change) {
	emit(ctx, r, "OnFeeChanged", snapshot(r, &r.onFeeChanged), func(p OnFeeChanged) error {
		return p.OnFeeChanged(ctx, c)
	})
}

// EmitFeeBurned emits a fee burn event.
func (r *Registry) EmitFeeBurned(ctx context.Context, b *fee.Burned) {
	emit(ctx, r, "OnFeeBurned", snapshot(r, &r.onFeeBurned), func(p OnFeeBurned) error {
		return p.OnFeeBurned(ctx, b)
	})
}

// EmitVotingStarted emits a proposal event.
func (r *Registry) EmitVotingStarted(ctx context.Context, b *governance.Ballot) {
	emit(ctx, r, "OnVotingStarted", snapshot(r, &r.onVotingStarted), func(p OnVotingStarted) error {
		return p.OnVotingStarted(ctx, b)
	})
}

// EmitVoted emits a vote event.
func (r *Registry) EmitVoted(ctx context.Context, b *governance.Ballot) {
	emit(ctx, r, "OnVoted", snapshot(r, &r.onVoted), func(p OnVoted) error {
		return p.OnVoted(ctx, b)
	})
}

// EmitVotingEnded emits a round closed event.
func (r *Registry) EmitVotingEnded(ctx context.Context, round *governance.Round) {
	emit(ctx, r, "OnVotingEnded", snapshot(r, &r.onVotingEnded), func(p OnVotingEnded) error {
		return p.OnVotingEnded(ctx, round)
	})
}

// EmitOperationFailed emits a rejected operation event.
func (r *Registry) EmitOperationFailed(ctx context.Context, op string, err error) {
	emit(ctx, r, "OnOperationFailed", snapshot(r, &r.onOperationFailed), func(p OnOperationFailed) error {
		return p.OnOperationFailed(ctx, op, err)
	})
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the contract.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
