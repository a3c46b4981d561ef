// Package plugin provides an extensible plugin system for VoteMax.
// Plugins can hook into lifecycle, ledger, exchange and governance events
// to extend functionality. Hooks run after the operation has committed.
package plugin

import (
	"context"

	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/fee"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the contract starts. c is the *votemax.Contract.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, c interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Ledger hooks
// ──────────────────────────────────────────────────

// OnTransfer is called for every balance movement, including mints and burns.
type OnTransfer interface {
	Plugin
	OnTransfer(ctx context.Context, t *ledger.Transfer) error
}

// OnApproval is called when an allowance is set.
type OnApproval interface {
	Plugin
	OnApproval(ctx context.Context, a *ledger.Approval) error
}

// OnAdministratorChanged is called when the administrator capability moves.
type OnAdministratorChanged interface {
	Plugin
	OnAdministratorChanged(ctx context.Context, previous, current id.AccountID) error
}

// ──────────────────────────────────────────────────
// Exchange and fee hooks
// ──────────────────────────────────────────────────

// OnTokensSwapped is called after a buy or sell.
type OnTokensSwapped interface {
	Plugin
	OnTokensSwapped(ctx context.Context, s *exchange.Swap) error
}

// OnPriceChanged is called when the token price changes, either by the
// administrator or at the end of a voting round.
type OnPriceChanged interface {
	Plugin
	OnPriceChanged(ctx context.Context, c *exchange.PriceChange) error
}

type OnFeeChanged interface {
	Plugin
	OnFeeChanged(ctx context.Context, c *fee.Change) error
}

type OnFeeBurned interface {
	Plugin
	OnFeeBurned(ctx context.Context, b *fee.Burned) error
}

// ──────────────────────────────────────────────────
// Governance hooks
// ──────────────────────────────────────────────────

// OnVotingStarted is called when an account proposes a price, whether it
// opened the round or added an option to it.
type OnVotingStarted interface {
	Plugin
	OnVotingStarted(ctx context.Context, b *governance.Ballot) error
}

// OnVoted is called when an account votes for an existing option.
type OnVoted interface {
	Plugin
	OnVoted(ctx context.Context, b *governance.Ballot) error
}

// OnVotingEnded is called with the closed round.
type OnVotingEnded interface {
	Plugin
	OnVotingEnded(ctx context.Context, r *governance.Round) error
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnOperationFailed is called when an operation is rejected. Nothing was
// committed.
type OnOperationFailed interface {
	Plugin
	OnOperationFailed(ctx context.Context, op string, err error) error
}
