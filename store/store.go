// Package store defines the unified persistence contract for VoteMax.
//
// Reads go through the per-domain getters. Writes are staged in a Batch by
// the contract and applied with a single Commit so that an operation either
// lands completely or not at all.
package store

import (
	"context"

	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/fee"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/ledger"
)

// Store is the unified storage interface for all VoteMax entities.
//
// Get methods return copies; mutating a returned value has no effect until it
// is committed. Missing rows surface as votemax.ErrAccountNotFound,
// votemax.ErrRoundNotFound or votemax.ErrNotFound.
type Store interface {
	ledger.Store
	fee.Store
	exchange.Store
	governance.Store

	// Commit applies every staged mutation atomically.
	Commit(ctx context.Context, b *Batch) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Batch collects the mutations of one operation. Singletons are written when
// non-nil. Accounts, allowances and rounds are upserted by key; the last
// staged value for a key wins. Swaps are appended.
type Batch struct {
	Token     *ledger.Token
	FeePolicy *fee.Policy
	Market    *exchange.Market
	Settings  *governance.Settings

	Accounts   []*ledger.Account
	Allowances []*ledger.Allowance
	Rounds     []*governance.Round
	Swaps      []*exchange.Swap
}

// PutAccount stages an account upsert.
func (b *Batch) PutAccount(a *ledger.Account) {
	for i, existing := range b.Accounts {
		if existing.ID.Equal(a.ID) {
			b.Accounts[i] = a
			return
		}
	}
	b.Accounts = append(b.Accounts, a)
}

// PutAllowance stages an allowance upsert.
func (b *Batch) PutAllowance(a *ledger.Allowance) {
	for i, existing := range b.Allowances {
		if existing.Key() == a.Key() {
			b.Allowances[i] = a
			return
		}
	}
	b.Allowances = append(b.Allowances, a)
}

// PutRound stages a round upsert.
func (b *Batch) PutRound(r *governance.Round) {
	for i, existing := range b.Rounds {
		if existing.ID.Equal(r.ID) {
			b.Rounds[i] = r
			return
		}
	}
	b.Rounds = append(b.Rounds, r)
}

// AddSwap stages a journal entry.
func (b *Batch) AddSwap(s *exchange.Swap) {
	b.Swaps = append(b.Swaps, s)
}

// IsEmpty reports whether nothing was staged.
func (b *Batch) IsEmpty() bool {
	return b.Token == nil && b.FeePolicy == nil && b.Market == nil && b.Settings == nil &&
		len(b.Accounts) == 0 && len(b.Allowances) == 0 && len(b.Rounds) == 0 && len(b.Swaps) == 0
}
