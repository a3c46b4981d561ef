// Package memory provides an in-memory Store for tests and single-process
// deployments. Values are copied on the way in and out.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/fee"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
	votemaxstore "github.com/xraph/votemax/store"
)

// Compile-time interface check.
var _ votemaxstore.Store = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	closed bool

	// Ledger storage
	accounts   map[string]*ledger.Account
	allowances map[string]*ledger.Allowance
	token      *ledger.Token

	// Singletons
	policy   *fee.Policy
	market   *exchange.Market
	settings *governance.Settings

	// Governance storage
	rounds map[string]*governance.Round

	// Swap journal, in commit order
	swaps []*exchange.Swap
}

func New() *Store {
	return &Store{
		accounts:   make(map[string]*ledger.Account),
		allowances: make(map[string]*ledger.Allowance),
		rounds:     make(map[string]*governance.Round),
	}
}

// ──────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────

func (s *Store) GetAccount(_ context.Context, accountID id.AccountID) (*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.accounts[accountID.String()]; ok {
		c := *a
		return &c, nil
	}
	return nil, votemax.ErrAccountNotFound
}

func (s *Store) ListAccounts(_ context.Context, opts ledger.ListOpts) ([]*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*ledger.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if opts.OnlyLocked && !a.Locked {
			continue
		}
		if opts.SkipEmpty && a.Balance.IsZero() {
			continue
		}
		c := *a
		result = append(result, &c)
	}
	slices.SortFunc(result, func(a, b *ledger.Account) int {
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) GetAllowance(_ context.Context, owner, spender id.AccountID) (*ledger.Allowance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.allowances[ledger.AllowanceKey(owner, spender)]; ok {
		c := *a
		return &c, nil
	}
	return nil, votemax.ErrNotFound
}

func (s *Store) GetToken(_ context.Context) (*ledger.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return nil, votemax.ErrNotFound
	}
	c := *s.token
	return &c, nil
}

// ──────────────────────────────────────────────────
// Fee and exchange
// ──────────────────────────────────────────────────

func (s *Store) GetFeePolicy(_ context.Context) (*fee.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.policy == nil {
		return nil, votemax.ErrNotFound
	}
	c := *s.policy
	return &c, nil
}

func (s *Store) GetMarket(_ context.Context) (*exchange.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.market == nil {
		return nil, votemax.ErrNotFound
	}
	c := *s.market
	return &c, nil
}

func (s *Store) ListSwaps(_ context.Context, opts exchange.ListOpts) ([]*exchange.Swap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*exchange.Swap, 0)
	for i := len(s.swaps) - 1; i >= 0; i-- {
		sw := s.swaps[i]
		if !opts.Account.IsNil() && !sw.Account.Equal(opts.Account) {
			continue
		}
		if opts.Side != "" && sw.Side() != opts.Side {
			continue
		}
		c := *sw
		result = append(result, &c)
	}

	return paginate(result, opts.Offset, opts.Limit), nil
}

// ──────────────────────────────────────────────────
// Governance
// ──────────────────────────────────────────────────

func (s *Store) GetSettings(_ context.Context) (*governance.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return nil, votemax.ErrNotFound
	}
	c := *s.settings
	return &c, nil
}

func (s *Store) GetActiveRound(_ context.Context) (*governance.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rounds {
		if r.IsActive() {
			return r.Clone(), nil
		}
	}
	return nil, votemax.ErrRoundNotFound
}

func (s *Store) GetRound(_ context.Context, roundID id.RoundID) (*governance.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.rounds[roundID.String()]; ok {
		return r.Clone(), nil
	}
	return nil, votemax.ErrRoundNotFound
}

func (s *Store) ListRounds(_ context.Context, opts governance.ListOpts) ([]*governance.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*governance.Round, 0, len(s.rounds))
	for _, r := range s.rounds {
		if opts.Status != "" && r.Status != opts.Status {
			continue
		}
		result = append(result, r.Clone())
	}
	slices.SortFunc(result, func(a, b *governance.Round) int {
		return cmp.Compare(b.Number, a.Number)
	})

	return paginate(result, opts.Offset, opts.Limit), nil
}

// ──────────────────────────────────────────────────
// Commit
// ──────────────────────────────────────────────────

// Commit applies the batch under the write lock. Nothing in it can fail
// half way, so the batch is all-or-nothing.
func (s *Store) Commit(_ context.Context, b *votemaxstore.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return votemax.ErrStoreClosed
	}

	if b.Token != nil {
		c := *b.Token
		s.token = &c
	}
	if b.FeePolicy != nil {
		c := *b.FeePolicy
		s.policy = &c
	}
	if b.Market != nil {
		c := *b.Market
		s.market = &c
	}
	if b.Settings != nil {
		c := *b.Settings
		s.settings = &c
	}
	for _, a := range b.Accounts {
		c := *a
		s.accounts[a.ID.String()] = &c
	}
	for _, a := range b.Allowances {
		c := *a
		s.allowances[a.Key()] = &c
	}
	for _, r := range b.Rounds {
		s.rounds[r.ID.String()] = r.Clone()
	}
	for _, sw := range b.Swaps {
		c := *sw
		s.swaps = append(s.swaps, &c)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Core methods
// ──────────────────────────────────────────────────

func (s *Store) Migrate(_ context.Context) error {
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return votemax.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// paginate applies offset and limit. A zero limit returns everything.
func paginate[T any](items []T, offset, limit int) []T {
	start := offset
	if start < 0 {
		start = 0
	}
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
