package votemax_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/fee"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
	"github.com/xraph/votemax/store"
	"github.com/xraph/votemax/store/memory"
	"github.com/xraph/votemax/types"
)

var genesis = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type harness struct {
	t      *testing.T
	ctx    context.Context
	c      *votemax.Contract
	store  store.Store
	clock  *clock.Mock
	admin  id.AccountID
	events *eventRecorder
}

func newHarness(t *testing.T, opts ...votemax.Option) *harness {
	t.Helper()
	return newHarnessOn(t, memory.New(), opts...)
}

// newHarnessOn starts a contract on s. Stopping it at cleanup closes s.
func newHarnessOn(t *testing.T, s store.Store, opts ...votemax.Option) *harness {
	t.Helper()

	clk := clock.NewMock()
	clk.Set(genesis)

	h := &harness{
		t:      t,
		ctx:    context.Background(),
		store:  s,
		clock:  clk,
		admin:  id.NewAccountID(),
		events: &eventRecorder{},
	}

	opts = append([]votemax.Option{
		votemax.WithClock(clk),
		votemax.WithAdministrator(h.admin),
		votemax.WithPlugin(h.events),
	}, opts...)
	h.c = votemax.New(h.store, opts...)

	require.NoError(t, h.c.Start(h.ctx))
	t.Cleanup(func() { _ = h.c.Stop() })
	return h
}

func amt(n uint64) types.Amount { return types.NewAmount(n) }

func (h *harness) mint(to id.AccountID, n uint64) {
	h.t.Helper()
	require.NoError(h.t, h.c.Mint(h.ctx, h.admin, to, amt(n)))
}

func (h *harness) balance(acct id.AccountID) types.Amount {
	h.t.Helper()
	b, err := h.c.BalanceOf(h.ctx, acct)
	require.NoError(h.t, err)
	return b
}

func (h *harness) supply() types.Amount {
	h.t.Helper()
	s, err := h.c.TotalSupply(h.ctx)
	require.NoError(h.t, err)
	return s
}

func (h *harness) feeBalance() types.Amount {
	h.t.Helper()
	b, err := h.c.FeeBalance(h.ctx)
	require.NoError(h.t, err)
	return b
}

func (h *harness) price() types.Amount {
	h.t.Helper()
	p, err := h.c.TokenPrice(h.ctx)
	require.NoError(h.t, err)
	return p
}

func (h *harness) locked(acct id.AccountID) bool {
	h.t.Helper()
	l, err := h.c.IsLocked(h.ctx, acct)
	require.NoError(h.t, err)
	return l
}

// checkInvariants asserts that balances sum to the supply, that the fee
// balance mirrors the contract account, and that exactly the participants
// of the active round are locked.
func (h *harness) checkInvariants() {
	h.t.Helper()

	accounts, err := h.c.Accounts(h.ctx, ledger.ListOpts{})
	require.NoError(h.t, err)

	var sum types.Amount
	locked := make(map[string]bool)
	for _, a := range accounts {
		sum = sum.Add(a.Balance)
		if a.Locked {
			locked[a.ID.String()] = true
		}
	}
	require.Equal(h.t, h.supply().String(), sum.String(), "sum of balances must equal total supply")
	require.Equal(h.t, h.balance(id.ContractAccount).String(), h.feeBalance().String(), "fee balance must mirror the contract account")

	round, err := h.c.ActiveRound(h.ctx)
	require.NoError(h.t, err)

	participants := make(map[string]bool)
	if round != nil {
		for _, acct := range round.Accounts() {
			participants[acct.String()] = true
		}
	}
	require.Equal(h.t, participants, locked, "locked accounts must equal round participants")
}

// eventRecorder captures every hook it receives.
type eventRecorder struct {
	mu        sync.Mutex
	transfers []ledger.Transfer
	approvals []ledger.Approval
	swaps     []exchange.Swap
	prices    []exchange.PriceChange
	fees      []fee.Change
	burns     []fee.Burned
	started   []governance.Ballot
	voted     []governance.Ballot
	ended     []*governance.Round
	failures  []string
	admins    []id.AccountID
}

func (r *eventRecorder) Name() string { return "test-recorder" }

func (r *eventRecorder) OnTransfer(_ context.Context, t *ledger.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers = append(r.transfers, *t)
	return nil
}

func (r *eventRecorder) OnApproval(_ context.Context, a *ledger.Approval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.approvals = append(r.approvals, *a)
	return nil
}

func (r *eventRecorder) OnAdministratorChanged(_ context.Context, _, current id.AccountID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins = append(r.admins, current)
	return nil
}

func (r *eventRecorder) OnTokensSwapped(_ context.Context, s *exchange.Swap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swaps = append(r.swaps, *s)
	return nil
}

func (r *eventRecorder) OnPriceChanged(_ context.Context, c *exchange.PriceChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prices = append(r.prices, *c)
	return nil
}

func (r *eventRecorder) OnFeeChanged(_ context.Context, c *fee.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fees = append(r.fees, *c)
	return nil
}

func (r *eventRecorder) OnFeeBurned(_ context.Context, b *fee.Burned) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.burns = append(r.burns, *b)
	return nil
}

func (r *eventRecorder) OnVotingStarted(_ context.Context, b *governance.Ballot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, *b)
	return nil
}

func (r *eventRecorder) OnVoted(_ context.Context, b *governance.Ballot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voted = append(r.voted, *b)
	return nil
}

func (r *eventRecorder) OnVotingEnded(_ context.Context, round *governance.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, round)
	return nil
}

func (r *eventRecorder) OnOperationFailed(_ context.Context, op string, _ error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, op)
	return nil
}
