// Package storetest runs the behaviour every store.Store backend must share.
// Backend packages call Run from their own tests with an opener that
// returns a fresh, empty store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/fee"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
	"github.com/xraph/votemax/store"
	"github.com/xraph/votemax/types"
)

// Opener returns an empty, migrated store. It should register cleanup on t.
type Opener func(t *testing.T) store.Store

// stamp is whole seconds so every backend's time precision round-trips it.
var stamp = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

// Run exercises reads, upserts and listing against stores from open.
func Run(t *testing.T, open Opener) {
	t.Run("Migrate is idempotent", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Migrate(context.Background()))
		require.NoError(t, s.Ping(context.Background()))
	})
	t.Run("Empty", func(t *testing.T) { testEmpty(t, open(t)) })
	t.Run("Singletons", func(t *testing.T) { testSingletons(t, open(t)) })
	t.Run("Accounts", func(t *testing.T) { testAccounts(t, open(t)) })
	t.Run("Allowances", func(t *testing.T) { testAllowances(t, open(t)) })
	t.Run("Rounds", func(t *testing.T) { testRounds(t, open(t)) })
	t.Run("Swaps", func(t *testing.T) { testSwaps(t, open(t)) })
}

// RunAtomicCommit checks that a Commit failing part way leaves nothing
// from its batch behind. Only backends with transactional commits run it.
func RunAtomicCommit(t *testing.T, open Opener) {
	ctx := context.Background()
	s := open(t)

	tok := &ledger.Token{
		Entity:        types.NewEntityAt(stamp),
		Name:          "Vote Max Token",
		Symbol:        "VTM",
		TotalSupply:   types.NewAmount(1),
		Administrator: id.NewAccountID(),
	}
	first := &store.Batch{Token: tok}
	first.PutRound(activeRound(1))
	require.NoError(t, s.Commit(ctx, first))

	holder := ledger.NewAccount(id.NewAccountID())
	holder.Balance = types.NewAmount(999)
	holder.Entity = types.NewEntityAt(stamp)

	changed := *tok
	changed.TotalSupply = types.NewAmount(999)
	second := &store.Batch{Token: &changed}
	second.PutAccount(holder)
	// A second active round breaks the one-active-round constraint.
	second.PutRound(activeRound(2))
	require.Error(t, s.Commit(ctx, second))

	got, err := s.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", got.TotalSupply.String(), "token write must roll back")

	_, err = s.GetAccount(ctx, holder.ID)
	assert.ErrorIs(t, err, votemax.ErrAccountNotFound, "account write must roll back")

	rounds, err := s.ListRounds(ctx, governance.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, rounds, 1)
}

func activeRound(number uint64) *governance.Round {
	return &governance.Round{
		Entity:       types.NewEntityAt(stamp),
		ID:           id.NewRoundID(),
		Number:       number,
		Status:       governance.StatusActive,
		StartedAt:    stamp,
		EndDate:      stamp.Add(governance.DefaultTimeToVote),
		WinningPrice: types.Amount{},
	}
}

func testEmpty(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.GetAccount(ctx, id.NewAccountID())
	assert.ErrorIs(t, err, votemax.ErrAccountNotFound)
	_, err = s.GetAllowance(ctx, id.NewAccountID(), id.NewAccountID())
	assert.ErrorIs(t, err, votemax.ErrNotFound)
	_, err = s.GetToken(ctx)
	assert.ErrorIs(t, err, votemax.ErrNotFound)
	_, err = s.GetFeePolicy(ctx)
	assert.ErrorIs(t, err, votemax.ErrNotFound)
	_, err = s.GetMarket(ctx)
	assert.ErrorIs(t, err, votemax.ErrNotFound)
	_, err = s.GetSettings(ctx)
	assert.ErrorIs(t, err, votemax.ErrNotFound)
	_, err = s.GetActiveRound(ctx)
	assert.ErrorIs(t, err, votemax.ErrRoundNotFound)
	_, err = s.GetRound(ctx, id.NewRoundID())
	assert.ErrorIs(t, err, votemax.ErrRoundNotFound)

	accounts, err := s.ListAccounts(ctx, ledger.ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func testSingletons(t *testing.T, s store.Store) {
	ctx := context.Background()
	admin := id.NewAccountID()

	tok := &ledger.Token{
		Entity:        types.NewEntityAt(stamp),
		Name:          "Vote Max Token",
		Symbol:        "VTM",
		TotalSupply:   types.NewAmount(12345),
		Administrator: admin,
	}
	policy := fee.NewPolicy()
	policy.Balance = types.NewAmount(7)
	market := exchange.NewMarket()
	market.Reserve = types.NewAmount(5000)
	settings := governance.NewSettings()
	settings.TimeToVote = time.Hour

	require.NoError(t, s.Commit(ctx, &store.Batch{
		Token:     tok,
		FeePolicy: policy,
		Market:    market,
		Settings:  settings,
	}))

	gotTok, err := s.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Vote Max Token", gotTok.Name)
	assert.Equal(t, "12345", gotTok.TotalSupply.String())
	assert.True(t, gotTok.Administrator.Equal(admin))

	gotPolicy, err := s.GetFeePolicy(ctx)
	require.NoError(t, err)
	assert.Equal(t, fee.DefaultPercentage, gotPolicy.Percentage)
	assert.Equal(t, "7", gotPolicy.Balance.String())

	gotMarket, err := s.GetMarket(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5000", gotMarket.Reserve.String())
	assert.Equal(t, market.TokenPrice.String(), gotMarket.TokenPrice.String())

	gotSettings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, gotSettings.TimeToVote)

	// Overwrite.
	tok.TotalSupply = types.NewAmount(1)
	require.NoError(t, s.Commit(ctx, &store.Batch{Token: tok}))
	gotTok, err = s.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", gotTok.TotalSupply.String())
}

func testAccounts(t *testing.T, s store.Store) {
	ctx := context.Background()

	rich := ledger.NewAccount(id.NewAccountID())
	rich.Entity = types.NewEntityAt(stamp)
	rich.Balance = types.MaxAmount()
	rich.Locked = true

	empty := ledger.NewAccount(id.NewAccountID())
	empty.Entity = types.NewEntityAt(stamp)

	b := &store.Batch{}
	b.PutAccount(rich)
	b.PutAccount(empty)
	require.NoError(t, s.Commit(ctx, b))

	got, err := s.GetAccount(ctx, rich.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(types.MaxAmount()))
	assert.True(t, got.Locked)
	assert.True(t, got.CreatedAt.Equal(stamp), "created_at = %s", got.CreatedAt)
	assert.True(t, got.UpdatedAt.Equal(stamp), "updated_at = %s", got.UpdatedAt)

	all, err := s.ListAccounts(ctx, ledger.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	locked, err := s.ListAccounts(ctx, ledger.ListOpts{OnlyLocked: true})
	require.NoError(t, err)
	require.Len(t, locked, 1)
	assert.True(t, locked[0].ID.Equal(rich.ID))

	funded, err := s.ListAccounts(ctx, ledger.ListOpts{SkipEmpty: true})
	require.NoError(t, err)
	require.Len(t, funded, 1)

	// Upsert keeps the row and moves updated_at.
	later := stamp.Add(time.Minute)
	rich.Balance = types.NewAmount(10)
	rich.Locked = false
	rich.Touch(later)
	b = &store.Batch{}
	b.PutAccount(rich)
	require.NoError(t, s.Commit(ctx, b))

	got, err = s.GetAccount(ctx, rich.ID)
	require.NoError(t, err)
	assert.Equal(t, "10", got.Balance.String())
	assert.False(t, got.Locked)
	assert.True(t, got.UpdatedAt.Equal(later))
}

func testAllowances(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner, spender := id.NewAccountID(), id.NewAccountID()

	a := &ledger.Allowance{
		Entity:  types.NewEntityAt(stamp),
		Owner:   owner,
		Spender: spender,
		Amount:  types.NewAmount(50),
	}
	b := &store.Batch{}
	b.PutAllowance(a)
	require.NoError(t, s.Commit(ctx, b))

	got, err := s.GetAllowance(ctx, owner, spender)
	require.NoError(t, err)
	assert.Equal(t, "50", got.Amount.String())
	assert.True(t, got.Owner.Equal(owner))
	assert.True(t, got.Spender.Equal(spender))
	assert.True(t, got.CreatedAt.Equal(stamp))

	_, err = s.GetAllowance(ctx, spender, owner)
	assert.ErrorIs(t, err, votemax.ErrNotFound, "allowances are directional")

	a.Amount = types.NewAmount(20)
	b = &store.Batch{}
	b.PutAllowance(a)
	require.NoError(t, s.Commit(ctx, b))

	got, err = s.GetAllowance(ctx, owner, spender)
	require.NoError(t, err)
	assert.Equal(t, "20", got.Amount.String())
}

func testRounds(t *testing.T, s store.Store) {
	ctx := context.Background()
	voter := id.NewAccountID()

	r := activeRound(1)
	r.Options = []governance.Option{{Price: types.NewAmount(200), VoteCount: types.NewAmount(40), Proposer: voter}}
	r.Participants = []governance.Ballot{{
		RoundID:  r.ID,
		Account:  voter,
		Price:    types.NewAmount(200),
		Weight:   types.NewAmount(40),
		Proposed: true,
		CastAt:   stamp,
	}}
	b := &store.Batch{}
	b.PutRound(r)
	require.NoError(t, s.Commit(ctx, b))

	active, err := s.GetActiveRound(ctx)
	require.NoError(t, err)
	assert.True(t, active.ID.Equal(r.ID))
	assert.True(t, active.StartedAt.Equal(stamp))
	assert.True(t, active.EndDate.Equal(r.EndDate))
	assert.Nil(t, active.EndedAt)
	require.Len(t, active.Options, 1)
	assert.Equal(t, "200", active.Options[0].Price.String())
	assert.Equal(t, "40", active.Options[0].VoteCount.String())
	require.Len(t, active.Participants, 1)
	assert.True(t, active.Participants[0].Account.Equal(voter))

	ended := stamp.Add(time.Hour)
	r.Status = governance.StatusClosed
	r.EndedAt = &ended
	r.WinningPrice = types.NewAmount(200)
	r.Touch(ended)
	b = &store.Batch{}
	b.PutRound(r)
	b.PutRound(activeRound(2))
	require.NoError(t, s.Commit(ctx, b))

	closed, err := s.GetRound(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, governance.StatusClosed, closed.Status)
	require.NotNil(t, closed.EndedAt)
	assert.True(t, closed.EndedAt.Equal(ended))
	assert.Equal(t, "200", closed.WinningPrice.String())

	all, err := s.ListRounds(ctx, governance.ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, uint64(2), all[0].Number, "newest round first")

	onlyClosed, err := s.ListRounds(ctx, governance.ListOpts{Status: governance.StatusClosed})
	require.NoError(t, err)
	require.Len(t, onlyClosed, 1)
	assert.True(t, onlyClosed[0].ID.Equal(r.ID))
}

func testSwaps(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice, bob := id.NewAccountID(), id.NewAccountID()

	swap := func(acct id.AccountID, buy bool, at time.Time) *exchange.Swap {
		return &exchange.Swap{
			ID:        id.NewSwapID(),
			Account:   acct,
			IsBuy:     buy,
			AmountIn:  types.NewAmount(10000),
			AmountOut: types.NewAmount(990),
			Fee:       types.NewAmount(10),
			Price:     types.NewAmount(100),
			CreatedAt: at,
		}
	}

	b := &store.Batch{}
	b.AddSwap(swap(alice, true, stamp))
	b.AddSwap(swap(alice, false, stamp.Add(time.Second)))
	b.AddSwap(swap(bob, true, stamp.Add(2*time.Second)))
	require.NoError(t, s.Commit(ctx, b))

	all, err := s.ListSwaps(ctx, exchange.ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Account.Equal(bob), "newest swap first")
	assert.True(t, all[0].CreatedAt.Equal(stamp.Add(2*time.Second)))
	assert.Equal(t, "990", all[0].AmountOut.String())

	mine, err := s.ListSwaps(ctx, exchange.ListOpts{Account: alice})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	sells, err := s.ListSwaps(ctx, exchange.ListOpts{Side: exchange.SideSell})
	require.NoError(t, err)
	require.Len(t, sells, 1)
	assert.False(t, sells[0].IsBuy)

	page, err := s.ListSwaps(ctx, exchange.ListOpts{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
