package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
	votemaxstore "github.com/xraph/votemax/store"
	"github.com/xraph/votemax/store/storetest"
	"github.com/xraph/votemax/types"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) votemaxstore.Store {
		s := New()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetAccount(ctx, id.NewAccountID()); !errors.Is(err, votemax.ErrAccountNotFound) {
		t.Errorf("GetAccount: got %v", err)
	}
	if _, err := s.GetToken(ctx); !errors.Is(err, votemax.ErrNotFound) {
		t.Errorf("GetToken: got %v", err)
	}
	if _, err := s.GetFeePolicy(ctx); !errors.Is(err, votemax.ErrNotFound) {
		t.Errorf("GetFeePolicy: got %v", err)
	}
	if _, err := s.GetMarket(ctx); !errors.Is(err, votemax.ErrNotFound) {
		t.Errorf("GetMarket: got %v", err)
	}
	if _, err := s.GetSettings(ctx); !errors.Is(err, votemax.ErrNotFound) {
		t.Errorf("GetSettings: got %v", err)
	}
	if _, err := s.GetActiveRound(ctx); !errors.Is(err, votemax.ErrRoundNotFound) {
		t.Errorf("GetActiveRound: got %v", err)
	}
	if _, err := s.GetAllowance(ctx, id.NewAccountID(), id.NewAccountID()); !errors.Is(err, votemax.ErrNotFound) {
		t.Errorf("GetAllowance: got %v", err)
	}
}

func TestCommitCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := New()

	acct := ledger.NewAccount(id.NewAccountID())
	acct.Balance = types.NewAmount(100)

	var b votemaxstore.Batch
	b.PutAccount(acct)
	if err := s.Commit(ctx, &b); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// Mutating the staged value after commit must not leak into the store.
	acct.Balance = types.NewAmount(1)

	got, err := s.GetAccount(ctx, acct.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Balance.String() != "100" {
		t.Errorf("balance: got %s, want 100", got.Balance)
	}

	got.Balance = types.NewAmount(5)
	again, err := s.GetAccount(ctx, acct.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if again.Balance.String() != "100" {
		t.Errorf("returned value aliases stored one: %s", again.Balance)
	}
}

func TestListAccounts(t *testing.T) {
	ctx := context.Background()
	s := New()

	var b votemaxstore.Batch
	for i := 0; i < 5; i++ {
		a := ledger.NewAccount(id.NewAccountID())
		a.Balance = types.NewAmount(uint64(i))
		a.Locked = i%2 == 1
		b.PutAccount(a)
	}
	if err := s.Commit(ctx, &b); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	tests := []struct {
		name string
		opts ledger.ListOpts
		want int
	}{
		{"all", ledger.ListOpts{}, 5},
		{"locked", ledger.ListOpts{OnlyLocked: true}, 2},
		{"non-empty", ledger.ListOpts{SkipEmpty: true}, 4},
		{"limit", ledger.ListOpts{Limit: 2}, 2},
		{"offset", ledger.ListOpts{Offset: 4}, 1},
		{"offset past end", ledger.ListOpts{Offset: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListAccounts(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListAccounts: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d accounts, want %d", len(got), tt.want)
			}
		})
	}
}

func TestRounds(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first, _ := governance.Open(1, id.NewAccountID(), types.NewAmount(200), types.NewAmount(10), now, time.Hour)
	first.Close(now.Add(time.Hour))
	second, _ := governance.Open(2, id.NewAccountID(), types.NewAmount(300), types.NewAmount(10), now.Add(2*time.Hour), time.Hour)

	var b votemaxstore.Batch
	b.PutRound(first)
	b.PutRound(second)
	if err := s.Commit(ctx, &b); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	active, err := s.GetActiveRound(ctx)
	if err != nil {
		t.Fatalf("GetActiveRound: %v", err)
	}
	if !active.ID.Equal(second.ID) {
		t.Errorf("active round: got %s, want %s", active.ID, second.ID)
	}

	all, err := s.ListRounds(ctx, governance.ListOpts{})
	if err != nil {
		t.Fatalf("ListRounds: %v", err)
	}
	if len(all) != 2 || all[0].Number != 2 {
		t.Fatalf("ListRounds: unexpected order %+v", all)
	}

	closed, err := s.ListRounds(ctx, governance.ListOpts{Status: governance.StatusClosed})
	if err != nil {
		t.Fatalf("ListRounds: %v", err)
	}
	if len(closed) != 1 || closed[0].WinningPrice.String() != "200" {
		t.Errorf("closed rounds: %+v", closed)
	}

	// Mutating a returned round must not leak into the store.
	active.Options[0].VoteCount = types.NewAmount(999)
	again, err := s.GetRound(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetRound: %v", err)
	}
	if again.Options[0].VoteCount.String() != "10" {
		t.Errorf("round aliasing: %s", again.Options[0].VoteCount)
	}
}

func TestListSwaps(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice, bob := id.NewAccountID(), id.NewAccountID()

	var b votemaxstore.Batch
	for i, sw := range []*exchange.Swap{
		{ID: id.NewSwapID(), Account: alice, IsBuy: true},
		{ID: id.NewSwapID(), Account: bob, IsBuy: true},
		{ID: id.NewSwapID(), Account: alice, IsBuy: false},
	} {
		sw.AmountIn = types.NewAmount(uint64(i + 1))
		b.AddSwap(sw)
	}
	if err := s.Commit(ctx, &b); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	all, err := s.ListSwaps(ctx, exchange.ListOpts{})
	if err != nil {
		t.Fatalf("ListSwaps: %v", err)
	}
	if len(all) != 3 || all[0].AmountIn.String() != "3" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	mine, err := s.ListSwaps(ctx, exchange.ListOpts{Account: alice, Side: exchange.SideBuy})
	if err != nil {
		t.Fatalf("ListSwaps: %v", err)
	}
	if len(mine) != 1 || mine[0].AmountIn.String() != "1" {
		t.Errorf("filtered swaps: %+v", mine)
	}
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, votemax.ErrStoreClosed) {
		t.Errorf("Ping after close: got %v", err)
	}

	b := votemaxstore.Batch{Token: &ledger.Token{Name: "x"}}
	if err := s.Commit(ctx, &b); !errors.Is(err, votemax.ErrStoreClosed) {
		t.Errorf("Commit after close: got %v", err)
	}
}
