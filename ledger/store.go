package ledger

import (
	"context"

	"github.com/xraph/votemax/id"
)

type Store interface {
	GetAccount(ctx context.Context, accountID id.AccountID) (*Account, error)
	ListAccounts(ctx context.Context, opts ListOpts) ([]*Account, error)
	GetAllowance(ctx context.Context, owner, spender id.AccountID) (*Allowance, error)
	GetToken(ctx context.Context) (*Token, error)
}

type ListOpts struct {
	OnlyLocked bool
	SkipEmpty  bool
	Limit      int
	Offset     int
}
