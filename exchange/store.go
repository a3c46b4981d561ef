package exchange

import (
	"context"

	"github.com/xraph/votemax/id"
)

type Store interface {
	GetMarket(ctx context.Context) (*Market, error)
	ListSwaps(ctx context.Context, opts ListOpts) ([]*Swap, error)
}

// ListOpts filters the swap journal. Results are newest first.
type ListOpts struct {
	Account id.AccountID
	Side    Side
	Limit   int
	Offset  int
}
