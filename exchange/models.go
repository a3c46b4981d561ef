package exchange

import (
	"time"

	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/types"
)

const (
	DefaultTokenPrice uint64 = 100
	DefaultDecimals   uint64 = 10
)

// Market is the exchange singleton. Reserve is the native value the
// contract holds to pay out sells.
type Market struct {
	types.Entity
	TokenPrice types.Amount `json:"token_price"`
	Decimals   uint64       `json:"decimals"`
	Reserve    types.Amount `json:"reserve"`
}

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Swap is a journal entry for one buy or sell. For a buy AmountIn is native
// value and AmountOut is tokens credited; for a sell it is the reverse.
type Swap struct {
	ID        id.SwapID    `json:"id"`
	Account   id.AccountID `json:"account"`
	IsBuy     bool         `json:"is_buy"`
	AmountIn  types.Amount `json:"amount_in"`
	AmountOut types.Amount `json:"amount_out"`
	Fee       types.Amount `json:"fee"`
	Price     types.Amount `json:"price"`
	CreatedAt time.Time    `json:"created_at"`
}

func (s *Swap) Side() Side {
	if s.IsBuy {
		return SideBuy
	}
	return SideSell
}

type PriceChange struct {
	Previous types.Amount `json:"previous"`
	Current  types.Amount `json:"current"`
	At       time.Time    `json:"at"`
}
