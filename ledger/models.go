package ledger

import (
	"time"

	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/types"
)

const (
	DefaultName   = "Vote Max Token"
	DefaultSymbol = "VTM"
)

type Account struct {
	types.Entity
	ID      id.AccountID `json:"id"`
	Balance types.Amount `json:"balance"`
	Locked  bool         `json:"locked"`
}

type Allowance struct {
	types.Entity
	Owner   id.AccountID `json:"owner"`
	Spender id.AccountID `json:"spender"`
	Amount  types.Amount `json:"amount"`
}

// Key returns the composite owner:spender key used by the stores.
func (a *Allowance) Key() string {
	return AllowanceKey(a.Owner, a.Spender)
}

func AllowanceKey(owner, spender id.AccountID) string {
	return owner.String() + ":" + spender.String()
}

// Token is the singleton holding token metadata and the supply counter.
type Token struct {
	types.Entity
	Name          string       `json:"name"`
	Symbol        string       `json:"symbol"`
	TotalSupply   types.Amount `json:"total_supply"`
	Administrator id.AccountID `json:"administrator"`
}

// Transfer describes a balance movement. A nil From is a mint and a nil To
// is a burn.
type Transfer struct {
	From   id.AccountID `json:"from"`
	To     id.AccountID `json:"to"`
	Amount types.Amount `json:"amount"`
	At     time.Time    `json:"at"`
}

func (t *Transfer) IsMint() bool { return t.From.IsNil() }

func (t *Transfer) IsBurn() bool { return t.To.IsNil() }

// Approval describes an allowance being set.
type Approval struct {
	Owner   id.AccountID `json:"owner"`
	Spender id.AccountID `json:"spender"`
	Amount  types.Amount `json:"amount"`
	At      time.Time    `json:"at"`
}
