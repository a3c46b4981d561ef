// Package ledger holds the token balances, allowances and supply of the
// Vote Max Token together with the pure balance arithmetic the engine uses.
package ledger

import (
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/types"
)

// NewAccount returns an empty, unlocked account. Missing accounts read as this.
func NewAccount(accountID id.AccountID) *Account {
	return &Account{ID: accountID}
}

// Credit adds amount to the balance. It reports false and leaves the balance
// untouched on overflow.
func (a *Account) Credit(amount types.Amount) bool {
	next, overflow := a.Balance.AddOverflow(amount)
	if overflow {
		return false
	}
	a.Balance = next
	return true
}

// Debit subtracts amount from the balance. It reports false and leaves the
// balance untouched when the balance is too small.
func (a *Account) Debit(amount types.Amount) bool {
	if a.Balance.LessThan(amount) {
		return false
	}
	a.Balance = a.Balance.Sub(amount)
	return true
}

// Spend lowers the allowance by amount, reporting false when it is too small.
func (a *Allowance) Spend(amount types.Amount) bool {
	if a.Amount.LessThan(amount) {
		return false
	}
	a.Amount = a.Amount.Sub(amount)
	return true
}

// Mint raises the supply, reporting false on overflow.
func (t *Token) Mint(amount types.Amount) bool {
	next, overflow := t.TotalSupply.AddOverflow(amount)
	if overflow {
		return false
	}
	t.TotalSupply = next
	return true
}

// Burn lowers the supply, reporting false when it would go negative.
func (t *Token) Burn(amount types.Amount) bool {
	if t.TotalSupply.LessThan(amount) {
		return false
	}
	t.TotalSupply = t.TotalSupply.Sub(amount)
	return true
}

// IsAdministrator reports whether accountID holds the administrator capability.
func (t *Token) IsAdministrator(accountID id.AccountID) bool {
	return !accountID.IsNil() && t.Administrator.Equal(accountID)
}
