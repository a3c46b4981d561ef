// Package fee implements the percentage fee charged on exchange swaps.
package fee

import "github.com/xraph/votemax/types"

// NewPolicy returns a policy with the default percentage and no balance.
func NewPolicy() *Policy {
	return &Policy{Percentage: DefaultPercentage}
}

// ValidPercentage reports whether pct lies in [0, MaxPercentage].
func ValidPercentage(pct uint64) bool {
	return pct <= MaxPercentage
}

// Split divides amount into the part kept by the payer and the fee, using
// fee = amount * pct / 100 with truncation. net + fee always equals amount.
func Split(amount types.Amount, pct uint64) (net, fee types.Amount) {
	fee, ok := amount.MulDivFull(types.NewAmount(pct), types.NewAmount(100))
	if !ok || amount.LessThan(fee) {
		fee = amount
	}
	return amount.Sub(fee), fee
}

// Split charges the policy's percentage on amount.
func (p *Policy) Split(amount types.Amount) (net, fee types.Amount) {
	return Split(amount, p.Percentage)
}

// Collect adds fee to the tracked balance, reporting false on overflow.
func (p *Policy) Collect(fee types.Amount) bool {
	next, overflow := p.Balance.AddOverflow(fee)
	if overflow {
		return false
	}
	p.Balance = next
	return true
}

// Drain empties the balance and returns what it held.
func (p *Policy) Drain() types.Amount {
	out := p.Balance
	p.Balance = types.Amount{}
	return out
}
