// Package exchange prices token buys and sells against native value at a
// constant, governance-controlled price.
package exchange

import "github.com/xraph/votemax/types"

// NewMarket returns a market with the default price and decimals and an
// empty reserve.
func NewMarket() *Market {
	return &Market{
		TokenPrice: types.NewAmount(DefaultTokenPrice),
		Decimals:   DefaultDecimals,
	}
}

// QuoteBuy returns the tokens minted for nativeIn: nativeIn * decimals / price.
// ok is false on overflow or a zero price.
func (m *Market) QuoteBuy(nativeIn types.Amount) (tokensOut types.Amount, ok bool) {
	return nativeIn.MulDiv(types.NewAmount(m.Decimals), m.TokenPrice)
}

// QuoteSell returns the native value paid for tokens: tokens * price / decimals.
// ok is false on overflow or zero decimals.
func (m *Market) QuoteSell(tokens types.Amount) (payout types.Amount, ok bool) {
	return tokens.MulDiv(m.TokenPrice, types.NewAmount(m.Decimals))
}

// Fund adds native value to the reserve, reporting false on overflow.
func (m *Market) Fund(nativeIn types.Amount) bool {
	next, overflow := m.Reserve.AddOverflow(nativeIn)
	if overflow {
		return false
	}
	m.Reserve = next
	return true
}

// Withdraw takes payout from the reserve, reporting false when it is short.
func (m *Market) Withdraw(payout types.Amount) bool {
	if m.Reserve.LessThan(payout) {
		return false
	}
	m.Reserve = m.Reserve.Sub(payout)
	return true
}
