package votemax

import (
	"context"

	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/types"
)

// Buy swaps nativeIn for tokens at the current price. The full quote is
// minted; the fee share goes to the contract account and the rest to caller.
func (c *Contract) Buy(ctx context.Context, caller id.AccountID, nativeIn types.Amount) (*exchange.Swap, error) {
	var swap *exchange.Swap
	err := c.exec(ctx, "buy", func(tx *txn) error {
		if err := requireCaller(caller); err != nil {
			return err
		}
		if nativeIn.IsZero() {
			return ErrZeroAmount
		}
		m, err := tx.loadMarket()
		if err != nil {
			return err
		}
		p, err := tx.loadPolicy()
		if err != nil {
			return err
		}

		tokensOut, ok := m.QuoteBuy(nativeIn)
		if !ok {
			return ErrOverflow
		}
		if tokensOut.IsZero() {
			return ErrZeroAmount
		}

		net, fee := p.Split(tokensOut)
		if err := tx.mint(caller, net); err != nil {
			return err
		}
		if err := tx.collectFee(id.Nil, fee); err != nil {
			return err
		}
		if !m.Fund(nativeIn) {
			return ErrOverflow
		}
		tx.putMarket()

		swap = tx.recordSwap(caller, true, nativeIn, net, fee, m.TokenPrice)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return swap, nil
}

// Sell swaps tokenAmount back to native value at the current price. The fee
// share moves to the contract account; only the remainder is burned.
func (c *Contract) Sell(ctx context.Context, caller id.AccountID, tokenAmount types.Amount) (*exchange.Swap, error) {
	var swap *exchange.Swap
	err := c.exec(ctx, "sell", func(tx *txn) error {
		if err := requireCaller(caller); err != nil {
			return err
		}
		if tokenAmount.IsZero() {
			return ErrZeroAmount
		}
		acct, err := tx.account(caller)
		if err != nil {
			return err
		}
		if acct.Locked {
			return ErrAccountLocked
		}
		if acct.Balance.LessThan(tokenAmount) {
			return ErrInsufficientBalance
		}
		m, err := tx.loadMarket()
		if err != nil {
			return err
		}
		p, err := tx.loadPolicy()
		if err != nil {
			return err
		}

		payout, ok := m.QuoteSell(tokenAmount)
		if !ok {
			return ErrOverflow
		}
		if !m.Withdraw(payout) {
			return ErrInsufficientReserve
		}
		tx.putMarket()

		net, fee := p.Split(tokenAmount)
		if err := tx.collectFee(caller, fee); err != nil {
			return err
		}
		if err := tx.burn(caller, net); err != nil {
			return err
		}

		swap = tx.recordSwap(caller, false, tokenAmount, payout, fee, m.TokenPrice)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return swap, nil
}

// Deposit adds native value to the reserve that pays out sells.
func (c *Contract) Deposit(ctx context.Context, caller id.AccountID, nativeIn types.Amount) error {
	return c.exec(ctx, "deposit", func(tx *txn) error {
		if err := requireAccount(caller); err != nil {
			return err
		}
		if nativeIn.IsZero() {
			return ErrZeroAmount
		}
		m, err := tx.loadMarket()
		if err != nil {
			return err
		}
		if !m.Fund(nativeIn) {
			return ErrOverflow
		}
		tx.putMarket()
		return nil
	})
}

// SetTokenPrice sets the exchange price. Administrator only.
func (c *Contract) SetTokenPrice(ctx context.Context, caller id.AccountID, price types.Amount) error {
	return c.exec(ctx, "set_price", func(tx *txn) error {
		if err := tx.requireAdmin(caller); err != nil {
			return err
		}
		if price.IsZero() {
			return ErrZeroAmount
		}
		return tx.setPrice(price)
	})
}

func (tx *txn) setPrice(price types.Amount) error {
	m, err := tx.loadMarket()
	if err != nil {
		return err
	}
	change := &exchange.PriceChange{Previous: m.TokenPrice, Current: price, At: tx.now}
	m.TokenPrice = price
	tx.putMarket()

	tx.on(func(ctx context.Context) {
		tx.plugins().EmitPriceChanged(ctx, change)
	})
	return nil
}

func (tx *txn) recordSwap(account id.AccountID, isBuy bool, in, out, fee, price types.Amount) *exchange.Swap {
	s := &exchange.Swap{
		ID:        id.NewSwapID(),
		Account:   account,
		IsBuy:     isBuy,
		AmountIn:  in,
		AmountOut: out,
		Fee:       fee,
		Price:     price,
		CreatedAt: tx.now,
	}
	tx.batch.AddSwap(s)

	ev := *s
	tx.on(func(ctx context.Context) {
		tx.plugins().EmitTokensSwapped(ctx, &ev)
	})
	return s
}

// Market returns the exchange singleton.
func (c *Contract) Market(ctx context.Context) (*exchange.Market, error) {
	var out *exchange.Market
	err := c.view(ctx, func(tx *txn) error {
		m, err := tx.loadMarket()
		out = m
		return err
	})
	return out, err
}

// TokenPrice returns the current exchange price.
func (c *Contract) TokenPrice(ctx context.Context) (types.Amount, error) {
	m, err := c.Market(ctx)
	if err != nil {
		return types.Amount{}, err
	}
	return m.TokenPrice, nil
}

// Decimals returns the price scaling factor.
func (c *Contract) Decimals(ctx context.Context) (uint64, error) {
	m, err := c.Market(ctx)
	if err != nil {
		return 0, err
	}
	return m.Decimals, nil
}

// Reserve returns the native value available to pay out sells.
func (c *Contract) Reserve(ctx context.Context) (types.Amount, error) {
	m, err := c.Market(ctx)
	if err != nil {
		return types.Amount{}, err
	}
	return m.Reserve, nil
}

// Swaps lists the swap journal, newest first.
func (c *Contract) Swaps(ctx context.Context, opts exchange.ListOpts) ([]*exchange.Swap, error) {
	return c.store.ListSwaps(ctx, opts)
}
