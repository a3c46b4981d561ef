package votemax

import (
	"context"

	"github.com/xraph/votemax/fee"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/types"
)

// SetBuyFeePercentage sets the swap fee to pct percent. Administrator only;
// pct must be at most fee.MaxPercentage.
func (c *Contract) SetBuyFeePercentage(ctx context.Context, caller id.AccountID, pct uint64) error {
	return c.exec(ctx, "set_fee", func(tx *txn) error {
		if err := tx.requireAdmin(caller); err != nil {
			return err
		}
		if !fee.ValidPercentage(pct) {
			return ErrOutOfRange
		}
		p, err := tx.loadPolicy()
		if err != nil {
			return err
		}
		change := &fee.Change{Previous: p.Percentage, Current: pct, At: tx.now}
		p.Percentage = pct
		tx.putPolicy()

		tx.on(func(ctx context.Context) {
			tx.plugins().EmitFeeChanged(ctx, change)
		})
		return nil
	})
}

// BurnFee burns every collected fee token held by the contract account.
// Administrator only. With nothing collected it succeeds without effect.
func (c *Contract) BurnFee(ctx context.Context, caller id.AccountID) error {
	return c.exec(ctx, "burn_fee", func(tx *txn) error {
		if err := tx.requireAdmin(caller); err != nil {
			return err
		}
		p, err := tx.loadPolicy()
		if err != nil {
			return err
		}
		if p.Balance.IsZero() {
			return nil
		}
		amount := p.Drain()
		tx.putPolicy()
		if err := tx.burn(id.ContractAccount, amount); err != nil {
			return err
		}

		burned := &fee.Burned{Amount: amount, At: tx.now}
		tx.on(func(ctx context.Context) {
			tx.plugins().EmitFeeBurned(ctx, burned)
		})
		return nil
	})
}

// collectFee moves fee into the contract account from payer, or mints it
// there when payer is nil.
func (tx *txn) collectFee(payer id.AccountID, amount types.Amount) error {
	if amount.IsZero() {
		return nil
	}
	p, err := tx.loadPolicy()
	if err != nil {
		return err
	}
	if payer.IsNil() {
		err = tx.mint(id.ContractAccount, amount)
	} else {
		err = tx.move(payer, id.ContractAccount, amount, false)
	}
	if err != nil {
		return err
	}
	if !p.Collect(amount) {
		return ErrOverflow
	}
	tx.putPolicy()
	return nil
}

// Fee returns the current fee percentage.
func (c *Contract) Fee(ctx context.Context) (uint64, error) {
	p, err := c.FeePolicy(ctx)
	if err != nil {
		return 0, err
	}
	return p.Percentage, nil
}

// FeeBalance returns the collected fees not yet burned.
func (c *Contract) FeeBalance(ctx context.Context) (types.Amount, error) {
	p, err := c.FeePolicy(ctx)
	if err != nil {
		return types.Amount{}, err
	}
	return p.Balance, nil
}

// FeePolicy returns the fee singleton.
func (c *Contract) FeePolicy(ctx context.Context) (*fee.Policy, error) {
	var out *fee.Policy
	err := c.view(ctx, func(tx *txn) error {
		p, err := tx.loadPolicy()
		out = p
		return err
	})
	return out, err
}
