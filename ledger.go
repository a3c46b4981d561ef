package votemax

import (
	"context"
	"errors"

	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
	"github.com/xraph/votemax/types"
)

// ──────────────────────────────────────────────────
// Balance primitives
// ──────────────────────────────────────────────────

// mint creates amount new tokens in to.
func (tx *txn) mint(to id.AccountID, amount types.Amount) error {
	tok, err := tx.loadToken()
	if err != nil {
		return err
	}
	acct, err := tx.account(to)
	if err != nil {
		return err
	}
	if !tok.Mint(amount) || !acct.Credit(amount) {
		return ErrOverflow
	}
	tx.putToken()
	tx.putAccount(acct)
	tx.transferred(id.Nil, to, amount)
	return nil
}

// burn destroys amount tokens held by from. Locks do not apply.
func (tx *txn) burn(from id.AccountID, amount types.Amount) error {
	tok, err := tx.loadToken()
	if err != nil {
		return err
	}
	acct, err := tx.account(from)
	if err != nil {
		return err
	}
	if !acct.Debit(amount) || !tok.Burn(amount) {
		return ErrInsufficientBalance
	}
	tx.putToken()
	tx.putAccount(acct)
	tx.transferred(from, id.Nil, amount)
	return nil
}

// move transfers amount from one account to another. A locked sender is
// rejected when checkLock is set.
func (tx *txn) move(from, to id.AccountID, amount types.Amount, checkLock bool) error {
	src, err := tx.account(from)
	if err != nil {
		return err
	}
	if checkLock && src.Locked {
		return ErrAccountLocked
	}
	dst, err := tx.account(to)
	if err != nil {
		return err
	}
	if !src.Debit(amount) {
		return ErrInsufficientBalance
	}
	if !dst.Credit(amount) {
		return ErrOverflow
	}
	tx.putAccount(src)
	tx.putAccount(dst)
	tx.transferred(from, to, amount)
	return nil
}

func (tx *txn) transferred(from, to id.AccountID, amount types.Amount) {
	t := &ledger.Transfer{From: from, To: to, Amount: amount, At: tx.now}
	tx.on(func(ctx context.Context) {
		tx.plugins().EmitTransfer(ctx, t)
	})
}

// ──────────────────────────────────────────────────
// Ledger operations
// ──────────────────────────────────────────────────

// Mint creates amount tokens in to. Administrator only.
func (c *Contract) Mint(ctx context.Context, caller, to id.AccountID, amount types.Amount) error {
	return c.exec(ctx, "mint", func(tx *txn) error {
		if err := tx.requireAdmin(caller); err != nil {
			return err
		}
		if err := requireAccount(to); err != nil {
			return err
		}
		return tx.mint(to, amount)
	})
}

// Burn destroys amount tokens held by from. Administrator only.
func (c *Contract) Burn(ctx context.Context, caller, from id.AccountID, amount types.Amount) error {
	return c.exec(ctx, "burn", func(tx *txn) error {
		if err := tx.requireAdmin(caller); err != nil {
			return err
		}
		if err := requireAccount(from); err != nil {
			return err
		}
		return tx.burn(from, amount)
	})
}

// Transfer moves amount from from to to. Accounts locked in a vote cannot send.
func (c *Contract) Transfer(ctx context.Context, from, to id.AccountID, amount types.Amount) error {
	return c.exec(ctx, "transfer", func(tx *txn) error {
		if err := requireCaller(from); err != nil {
			return err
		}
		if err := requireAccount(to); err != nil {
			return err
		}
		return tx.move(from, to, amount, true)
	})
}

// Approve sets the amount spender may move out of owner's balance,
// replacing any previous allowance.
func (c *Contract) Approve(ctx context.Context, owner, spender id.AccountID, amount types.Amount) error {
	return c.exec(ctx, "approve", func(tx *txn) error {
		if err := requireCaller(owner); err != nil {
			return err
		}
		if err := requireAccount(spender); err != nil {
			return err
		}

		a, err := tx.store.GetAllowance(tx.ctx, owner, spender)
		switch {
		case errors.Is(err, ErrNotFound):
			a = &ledger.Allowance{Entity: types.NewEntityAt(tx.now), Owner: owner, Spender: spender}
		case err != nil:
			return err
		}
		a.Amount = amount
		a.Touch(tx.now)
		tx.batch.PutAllowance(a)

		ev := &ledger.Approval{Owner: owner, Spender: spender, Amount: amount, At: tx.now}
		tx.on(func(ctx context.Context) {
			tx.plugins().EmitApproval(ctx, ev)
		})
		return nil
	})
}

// TransferFrom moves amount from owner to to on behalf of spender, spending
// the allowance. The owner's vote lock applies.
func (c *Contract) TransferFrom(ctx context.Context, spender, owner, to id.AccountID, amount types.Amount) error {
	return c.exec(ctx, "transfer_from", func(tx *txn) error {
		for _, acct := range []id.AccountID{spender, owner} {
			if err := requireCaller(acct); err != nil {
				return err
			}
		}
		if err := requireAccount(to); err != nil {
			return err
		}

		a, err := tx.store.GetAllowance(tx.ctx, owner, spender)
		switch {
		case errors.Is(err, ErrNotFound):
			return ErrInsufficientAllowance
		case err != nil:
			return err
		}
		if !a.Spend(amount) {
			return ErrInsufficientAllowance
		}
		a.Touch(tx.now)
		tx.batch.PutAllowance(a)

		return tx.move(owner, to, amount, true)
	})
}

// TransferAdministration hands the administrator capability to newAdmin.
func (c *Contract) TransferAdministration(ctx context.Context, caller, newAdmin id.AccountID) error {
	return c.exec(ctx, "transfer_administration", func(tx *txn) error {
		if err := tx.requireAdmin(caller); err != nil {
			return err
		}
		if err := requireAccount(newAdmin); err != nil {
			return err
		}
		tok := tx.token
		previous := tok.Administrator
		tok.Administrator = newAdmin
		tx.putToken()

		tx.on(func(ctx context.Context) {
			tx.plugins().EmitAdministratorChanged(ctx, previous, newAdmin)
		})
		return nil
	})
}

// ──────────────────────────────────────────────────
// Ledger queries
// ──────────────────────────────────────────────────

// BalanceOf returns the balance of account. Unknown accounts hold zero.
func (c *Contract) BalanceOf(ctx context.Context, account id.AccountID) (types.Amount, error) {
	var out types.Amount
	err := c.view(ctx, func(tx *txn) error {
		a, err := tx.account(account)
		if err != nil {
			return err
		}
		out = a.Balance
		return nil
	})
	return out, err
}

// IsLocked reports whether account is locked as a participant of the
// active voting round.
func (c *Contract) IsLocked(ctx context.Context, account id.AccountID) (bool, error) {
	var out bool
	err := c.view(ctx, func(tx *txn) error {
		a, err := tx.account(account)
		if err != nil {
			return err
		}
		out = a.Locked
		return nil
	})
	return out, err
}

// Account returns the full account record. Unknown accounts read as empty.
func (c *Contract) Account(ctx context.Context, account id.AccountID) (*ledger.Account, error) {
	var out *ledger.Account
	err := c.view(ctx, func(tx *txn) error {
		a, err := tx.account(account)
		out = a
		return err
	})
	return out, err
}

// Accounts lists holders.
func (c *Contract) Accounts(ctx context.Context, opts ledger.ListOpts) ([]*ledger.Account, error) {
	return c.store.ListAccounts(ctx, opts)
}

// Allowance returns what spender may still move out of owner's balance.
func (c *Contract) Allowance(ctx context.Context, owner, spender id.AccountID) (types.Amount, error) {
	a, err := c.store.GetAllowance(ctx, owner, spender)
	if errors.Is(err, ErrNotFound) {
		return types.Amount{}, nil
	}
	if err != nil {
		return types.Amount{}, err
	}
	return a.Amount, nil
}

// Token returns the token metadata and supply.
func (c *Contract) Token(ctx context.Context) (*ledger.Token, error) {
	var out *ledger.Token
	err := c.view(ctx, func(tx *txn) error {
		t, err := tx.loadToken()
		out = t
		return err
	})
	return out, err
}

// TotalSupply returns the number of tokens in circulation.
func (c *Contract) TotalSupply(ctx context.Context) (types.Amount, error) {
	t, err := c.Token(ctx)
	if err != nil {
		return types.Amount{}, err
	}
	return t.TotalSupply, nil
}

// Name returns the token name.
func (c *Contract) Name(ctx context.Context) (string, error) {
	t, err := c.Token(ctx)
	if err != nil {
		return "", err
	}
	return t.Name, nil
}

// Symbol returns the token symbol.
func (c *Contract) Symbol(ctx context.Context) (string, error) {
	t, err := c.Token(ctx)
	if err != nil {
		return "", err
	}
	return t.Symbol, nil
}

// Administrator returns the account holding the administrator capability.
func (c *Contract) Administrator(ctx context.Context) (id.AccountID, error) {
	t, err := c.Token(ctx)
	if err != nil {
		return id.Nil, err
	}
	return t.Administrator, nil
}
