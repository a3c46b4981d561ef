package votemax

import (
	"context"
	"time"

	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/ledger"
	"github.com/xraph/votemax/types"
)

// ──────────────────────────────────────────────────
// Voting
// ──────────────────────────────────────────────────

// StartVoting proposes price. When no round is active it opens one that runs
// for TimeToVote; otherwise price is added as a new option. The caller's
// whole balance is the option's initial weight and the caller is locked
// until the round ends. A zero price is rejected.
func (c *Contract) StartVoting(ctx context.Context, caller id.AccountID, price types.Amount) (*governance.Ballot, error) {
	var ballot governance.Ballot
	err := c.exec(ctx, "start_voting", func(tx *txn) error {
		if price.IsZero() {
			return ErrZeroAmount
		}
		acct, round, err := tx.participant(caller)
		if err != nil {
			return err
		}

		if round == nil {
			settings, err := tx.loadSettings()
			if err != nil {
				return err
			}
			round, ballot = governance.Open(settings.CurrentVoteCount, caller, price, acct.Balance, tx.now, settings.TimeToVote)
		} else {
			if round.HasOption(price) {
				return ErrOptionExists
			}
			ballot = round.Propose(caller, price, acct.Balance, tx.now)
		}

		acct.Locked = true
		tx.putAccount(acct)
		tx.putRound(round)

		ev := ballot
		tx.on(func(ctx context.Context) {
			tx.plugins().EmitVotingStarted(ctx, &ev)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ballot, nil
}

// Vote adds the caller's whole balance to the existing option for price and
// locks the caller until the round ends.
func (c *Contract) Vote(ctx context.Context, caller id.AccountID, price types.Amount) (*governance.Ballot, error) {
	var ballot governance.Ballot
	err := c.exec(ctx, "vote", func(tx *txn) error {
		acct, round, err := tx.participant(caller)
		if err != nil {
			return err
		}
		if round == nil {
			return ErrNoSuchOption
		}

		var ok bool
		ballot, ok = round.Cast(caller, price, acct.Balance, tx.now)
		if !ok {
			return ErrNoSuchOption
		}

		acct.Locked = true
		tx.putAccount(acct)
		tx.putRound(round)

		ev := ballot
		tx.on(func(ctx context.Context) {
			tx.plugins().EmitVoted(ctx, &ev)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ballot, nil
}

// participant runs the checks shared by StartVoting and Vote and returns the
// caller's account with the active round, which is nil when idle.
func (tx *txn) participant(caller id.AccountID) (*ledger.Account, *governance.Round, error) {
	if err := requireCaller(caller); err != nil {
		return nil, nil, err
	}
	round, err := tx.activeRound()
	if err != nil {
		return nil, nil, err
	}
	if round != nil && round.HasParticipant(caller) {
		return nil, nil, ErrAlreadyParticipating
	}
	acct, err := tx.account(caller)
	if err != nil {
		return nil, nil, err
	}
	tok, err := tx.loadToken()
	if err != nil {
		return nil, nil, err
	}
	if !governance.Eligible(acct.Balance, tok.TotalSupply) {
		return nil, nil, ErrNotEligible
	}
	return acct, round, nil
}

// EndVote closes the active round once its end date has passed. The winning
// price becomes the token price and every participant is unlocked. Anyone
// may call it.
func (c *Contract) EndVote(ctx context.Context, caller id.AccountID) (*governance.Round, error) {
	var closed *governance.Round
	err := c.exec(ctx, "end_vote", func(tx *txn) error {
		round, err := tx.activeRound()
		if err != nil {
			return err
		}
		if round == nil {
			return ErrInvalidState
		}
		if !round.Ended(tx.now) {
			return ErrVotingNotEnded
		}

		for _, acctID := range round.Accounts() {
			acct, err := tx.account(acctID)
			if err != nil {
				return err
			}
			acct.Locked = false
			tx.putAccount(acct)
		}

		winner := round.Close(tx.now)
		tx.putRound(round)

		if err := tx.setPrice(winner); err != nil {
			return err
		}

		settings, err := tx.loadSettings()
		if err != nil {
			return err
		}
		settings.CurrentVoteCount++
		tx.putSettings()

		closed = round.Clone()
		ev := round.Clone()
		tx.on(func(ctx context.Context) {
			tx.plugins().EmitVotingEnded(ctx, ev)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("voting round ended",
		"round", closed.ID.String(),
		"number", closed.Number,
		"winning_price", closed.WinningPrice.String(),
		"participants", len(closed.Participants),
		"ended_by", caller.String(),
	)
	return closed, nil
}

// SetTimeToVote sets the length of future rounds. Administrator only, and
// only while no round is active.
func (c *Contract) SetTimeToVote(ctx context.Context, caller id.AccountID, d time.Duration) error {
	return c.exec(ctx, "set_time_to_vote", func(tx *txn) error {
		if err := tx.requireAdmin(caller); err != nil {
			return err
		}
		if d <= 0 {
			return ErrOutOfRange
		}
		round, err := tx.activeRound()
		if err != nil {
			return err
		}
		if round != nil {
			return ErrInvalidState
		}
		settings, err := tx.loadSettings()
		if err != nil {
			return err
		}
		settings.TimeToVote = d
		tx.putSettings()
		return nil
	})
}

// ──────────────────────────────────────────────────
// Governance queries
// ──────────────────────────────────────────────────

// IsVotingGoing reports whether a round is active.
func (c *Contract) IsVotingGoing(ctx context.Context) (bool, error) {
	r, err := c.ActiveRound(ctx)
	if err != nil {
		return false, err
	}
	return r != nil, nil
}

// ActiveRound returns the open round, or nil when idle.
func (c *Contract) ActiveRound(ctx context.Context) (*governance.Round, error) {
	var out *governance.Round
	err := c.view(ctx, func(tx *txn) error {
		r, err := tx.activeRound()
		out = r
		return err
	})
	return out, err
}

// HighestVotedPriceNow returns the currently leading price, or zero when idle.
func (c *Contract) HighestVotedPriceNow(ctx context.Context) (types.Amount, error) {
	r, err := c.ActiveRound(ctx)
	if err != nil || r == nil {
		return types.Amount{}, err
	}
	leader, _ := r.Leader()
	return leader.Price, nil
}

// EndDate returns the active round's end as unix seconds, or 0 when idle.
func (c *Contract) EndDate(ctx context.Context) (int64, error) {
	r, err := c.ActiveRound(ctx)
	if err != nil || r == nil {
		return 0, err
	}
	return r.EndDate.Unix(), nil
}

// GetTimeLeft returns how long the active round still runs. It is zero when
// idle or once the end date has passed.
func (c *Contract) GetTimeLeft(ctx context.Context) (time.Duration, error) {
	var out time.Duration
	err := c.view(ctx, func(tx *txn) error {
		r, err := tx.activeRound()
		if err != nil || r == nil {
			return err
		}
		out = r.TimeLeft(tx.now)
		return nil
	})
	return out, err
}

// Settings returns the governance singleton.
func (c *Contract) Settings(ctx context.Context) (*governance.Settings, error) {
	var out *governance.Settings
	err := c.view(ctx, func(tx *txn) error {
		s, err := tx.loadSettings()
		out = s
		return err
	})
	return out, err
}

// CurrentVoteCount returns the number of the next round to open; it starts
// at 1 and advances when a round ends.
func (c *Contract) CurrentVoteCount(ctx context.Context) (uint64, error) {
	s, err := c.Settings(ctx)
	if err != nil {
		return 0, err
	}
	return s.CurrentVoteCount, nil
}

// TimeToVote returns the length of a round.
func (c *Contract) TimeToVote(ctx context.Context) (time.Duration, error) {
	s, err := c.Settings(ctx)
	if err != nil {
		return 0, err
	}
	return s.TimeToVote, nil
}

// Round returns a round by ID, active or closed.
func (c *Contract) Round(ctx context.Context, roundID id.RoundID) (*governance.Round, error) {
	return c.store.GetRound(ctx, roundID)
}

// Rounds lists round history, newest first.
func (c *Contract) Rounds(ctx context.Context, opts governance.ListOpts) ([]*governance.Round, error) {
	return c.store.ListRounds(ctx, opts)
}
