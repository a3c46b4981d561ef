// Package governance implements the price voting rounds of the Vote Max Token.
//
// A round opens when an eligible holder proposes a price. Other eligible
// holders may propose further prices or vote for an existing one, each
// contributing their whole balance as weight. A holder participates at most
// once per round and stays locked until the round ends. The option with the
// greatest weight wins; on equal weight the earlier proposal keeps the lead.
package governance

import (
	"time"

	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/types"
)

// NewSettings returns the initial governance settings.
func NewSettings() *Settings {
	return &Settings{
		TimeToVote:       DefaultTimeToVote,
		CurrentVoteCount: 1,
	}
}

// Eligible reports whether balance meets the participation threshold,
// balance * 2000 >= totalSupply. A zero supply makes everyone eligible.
func Eligible(balance, totalSupply types.Amount) bool {
	scaled, overflow := balance.MulOverflow(types.NewAmount(EligibilityDivisor))
	if overflow {
		return true
	}
	return !scaled.LessThan(totalSupply)
}

// Threshold returns the smallest eligible balance for totalSupply.
func Threshold(totalSupply types.Amount) types.Amount {
	divisor := types.NewAmount(EligibilityDivisor)
	q := totalSupply.Div(divisor)
	if !q.Mul(divisor).Equal(totalSupply) {
		q = q.Add(types.NewAmount(1))
	}
	return q
}

// Open starts round number n for proposer, with price as its first option.
func Open(n uint64, proposer id.AccountID, price, weight types.Amount, now time.Time, d time.Duration) (*Round, Ballot) {
	now = now.UTC()
	r := &Round{
		Entity:    types.NewEntityAt(now),
		ID:        id.NewRoundID(),
		Number:    n,
		Status:    StatusActive,
		StartedAt: now,
		EndDate:   now.Add(d),
	}
	b := r.Propose(proposer, price, weight, now)
	return r, b
}

func (r *Round) IsActive() bool { return r.Status == StatusActive }

// OptionIndex returns the position of price among the options, or -1.
func (r *Round) OptionIndex(price types.Amount) int {
	for i := range r.Options {
		if r.Options[i].Price.Equal(price) {
			return i
		}
	}
	return -1
}

func (r *Round) HasOption(price types.Amount) bool {
	return r.OptionIndex(price) >= 0
}

// HasParticipant reports whether account already proposed or voted.
func (r *Round) HasParticipant(account id.AccountID) bool {
	for i := range r.Participants {
		if r.Participants[i].Account.Equal(account) {
			return true
		}
	}
	return false
}

// Propose appends a new option. The caller checks that price is not present
// and that account has not participated.
func (r *Round) Propose(account id.AccountID, price, weight types.Amount, now time.Time) Ballot {
	r.Options = append(r.Options, Option{Price: price, VoteCount: weight, Proposer: account})
	return r.record(account, price, weight, true, now)
}

// Cast adds weight to an existing option. It reports false when the option
// does not exist.
func (r *Round) Cast(account id.AccountID, price, weight types.Amount, now time.Time) (Ballot, bool) {
	i := r.OptionIndex(price)
	if i < 0 {
		return Ballot{}, false
	}
	// Weights sum to at most the total supply, so this cannot overflow.
	r.Options[i].VoteCount = r.Options[i].VoteCount.Add(weight)
	return r.record(account, price, weight, false, now), true
}

func (r *Round) record(account id.AccountID, price, weight types.Amount, proposed bool, now time.Time) Ballot {
	b := Ballot{
		RoundID:  r.ID,
		Account:  account,
		Price:    price,
		Weight:   weight,
		Proposed: proposed,
		CastAt:   now.UTC(),
	}
	r.Participants = append(r.Participants, b)
	r.Touch(now)
	return b
}

// Leader returns the option with the greatest vote count. Options are scanned
// in proposal order with a strict comparison, so ties keep the earlier one.
func (r *Round) Leader() (Option, bool) {
	if len(r.Options) == 0 {
		return Option{}, false
	}
	best := r.Options[0]
	for _, o := range r.Options[1:] {
		if o.VoteCount.GreaterThan(best.VoteCount) {
			best = o
		}
	}
	return best, true
}

// Ended reports whether the voting period is over at now.
func (r *Round) Ended(now time.Time) bool {
	return !now.Before(r.EndDate)
}

// TimeLeft returns the remaining voting time, never negative.
func (r *Round) TimeLeft(now time.Time) time.Duration {
	if r.Ended(now) {
		return 0
	}
	return r.EndDate.Sub(now)
}

// Close marks the round closed with the leading price as the winner and
// returns it.
func (r *Round) Close(now time.Time) types.Amount {
	now = now.UTC()
	winner, _ := r.Leader()
	r.Status = StatusClosed
	r.WinningPrice = winner.Price
	r.EndedAt = &now
	r.Touch(now)
	return winner.Price
}

// Accounts returns every participant in the order they joined.
func (r *Round) Accounts() []id.AccountID {
	out := make([]id.AccountID, len(r.Participants))
	for i := range r.Participants {
		out[i] = r.Participants[i].Account
	}
	return out
}

// Clone returns a deep copy of the round.
func (r *Round) Clone() *Round {
	if r == nil {
		return nil
	}
	c := *r
	c.Options = append([]Option(nil), r.Options...)
	c.Participants = append([]Ballot(nil), r.Participants...)
	if r.EndedAt != nil {
		t := *r.EndedAt
		c.EndedAt = &t
	}
	return &c
}
