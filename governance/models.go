package governance

import (
	"time"

	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/types"
)

const (
	// DefaultTimeToVote is the length of a round unless the administrator changes it.
	DefaultTimeToVote = 259200 * time.Second
	// EligibilityDivisor sets the participation threshold at 1/2000 (0.05%) of supply.
	EligibilityDivisor uint64 = 2000
)

// Settings is the governance singleton.
type Settings struct {
	types.Entity
	TimeToVote time.Duration `json:"time_to_vote"`
	// CurrentVoteCount is the number of the next round to open. It starts at 1
	// and advances each time a round ends.
	CurrentVoteCount uint64 `json:"current_vote_count"`
}

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Round is one Idle -> Voting -> Idle cycle. At most one round is active.
// Closed rounds keep their options and ballots as history.
type Round struct {
	types.Entity
	ID           id.RoundID   `json:"id"`
	Number       uint64       `json:"number"`
	Status       Status       `json:"status"`
	Options      []Option     `json:"options"`
	Participants []Ballot     `json:"participants"`
	StartedAt    time.Time    `json:"started_at"`
	EndDate      time.Time    `json:"end_date"`
	EndedAt      *time.Time   `json:"ended_at,omitempty"`
	WinningPrice types.Amount `json:"winning_price"`
}

// Option is a proposed price and the weight voted for it. Options are unique
// by price and kept in proposal order.
type Option struct {
	Price     types.Amount `json:"price"`
	VoteCount types.Amount `json:"vote_count"`
	Proposer  id.AccountID `json:"proposer"`
}

// Ballot records one participant's vote. Proposed is true for the account
// that introduced the option.
type Ballot struct {
	RoundID  id.RoundID   `json:"round_id"`
	Account  id.AccountID `json:"account"`
	Price    types.Amount `json:"price"`
	Weight   types.Amount `json:"weight"`
	Proposed bool         `json:"proposed"`
	CastAt   time.Time    `json:"cast_at"`
}
