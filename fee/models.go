package fee

import (
	"time"

	"github.com/xraph/votemax/types"
)

const (
	// MaxPercentage is the highest fee the administrator may configure.
	MaxPercentage uint64 = 10
	// DefaultPercentage is the fee charged until the administrator changes it.
	DefaultPercentage uint64 = 1
)

// Policy is the fee singleton. Balance mirrors the contract account's
// ledger balance.
type Policy struct {
	types.Entity
	Percentage uint64       `json:"percentage"`
	Balance    types.Amount `json:"balance"`
}

type Change struct {
	Previous uint64    `json:"previous"`
	Current  uint64    `json:"current"`
	At       time.Time `json:"at"`
}

type Burned struct {
	Amount types.Amount `json:"amount"`
	At     time.Time    `json:"at"`
}
