package votemax

import "github.com/xraph/votemax/id"

// ID is the primary identifier type for all VoteMax entities.
type ID = id.ID

// AccountID identifies a token holder.
type AccountID = id.AccountID

// ContractAccount is the reserved account holding collected fees.
var ContractAccount = id.ContractAccount
