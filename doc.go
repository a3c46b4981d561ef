// Package votemax provides the Vote Max Token (VTM) engine for Go applications.
//
// VoteMax is designed as a library, not a service. It combines three pieces
// over one store:
//
//   - An ERC20-style ledger with balances, allowances and an administrator
//   - A constant-price exchange that mints on buy and burns on sell
//   - Token-weighted governance rounds that vote on the exchange price
//
// # Quick Start
//
// Create a contract with your preferred store:
//
//	import (
//	    "github.com/xraph/votemax"
//	    "github.com/xraph/votemax/store/memory"
//	)
//
//	admin := id.NewAccountID()
//	c := votemax.New(memory.New(), votemax.WithAdministrator(admin))
//	if err := c.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Stop()
//
// # Exchange
//
// Buying swaps native value for tokens at tokenPrice with decimals of
// scaling: tokens = nativeIn * decimals / tokenPrice. A percentage fee is
// taken from the tokens and held by id.ContractAccount until the
// administrator burns it:
//
//	swap, err := c.Buy(ctx, alice, votemax.NewAmount(10000))
//	// swap.AmountOut == 990, swap.Fee == 10 at the default price and fee
//
// Selling burns tokens and pays out of the reserve funded by buys and
// Deposit.
//
// # Governance
//
// Any holder with at least 0.05% of supply may propose a price. The first
// proposal opens a round; later ones add options. Holders vote with their
// whole balance and stay locked against transfers until the round ends:
//
//	_, err = c.StartVoting(ctx, alice, votemax.NewAmount(200))
//	_, err = c.Vote(ctx, bob, votemax.NewAmount(200))
//	// after TimeToVote has elapsed
//	round, err := c.EndVote(ctx, anyone)
//
// The option with the greatest weight wins; on equal weight the earlier
// proposal keeps the lead.
//
// # Atomicity
//
// Operations are serialized. Each one reads what it needs, stages its
// writes in a store.Batch and commits once, so a rejected operation leaves
// no trace. Plugin hooks run after the commit.
//
// # TypeID
//
// Entities use TypeID identifiers:
//
//	acct_01h2xcejqtf2nbrexx3vqjhp41   // Account ID
//	round_01h2xcejqtf2nbrexx3vqjhp41  // Round ID
//	swap_01h455vb4pex5vsknk084sn02q   // Swap ID
package votemax
