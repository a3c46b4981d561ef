package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
	"github.com/xraph/votemax/types"
)

// run opens the contract, resolves the acting account and calls fn.
func run(cmd *cobra.Command, fn func(ctx context.Context, c *votemax.Contract, as id.AccountID) error) error {
	as, err := actingAccount()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	c, err := openContract(ctx)
	if err != nil {
		return err
	}
	defer c.Stop()
	return fn(ctx, c, as)
}

func parseAmountArg(name, raw string) (types.Amount, error) {
	a, err := types.ParseAmount(raw)
	if err != nil {
		return types.Amount{}, fmt.Errorf("%s: %w", name, err)
	}
	return a, nil
}

func printSwap(cmd *cobra.Command, s *exchange.Swap) {
	if s.IsBuy {
		fmt.Fprintf(cmd.OutOrStdout(), "bought %s tokens for %s at price %s (fee %s)\n",
			s.AmountOut.Humanize(), s.AmountIn.Humanize(), s.Price.Humanize(), s.Fee.Humanize())
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "sold %s tokens for %s at price %s (fee %s)\n",
		s.AmountIn.Humanize(), s.AmountOut.Humanize(), s.Price.Humanize(), s.Fee.Humanize())
}

func printBallot(cmd *cobra.Command, verb string, b *governance.Ballot) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s price %s with weight %s\n", verb, b.Price.Humanize(), b.Weight.Humanize())
}

var buyCmd = &cobra.Command{
	Use:   "buy <native-amount>",
	Short: "Buy tokens with native value at the current price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := parseAmountArg("native-amount", args[0])
		if err != nil {
			return err
		}
		return run(cmd, func(ctx context.Context, c *votemax.Contract, as id.AccountID) error {
			s, err := c.Buy(ctx, as, in)
			if err != nil {
				return err
			}
			printSwap(cmd, s)
			return nil
		})
	},
}

var sellCmd = &cobra.Command{
	Use:   "sell <token-amount>",
	Short: "Sell tokens back to the contract reserve",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmountArg("token-amount", args[0])
		if err != nil {
			return err
		}
		return run(cmd, func(ctx context.Context, c *votemax.Contract, as id.AccountID) error {
			s, err := c.Sell(ctx, as, amount)
			if err != nil {
				return err
			}
			printSwap(cmd, s)
			return nil
		})
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer <to> <amount>",
	Short: "Transfer tokens to another account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := id.ParseAccountID(args[0])
		if err != nil {
			return err
		}
		amount, err := parseAmountArg("amount", args[1])
		if err != nil {
			return err
		}
		return run(cmd, func(ctx context.Context, c *votemax.Contract, as id.AccountID) error {
			if err := c.Transfer(ctx, as, to, amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transferred %s to %s\n", amount.Humanize(), to)
			return nil
		})
	},
}

var mintCmd = &cobra.Command{
	Use:   "mint <to> <amount>",
	Short: "Mint tokens (administrator only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := id.ParseAccountID(args[0])
		if err != nil {
			return err
		}
		amount, err := parseAmountArg("amount", args[1])
		if err != nil {
			return err
		}
		return run(cmd, func(ctx context.Context, c *votemax.Contract, as id.AccountID) error {
			if err := c.Mint(ctx, as, to, amount); err != nil {
				return err
			}
			supply, err := c.TotalSupply(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "minted %s to %s, supply now %s\n", amount.Humanize(), to, supply.Humanize())
			return nil
		})
	},
}

var startVotingCmd = &cobra.Command{
	Use:   "start-voting <price>",
	Short: "Propose a price, opening a round when none is active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := parseAmountArg("price", args[0])
		if err != nil {
			return err
		}
		return run(cmd, func(ctx context.Context, c *votemax.Contract, as id.AccountID) error {
			b, err := c.StartVoting(ctx, as, price)
			if err != nil {
				return err
			}
			printBallot(cmd, "proposed", b)
			return nil
		})
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote <price>",
	Short: "Vote for a proposed price in the active round",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := parseAmountArg("price", args[0])
		if err != nil {
			return err
		}
		return run(cmd, func(ctx context.Context, c *votemax.Contract, as id.AccountID) error {
			b, err := c.Vote(ctx, as, price)
			if err != nil {
				return err
			}
			printBallot(cmd, "voted for", b)
			return nil
		})
	},
}

var endVoteCmd = &cobra.Command{
	Use:   "end-vote",
	Short: "Close the active round once its end date has passed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd, func(ctx context.Context, c *votemax.Contract, as id.AccountID) error {
			r, err := c.EndVote(ctx, as)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "round #%d closed, new price %s, %s participants unlocked\n",
				r.Number, r.WinningPrice.Humanize(), humanize.Comma(int64(len(r.Participants))))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(buyCmd, sellCmd, transferCmd, mintCmd, startVotingCmd, voteCmd, endVoteCmd)
}
