package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/xraph/votemax"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show token, market, fee and voting state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		c, err := openContract(ctx)
		if err != nil {
			return err
		}
		defer c.Stop()

		return printStatus(cmd, c)
	},
}

func printStatus(cmd *cobra.Command, c *votemax.Contract) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	tok, err := c.Token(ctx)
	if err != nil {
		return err
	}
	m, err := c.Market(ctx)
	if err != nil {
		return err
	}
	p, err := c.FeePolicy(ctx)
	if err != nil {
		return err
	}
	settings, err := c.Settings(ctx)
	if err != nil {
		return err
	}
	round, err := c.ActiveRound(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Token:         %s (%s)\n", tok.Name, tok.Symbol)
	fmt.Fprintf(out, "Supply:        %s\n", tok.TotalSupply.Humanize())
	fmt.Fprintf(out, "Administrator: %s\n", tok.Administrator)
	fmt.Fprintf(out, "Price:         %s (decimals %d)\n", m.TokenPrice.Humanize(), m.Decimals)
	fmt.Fprintf(out, "Reserve:       %s\n", m.Reserve.Humanize())
	fmt.Fprintf(out, "Fee:           %d%% (collected %s)\n", p.Percentage, p.Balance.Humanize())
	fmt.Fprintf(out, "Round length:  %s\n", settings.TimeToVote)

	if round == nil {
		fmt.Fprintf(out, "Voting:        idle, next round #%d\n", settings.CurrentVoteCount)
		return nil
	}
	printRound(out, round.Number, round.EndDate, len(round.Participants))
	for _, o := range round.Options {
		fmt.Fprintf(out, "  price %-12s votes %s\n", o.Price.Humanize(), o.VoteCount.Humanize())
	}
	return nil
}

func printRound(out io.Writer, number uint64, end time.Time, participants int) {
	fmt.Fprintf(out, "Voting:        round #%d, %s participants, ends %s\n",
		number, humanize.Comma(int64(participants)), humanize.Time(end))
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
