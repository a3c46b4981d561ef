package votemax_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/governance"
	"github.com/xraph/votemax/id"
)

const threeDays = 60 * 60 * 24 * 3 * time.Second

func TestGovernanceDefaults(t *testing.T) {
	h := newHarness(t)

	going, err := h.c.IsVotingGoing(h.ctx)
	require.NoError(t, err)
	assert.False(t, going)

	ttv, err := h.c.TimeToVote(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 259200*time.Second, ttv)

	count, err := h.c.CurrentVoteCount(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	highest, err := h.c.HighestVotedPriceNow(h.ctx)
	require.NoError(t, err)
	assert.True(t, highest.IsZero())

	end, err := h.c.EndDate(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, end)

	left, err := h.c.GetTimeLeft(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, left)
}

func TestStartVoting(t *testing.T) {
	h := newHarness(t)
	holder := id.NewAccountID()
	h.mint(holder, 1000)

	ballot, err := h.c.StartVoting(h.ctx, holder, amt(200))
	require.NoError(t, err)
	assert.True(t, ballot.Proposed)
	assert.Equal(t, "1000", ballot.Weight.String())

	going, err := h.c.IsVotingGoing(h.ctx)
	require.NoError(t, err)
	assert.True(t, going)

	highest, err := h.c.HighestVotedPriceNow(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "200", highest.String())

	require.Len(t, h.events.started, 1)
	assert.True(t, h.events.started[0].Account.Equal(holder))
	assert.Equal(t, "200", h.events.started[0].Price.String())
	assert.Equal(t, "1000", h.events.started[0].Weight.String())

	assert.True(t, h.locked(holder))
	h.checkInvariants()
}

func TestDoubleParticipationRejected(t *testing.T) {
	h := newHarness(t)
	holder := id.NewAccountID()
	h.mint(holder, 1000)

	_, err := h.c.StartVoting(h.ctx, holder, amt(200))
	require.NoError(t, err)

	_, err = h.c.Vote(h.ctx, holder, amt(200))
	require.ErrorIs(t, err, votemax.ErrAlreadyParticipating)

	_, err = h.c.StartVoting(h.ctx, holder, amt(201))
	require.ErrorIs(t, err, votemax.ErrAlreadyParticipating)

	round, err := h.c.ActiveRound(h.ctx)
	require.NoError(t, err)
	assert.Len(t, round.Options, 1)
	assert.Len(t, round.Participants, 1)
}

func TestLeaderChangesWhenHeavierHolderProposes(t *testing.T) {
	h := newHarness(t)
	a, b := id.NewAccountID(), id.NewAccountID()
	h.mint(a, 1000)
	h.mint(b, 2000)

	_, err := h.c.StartVoting(h.ctx, a, amt(200))
	require.NoError(t, err)
	highest, err := h.c.HighestVotedPriceNow(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "200", highest.String())

	ballot, err := h.c.StartVoting(h.ctx, b, amt(201))
	require.NoError(t, err)
	assert.Equal(t, "2000", ballot.Weight.String())

	highest, err = h.c.HighestVotedPriceNow(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "201", highest.String())
	require.Len(t, h.events.started, 2)
	h.checkInvariants()
}

func TestDuplicateOptionRejected(t *testing.T) {
	h := newHarness(t)
	a, b := id.NewAccountID(), id.NewAccountID()
	h.mint(a, 1000)
	h.mint(b, 1000)

	_, err := h.c.StartVoting(h.ctx, a, amt(200))
	require.NoError(t, err)

	_, err = h.c.StartVoting(h.ctx, b, amt(200))
	require.ErrorIs(t, err, votemax.ErrOptionExists)
	assert.False(t, h.locked(b))
	h.checkInvariants()
}

func TestVote(t *testing.T) {
	h := newHarness(t)
	a, b := id.NewAccountID(), id.NewAccountID()
	h.mint(a, 5000)
	h.mint(b, 5000)

	_, err := h.c.StartVoting(h.ctx, a, amt(200))
	require.NoError(t, err)

	ballot, err := h.c.Vote(h.ctx, b, amt(200))
	require.NoError(t, err)
	assert.False(t, ballot.Proposed)
	require.Len(t, h.events.voted, 1)

	round, err := h.c.ActiveRound(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "10000", round.Options[0].VoteCount.String())

	_, err = h.c.Vote(h.ctx, b, amt(200))
	require.ErrorIs(t, err, votemax.ErrAlreadyParticipating)
	h.checkInvariants()
}

func TestVoteRejections(t *testing.T) {
	h := newHarness(t)
	whale, minnow, other := id.NewAccountID(), id.NewAccountID(), id.NewAccountID()
	h.mint(whale, 50000000)
	h.mint(minnow, 1)
	h.mint(other, 50000000)

	_, err := h.c.Vote(h.ctx, other, amt(200))
	require.ErrorIs(t, err, votemax.ErrNoSuchOption, "idle governance has no options")

	_, err = h.c.StartVoting(h.ctx, whale, amt(200))
	require.NoError(t, err)

	_, err = h.c.Vote(h.ctx, minnow, amt(200))
	require.ErrorIs(t, err, votemax.ErrNotEligible)

	_, err = h.c.Vote(h.ctx, other, amt(201))
	require.ErrorIs(t, err, votemax.ErrNoSuchOption)

	_, err = h.c.StartVoting(h.ctx, minnow, amt(300))
	require.ErrorIs(t, err, votemax.ErrNotEligible)

	_, err = h.c.StartVoting(h.ctx, other, amt(0))
	require.ErrorIs(t, err, votemax.ErrZeroAmount)

	assert.False(t, h.locked(minnow))
	assert.False(t, h.locked(other))
	h.checkInvariants()
}

func TestEligibilityBoundary(t *testing.T) {
	h := newHarness(t)
	proposer, atThreshold, below := id.NewAccountID(), id.NewAccountID(), id.NewAccountID()

	// Supply 2,000,000: the threshold is exactly 1000.
	h.mint(proposer, 1998001)
	h.mint(atThreshold, 1000)
	h.mint(below, 999)
	require.Equal(t, "2000000", h.supply().String())

	_, err := h.c.StartVoting(h.ctx, proposer, amt(200))
	require.NoError(t, err)

	_, err = h.c.Vote(h.ctx, below, amt(200))
	require.ErrorIs(t, err, votemax.ErrNotEligible)

	_, err = h.c.Vote(h.ctx, atThreshold, amt(200))
	require.NoError(t, err)
	h.checkInvariants()
}

func TestEndVote(t *testing.T) {
	h := newHarness(t)
	h.mint(h.admin, 1000)

	_, err := h.c.StartVoting(h.ctx, h.admin, amt(200))
	require.NoError(t, err)

	end, err := h.c.EndDate(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, genesis.Add(threeDays).Unix(), end)

	_, err = h.c.EndVote(h.ctx, h.admin)
	require.ErrorIs(t, err, votemax.ErrVotingNotEnded)

	h.clock.Add(threeDays)

	closed, err := h.c.EndVote(h.ctx, id.NewAccountID())
	require.NoError(t, err)
	assert.Equal(t, governance.StatusClosed, closed.Status)
	assert.Equal(t, "200", closed.WinningPrice.String())

	assert.Equal(t, "200", h.price().String())

	going, err := h.c.IsVotingGoing(h.ctx)
	require.NoError(t, err)
	assert.False(t, going)

	highest, err := h.c.HighestVotedPriceNow(h.ctx)
	require.NoError(t, err)
	assert.True(t, highest.IsZero())

	count, err := h.c.CurrentVoteCount(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	end, err = h.c.EndDate(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, end)

	assert.False(t, h.locked(h.admin))
	require.Len(t, h.events.ended, 1)
	require.Len(t, h.events.prices, 1)
	h.checkInvariants()

	_, err = h.c.EndVote(h.ctx, h.admin)
	require.ErrorIs(t, err, votemax.ErrInvalidState)
}

func TestEndVoteUnlocksEveryone(t *testing.T) {
	h := newHarness(t)
	a, b, c := id.NewAccountID(), id.NewAccountID(), id.NewAccountID()
	h.mint(a, 100)
	h.mint(b, 300)
	h.mint(c, 150)

	_, err := h.c.StartVoting(h.ctx, a, amt(50))
	require.NoError(t, err)
	_, err = h.c.StartVoting(h.ctx, b, amt(75))
	require.NoError(t, err)
	_, err = h.c.Vote(h.ctx, c, amt(50))
	require.NoError(t, err)
	h.checkInvariants()

	// 50 has 250, 75 has 300.
	h.clock.Add(threeDays + time.Second)
	closed, err := h.c.EndVote(h.ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "75", closed.WinningPrice.String())
	assert.Len(t, closed.Participants, 3)

	for _, acct := range []id.AccountID{a, b, c} {
		assert.False(t, h.locked(acct))
	}
	h.checkInvariants()

	require.NoError(t, h.c.Transfer(h.ctx, b, a, amt(300)))
}

func TestLockedParticipantCannotTransfer(t *testing.T) {
	h := newHarness(t)
	owner, a, b := id.NewAccountID(), id.NewAccountID(), id.NewAccountID()
	h.mint(owner, 1000)
	h.mint(a, 1000)
	h.mint(b, 1000)

	_, err := h.c.StartVoting(h.ctx, owner, amt(200))
	require.NoError(t, err)
	_, err = h.c.Vote(h.ctx, a, amt(200))
	require.NoError(t, err)

	require.ErrorIs(t, h.c.Transfer(h.ctx, a, b, amt(500)), votemax.ErrAccountLocked)
	require.ErrorIs(t, h.c.Transfer(h.ctx, a, id.NewAccountID(), amt(1)), votemax.ErrAccountLocked)

	require.NoError(t, h.c.Approve(h.ctx, a, b, amt(500)))
	require.ErrorIs(t, h.c.TransferFrom(h.ctx, b, a, b, amt(500)), votemax.ErrAccountLocked)

	require.NoError(t, h.c.Deposit(h.ctx, b, amt(1000000)))
	_, err = h.c.Sell(h.ctx, a, amt(10))
	require.ErrorIs(t, err, votemax.ErrAccountLocked)

	// Receiving is still allowed.
	require.NoError(t, h.c.Transfer(h.ctx, b, a, amt(1)))

	h.clock.Add(threeDays)
	_, err = h.c.EndVote(h.ctx, b)
	require.NoError(t, err)

	require.NoError(t, h.c.Transfer(h.ctx, a, b, amt(500)))
	h.checkInvariants()
}

func TestSetTimeToVote(t *testing.T) {
	h := newHarness(t)
	holder := id.NewAccountID()
	h.mint(holder, 10)

	require.NoError(t, h.c.SetTimeToVote(h.ctx, h.admin, 100*time.Second))
	ttv, err := h.c.TimeToVote(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Second, ttv)

	require.ErrorIs(t, h.c.SetTimeToVote(h.ctx, holder, time.Hour), votemax.ErrUnauthorized)
	require.ErrorIs(t, h.c.SetTimeToVote(h.ctx, h.admin, 0), votemax.ErrOutOfRange)

	_, err = h.c.StartVoting(h.ctx, holder, amt(200))
	require.NoError(t, err)
	require.ErrorIs(t, h.c.SetTimeToVote(h.ctx, h.admin, time.Hour), votemax.ErrInvalidState)

	end, err := h.c.EndDate(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, genesis.Add(100*time.Second).Unix(), end)
}

func TestGetTimeLeft(t *testing.T) {
	h := newHarness(t)
	h.mint(h.admin, 10)

	_, err := h.c.StartVoting(h.ctx, h.admin, amt(200))
	require.NoError(t, err)

	left, err := h.c.GetTimeLeft(h.ctx)
	require.NoError(t, err)
	end, err := h.c.EndDate(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, end-h.clock.Now().Unix(), int64(left/time.Second))

	h.clock.Add(time.Hour)
	left, err = h.c.GetTimeLeft(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, threeDays-time.Hour, left)

	h.clock.Add(threeDays)
	left, err = h.c.GetTimeLeft(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, left, "never negative")
}

func TestRoundHistory(t *testing.T) {
	h := newHarness(t)
	h.mint(h.admin, 10)

	for i, price := range []uint64{200, 300} {
		_, err := h.c.StartVoting(h.ctx, h.admin, amt(price))
		require.NoError(t, err)
		h.clock.Add(threeDays)
		closed, err := h.c.EndVote(h.ctx, h.admin)
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), closed.Number)
	}

	rounds, err := h.c.Rounds(h.ctx, governance.ListOpts{})
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, uint64(2), rounds[0].Number, "newest first")
	assert.Equal(t, "300", rounds[0].WinningPrice.String())

	got, err := h.c.Round(h.ctx, rounds[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "200", got.WinningPrice.String())
	assert.Len(t, got.Options, 1)

	_, err = h.c.Round(h.ctx, id.NewRoundID())
	require.ErrorIs(t, err, votemax.ErrRoundNotFound)

	active, err := h.c.Rounds(h.ctx, governance.ListOpts{Status: governance.StatusActive})
	require.NoError(t, err)
	assert.Empty(t, active)
}
