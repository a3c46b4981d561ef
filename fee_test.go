package votemax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/votemax"
	"github.com/xraph/votemax/id"
)

func TestFeeDefaults(t *testing.T) {
	h := newHarness(t)

	pct, err := h.c.Fee(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pct)
	assert.True(t, h.feeBalance().IsZero())
}

func TestSetBuyFeePercentage(t *testing.T) {
	h := newHarness(t)
	stranger := id.NewAccountID()

	tests := []struct {
		name    string
		caller  id.AccountID
		pct     uint64
		wantErr error
	}{
		{"zero fee", h.admin, 0, nil},
		{"maximum", h.admin, 10, nil},
		{"above maximum", h.admin, 11, votemax.ErrOutOfRange},
		{"not administrator", stranger, 5, votemax.ErrUnauthorized},
		{"five percent", h.admin, 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := h.c.Fee(h.ctx)
			require.NoError(t, err)

			err = h.c.SetBuyFeePercentage(h.ctx, tt.caller, tt.pct)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				after, ferr := h.c.Fee(h.ctx)
				require.NoError(t, ferr)
				assert.Equal(t, before, after)
				return
			}
			require.NoError(t, err)
			after, err := h.c.Fee(h.ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.pct, after)
		})
	}

	require.Len(t, h.events.fees, 3)
	assert.Equal(t, uint64(1), h.events.fees[0].Previous)
	assert.Equal(t, uint64(0), h.events.fees[0].Current)
	assert.Equal(t, uint64(10), h.events.fees[2].Previous)
	assert.Equal(t, uint64(5), h.events.fees[2].Current)
}

func TestFeeAppliesToLaterSwaps(t *testing.T) {
	h := newHarness(t)
	buyer := id.NewAccountID()

	require.NoError(t, h.c.SetBuyFeePercentage(h.ctx, h.admin, 10))
	swap, err := h.c.Buy(h.ctx, buyer, amt(10000))
	require.NoError(t, err)
	assert.Equal(t, "900", swap.AmountOut.String())
	assert.Equal(t, "100", swap.Fee.String())

	require.NoError(t, h.c.SetBuyFeePercentage(h.ctx, h.admin, 0))
	swap, err = h.c.Buy(h.ctx, buyer, amt(10000))
	require.NoError(t, err)
	assert.Equal(t, "1000", swap.AmountOut.String())
	assert.True(t, swap.Fee.IsZero())

	assert.Equal(t, "1900", h.balance(buyer).String())
	assert.Equal(t, "100", h.feeBalance().String())
	h.checkInvariants()
}

func TestBurnFee(t *testing.T) {
	h := newHarness(t)
	buyer := id.NewAccountID()

	_, err := h.c.Buy(h.ctx, buyer, amt(100000))
	require.NoError(t, err)
	assert.Equal(t, "100", h.feeBalance().String())
	assert.Equal(t, "10000", h.supply().String())

	require.ErrorIs(t, h.c.BurnFee(h.ctx, buyer), votemax.ErrUnauthorized)
	assert.Equal(t, "100", h.feeBalance().String())

	require.NoError(t, h.c.BurnFee(h.ctx, h.admin))
	assert.True(t, h.feeBalance().IsZero())
	assert.True(t, h.balance(id.ContractAccount).IsZero())
	assert.Equal(t, "9900", h.supply().String())

	require.Len(t, h.events.burns, 1)
	assert.Equal(t, "100", h.events.burns[0].Amount.String())
	h.checkInvariants()
}
