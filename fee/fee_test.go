package fee_test

import (
	"testing"

	"github.com/xraph/votemax/fee"
	"github.com/xraph/votemax/types"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		amount  uint64
		pct     uint64
		wantNet uint64
		wantFee uint64
	}{
		{"buy worked example", 1000, 1, 990, 10},
		{"sell of 100", 100, 1, 99, 1},
		{"fee truncates to zero", 66, 1, 66, 0},
		{"zero percent", 500, 0, 500, 0},
		{"max percent", 500, 10, 450, 50},
		{"zero amount", 0, 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, f := fee.Split(types.NewAmount(tt.amount), tt.pct)
			if !net.Equal(types.NewAmount(tt.wantNet)) {
				t.Errorf("net = %s, want %d", net, tt.wantNet)
			}
			if !f.Equal(types.NewAmount(tt.wantFee)) {
				t.Errorf("fee = %s, want %d", f, tt.wantFee)
			}
		})
	}
}

func TestSplitHugeAmount(t *testing.T) {
	amount := types.MaxAmount()
	net, f := fee.Split(amount, 10)

	if !net.Add(f).Equal(amount) {
		t.Error("net + fee != amount")
	}
	if f.IsZero() {
		t.Error("expected a non-zero fee")
	}
}

func TestSplitIsExactNearMax(t *testing.T) {
	// 2^256 - 1 = 115792089237316195423570985008687907853269984665640564039457584007913129639935
	tests := []struct {
		name    string
		pct     uint64
		wantFee string
	}{
		{"one percent", 1, "1157920892373161954235709850086879078532699846656405640394575840079131296399"},
		{"seven percent", 7, "8105446246612133679649968950608153549728898926594839482762030880553919074795"},
		{"ten percent", 10, "11579208923731619542357098500868790785326998466564056403945758400791312963993"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := types.MaxAmount()
			net, f := fee.Split(amount, tt.pct)

			want, err := types.ParseAmount(tt.wantFee)
			if err != nil {
				t.Fatalf("ParseAmount: %v", err)
			}
			if !f.Equal(want) {
				t.Errorf("fee = %s, want %s", f, want)
			}
			if !net.Add(f).Equal(amount) {
				t.Error("net + fee != amount")
			}
		})
	}
}

func TestSplitClampsToAmount(t *testing.T) {
	net, f := fee.Split(types.NewAmount(50), 150)
	if !net.IsZero() {
		t.Errorf("net = %s, want 0", net)
	}
	if !f.Equal(types.NewAmount(50)) {
		t.Errorf("fee = %s, want 50", f)
	}
}

func TestValidPercentage(t *testing.T) {
	for pct := uint64(0); pct <= fee.MaxPercentage; pct++ {
		if !fee.ValidPercentage(pct) {
			t.Errorf("%d should be valid", pct)
		}
	}
	if fee.ValidPercentage(fee.MaxPercentage + 1) {
		t.Error("11 should be out of range")
	}
}

func TestPolicyCollectDrain(t *testing.T) {
	p := fee.NewPolicy()
	if p.Percentage != fee.DefaultPercentage {
		t.Fatalf("default percentage = %d", p.Percentage)
	}

	net, f := p.Split(types.NewAmount(1000))
	if !net.Equal(types.NewAmount(990)) {
		t.Errorf("net = %s", net)
	}
	if !p.Collect(f) || !p.Collect(types.NewAmount(5)) {
		t.Fatal("collect failed")
	}
	if !p.Balance.Equal(types.NewAmount(15)) {
		t.Errorf("balance = %s, want 15", p.Balance)
	}

	if drained := p.Drain(); !drained.Equal(types.NewAmount(15)) {
		t.Errorf("drained %s, want 15", drained)
	}
	if !p.Balance.IsZero() {
		t.Error("balance not zero after drain")
	}
	if drained := p.Drain(); !drained.IsZero() {
		t.Error("second drain returned a non-zero amount")
	}
}
