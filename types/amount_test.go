package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAmountArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Amount
		expected Amount
	}{
		{"Add", func() Amount { return NewAmount(100).Add(NewAmount(200)) }, NewAmount(300)},
		{"Sub", func() Amount { return NewAmount(500).Sub(NewAmount(200)) }, NewAmount(300)},
		{"Mul", func() Amount { return NewAmount(100).Mul(NewAmount(3)) }, NewAmount(300)},
		{"Div", func() Amount { return NewAmount(900).Div(NewAmount(3)) }, NewAmount(300)},
		{"Div truncates", func() Amount { return NewAmount(1000).Div(NewAmount(15)) }, NewAmount(66)},
		{"Chained", func() Amount {
			return NewAmount(1000).Add(NewAmount(500)).Mul(NewAmount(2)).Sub(NewAmount(1000))
		}, NewAmount(2000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op(); !got.Equal(tt.expected) {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestAmountMulDiv(t *testing.T) {
	tests := []struct {
		name      string
		a         Amount
		mul, div  Amount
		want      Amount
		wantValid bool
	}{
		{"buy quote", NewAmount(10000), NewAmount(10), NewAmount(100), NewAmount(1000), true},
		{"truncating quote", NewAmount(100), NewAmount(10), NewAmount(15), NewAmount(66), true},
		{"sell payout", NewAmount(66), NewAmount(15), NewAmount(10), NewAmount(99), true},
		{"zero divisor", NewAmount(1), NewAmount(1), Amount{}, Amount{}, false},
		{"overflow", MaxAmount(), NewAmount(2), NewAmount(1), Amount{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.MulDiv(tt.mul, tt.div)
			if ok != tt.wantValid {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantValid)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAmountMulDivFull(t *testing.T) {
	// MaxAmount * 3 / 4 overflows 256 bits in the product only.
	got, ok := MaxAmount().MulDivFull(NewAmount(3), NewAmount(4))
	if !ok {
		t.Fatal("expected a result")
	}
	want, err := ParseAmount("86844066927987146567678238756515930889952488499230423029593188005934847229951")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}

	if _, ok := MaxAmount().MulDivFull(NewAmount(2), NewAmount(1)); ok {
		t.Error("expected result overflow")
	}
	if _, ok := NewAmount(1).MulDivFull(NewAmount(1), Amount{}); ok {
		t.Error("expected zero divisor to fail")
	}
}

func TestAmountPercent(t *testing.T) {
	tests := []struct {
		amount uint64
		pct    uint64
		want   uint64
	}{
		{1000, 1, 10},
		{100, 1, 1},
		{99, 1, 0},
		{66, 1, 0},
		{10, 10, 1},
		{12345, 0, 0},
	}

	for _, tt := range tests {
		got, ok := NewAmount(tt.amount).Percent(tt.pct)
		if !ok {
			t.Fatalf("Percent(%d, %d) overflowed", tt.amount, tt.pct)
		}
		if !got.Equal(NewAmount(tt.want)) {
			t.Errorf("Percent(%d, %d) = %s, want %d", tt.amount, tt.pct, got, tt.want)
		}
	}
}

func TestAmountOverflow(t *testing.T) {
	if _, overflow := MaxAmount().AddOverflow(NewAmount(1)); !overflow {
		t.Error("expected add overflow")
	}
	if _, overflow := MaxAmount().MulOverflow(NewAmount(2)); !overflow {
		t.Error("expected mul overflow")
	}
	if _, ok := Sum(MaxAmount(), NewAmount(1)); ok {
		t.Error("expected Sum overflow")
	}
	if total, ok := Sum(NewAmount(1), NewAmount(2), NewAmount(3)); !ok || !total.Equal(NewAmount(6)) {
		t.Errorf("Sum = %s, %v", total, ok)
	}
}

func TestAmountDivisionByZero(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for division by zero")
		}
	}()

	_ = NewAmount(100).Div(Amount{})
}

func TestAmountComparison(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Amount
		less    bool
		greater bool
		equal   bool
	}{
		{"Equal", NewAmount(100), NewAmount(100), false, false, true},
		{"Less", NewAmount(50), NewAmount(100), true, false, false},
		{"Greater", NewAmount(200), NewAmount(100), false, true, false},
		{"Zero equal", NewAmount(0), Amount{}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.GreaterThan(tt.b); got != tt.greater {
				t.Errorf("GreaterThan: got %v, want %v", got, tt.greater)
			}
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal: got %v, want %v", got, tt.equal)
			}
			if got := tt.a == tt.b; got != tt.equal {
				t.Errorf("==: got %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestAmountParse(t *testing.T) {
	a, err := ParseAmount("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	if err != nil {
		t.Fatalf("parse max: %v", err)
	}
	if !a.Equal(MaxAmount()) {
		t.Errorf("expected max amount, got %s", a)
	}

	for _, bad := range []string{"", "-1", "12a", "1.5"} {
		if _, err := ParseAmount(bad); err == nil {
			t.Errorf("ParseAmount(%q): expected error", bad)
		}
	}
}

func TestAmountFormatting(t *testing.T) {
	if got := NewAmount(1234567).String(); got != "1234567" {
		t.Errorf("String: got %s", got)
	}
	if got := NewAmount(1234567).Humanize(); got != "1,234,567" {
		t.Errorf("Humanize: got %s", got)
	}
	if got := (Amount{}).String(); got != "0" {
		t.Errorf("zero String: got %s", got)
	}
}

func TestAmountJSON(t *testing.T) {
	type payload struct {
		Amount Amount `json:"amount"`
	}

	data, err := json.Marshal(payload{Amount: NewAmount(990)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"amount":"990"}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	for _, in := range []string{`{"amount":"990"}`, `{"amount":990}`} {
		var p payload
		if err := json.Unmarshal([]byte(in), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if !p.Amount.Equal(NewAmount(990)) {
			t.Errorf("unmarshal %s: got %s", in, p.Amount)
		}
	}
}

func TestAmountValueScan(t *testing.T) {
	original := NewAmount(4200)
	val, err := original.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var scanned Amount
	if err := scanned.Scan(val); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !scanned.Equal(original) {
		t.Errorf("mismatch: %s != %s", scanned, original)
	}

	if err := scanned.Scan(int64(-1)); err == nil {
		t.Error("expected error scanning a negative integer")
	}
}

func TestEntityTouch(t *testing.T) {
	var e Entity
	if e.IsPersisted() {
		t.Fatal("zero entity reported as persisted")
	}

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e.Touch(t0)
	if !e.CreatedAt.Equal(t0) || !e.UpdatedAt.Equal(t0) {
		t.Errorf("first touch: got %v / %v", e.CreatedAt, e.UpdatedAt)
	}

	t1 := t0.Add(time.Hour)
	e.Touch(t1)
	if !e.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt moved to %v", e.CreatedAt)
	}
	if !e.UpdatedAt.Equal(t1) {
		t.Errorf("UpdatedAt: got %v, want %v", e.UpdatedAt, t1)
	}
}
