// Package types provides common types used across VoteMax.
package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/dustin/go-humanize"
	"github.com/holiman/uint256"
)

// Amount is an unsigned 256-bit quantity in the smallest ledger unit.
// All arithmetic is integer-only and division truncates toward zero.
//
// The zero value is a valid zero amount. Amount values are comparable
// with == and safe to copy.
//
//nolint:recvcheck // Value receivers for arithmetic, pointer receivers for decoding.
type Amount struct {
	v uint256.Int
}

// NewAmount creates an Amount from a uint64.
func NewAmount(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// ParseAmount parses a base-10 unsigned integer string.
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{}, fmt.Errorf("amount: parse %q: empty string", s)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, fmt.Errorf("amount: parse %q: %w", s, err)
	}
	return Amount{v: *v}, nil
}

// MustParseAmount is like ParseAmount but panics on error. Use for constants.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// MaxAmount returns the largest representable Amount (2^256 - 1).
func MaxAmount() Amount {
	var a Amount
	a.v.SetAllOne()
	return a
}

// Arithmetic operations

// Add returns a + b, wrapping on overflow. Use AddOverflow where overflow matters.
func (a Amount) Add(b Amount) Amount {
	var z Amount
	z.v.Add(&a.v, &b.v)
	return z
}

// AddOverflow returns a + b and reports whether the sum overflowed.
func (a Amount) AddOverflow(b Amount) (Amount, bool) {
	var z Amount
	_, overflow := z.v.AddOverflow(&a.v, &b.v)
	return z, overflow
}

// Sub returns a - b. Callers must check a >= b first; underflow wraps.
func (a Amount) Sub(b Amount) Amount {
	var z Amount
	z.v.Sub(&a.v, &b.v)
	return z
}

// Mul returns a * b, wrapping on overflow.
func (a Amount) Mul(b Amount) Amount {
	var z Amount
	z.v.Mul(&a.v, &b.v)
	return z
}

// MulOverflow returns a * b and reports whether the product overflowed.
func (a Amount) MulOverflow(b Amount) (Amount, bool) {
	var z Amount
	_, overflow := z.v.MulOverflow(&a.v, &b.v)
	return z, overflow
}

// Div returns a / b truncated. Panics on division by zero.
func (a Amount) Div(b Amount) Amount {
	if b.IsZero() {
		panic("amount: division by zero")
	}
	var z Amount
	z.v.Div(&a.v, &b.v)
	return z
}

// MulDiv returns a * mul / div with truncating division. ok is false when the
// intermediate product overflows or div is zero.
func (a Amount) MulDiv(mul, div Amount) (result Amount, ok bool) {
	if div.IsZero() {
		return Amount{}, false
	}
	product, overflow := a.MulOverflow(mul)
	if overflow {
		return Amount{}, false
	}
	return product.Div(div), true
}

// MulDivFull returns a * mul / div with truncating division over a 512-bit
// intermediate product. ok is false only when the result exceeds 256 bits
// or div is zero.
func (a Amount) MulDivFull(mul, div Amount) (result Amount, ok bool) {
	if div.IsZero() {
		return Amount{}, false
	}
	var z Amount
	if _, overflow := z.v.MulDivOverflow(&a.v, &mul.v, &div.v); overflow {
		return Amount{}, false
	}
	return z, true
}

// Percent returns a * pct / 100 truncated, and false on overflow.
func (a Amount) Percent(pct uint64) (Amount, bool) {
	return a.MulDiv(NewAmount(pct), NewAmount(100))
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a.v.IsZero() }

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.v.Cmp(&b.v) }

// Equal returns true if both amounts are equal.
func (a Amount) Equal(b Amount) bool { return a.v.Eq(&b.v) }

// LessThan returns true if a < b.
func (a Amount) LessThan(b Amount) bool { return a.v.Lt(&b.v) }

// GreaterThan returns true if a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.v.Gt(&b.v) }

// Min returns the smaller of two amounts.
func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Uint64 returns the low 64 bits and whether the amount fits in a uint64.
func (a Amount) Uint64() (uint64, bool) {
	return a.v.Uint64(), a.v.IsUint64()
}

// Float64 returns the nearest float64. It loses precision above 2^53 and
// is meant for metrics only.
func (a Amount) Float64() float64 {
	f, _ := new(big.Float).SetInt(a.v.ToBig()).Float64()
	return f
}

// Formatting methods

// String returns the base-10 representation.
func (a Amount) String() string { return a.v.Dec() }

// Humanize returns the amount with thousands separators, e.g. "1,234,567".
func (a Amount) Humanize() string { return humanize.BigComma(a.v.ToBig()) }

// MarshalText implements encoding.TextMarshaler using base-10.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.v.Dec()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(data []byte) error {
	parsed, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// UnmarshalJSON accepts both quoted decimal strings and bare JSON numbers.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	return a.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer. Amounts are stored as decimal text.
func (a Amount) Value() (driver.Value, error) {
	return a.v.Dec(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		return a.UnmarshalText(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("amount: cannot scan negative value %d", v)
		}
		*a = NewAmount(uint64(v))
		return nil
	default:
		return fmt.Errorf("amount: cannot scan %T into Amount", src)
	}
}

// Sum adds all amounts, reporting overflow as false.
func Sum(values ...Amount) (Amount, bool) {
	var total Amount
	for _, v := range values {
		next, overflow := total.AddOverflow(v)
		if overflow {
			return Amount{}, false
		}
		total = next
	}
	return total, true
}
