// Package money provides exact non-negative monetary amounts.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNegative is returned when an amount below zero is constructed or decoded.
var ErrNegative = errors.New("amount must not be negative")

// Money is a non-negative decimal amount. The zero value is 0.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// New returns the amount held by d.
func New(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s", ErrNegative, d.String())
	}
	return Money{d: d}, nil
}

// Parse parses a decimal string such as "40" or "12.50".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return New(d)
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromInt returns a whole-unit amount. Negative values are clamped to zero.
func FromInt(v int64) Money {
	if v < 0 {
		return Zero
	}
	return Money{d: decimal.NewFromInt(v)}
}

// Decimal exposes the underlying value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// IsZero reports whether the amount is 0.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// Equal compares amounts numerically, so 5 equals 5.00.
func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// Cmp returns -1, 0 or +1.
func (m Money) Cmp(o Money) int {
	return m.d.Cmp(o.d)
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

// Mul returns m multiplied by a quantity. Non-positive quantities yield zero.
func (m Money) Mul(qty int) Money {
	if qty <= 0 {
		return Zero
	}
	return Money{d: m.d.Mul(decimal.NewFromInt(int64(qty)))}
}

// SubClamped returns max(0, m - o).
func (m Money) SubClamped(o Money) Money {
	r := m.d.Sub(o.d)
	if r.IsNegative() {
		return Zero
	}
	return Money{d: r}
}

// Sum adds all amounts.
func Sum(amounts ...Money) Money {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.d)
	}
	return Money{d: total}
}

// String renders the amount with exactly two decimal places.
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// MarshalJSON encodes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

// UnmarshalJSON accepts a JSON number, a quoted number or null.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	v, err := New(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		*m = Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	v, err := New(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.d.String(), nil
}
