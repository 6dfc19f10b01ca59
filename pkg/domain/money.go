package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// moneyPlaces is the number of fractional digits kept for every monetary value.
const moneyPlaces = 2

// auditorSalaryRate is the share of audited visit amounts paid to the auditor.
var auditorSalaryRate = decimal.RequireFromString("0.20")

// Money is a currency amount rounded to two decimal places. It encodes as a
// plain JSON number so persisted documents keep their numeric shape.
type Money struct {
	d decimal.Decimal
}

// NewMoney converts a float amount, rounding half away from zero.
func NewMoney(amount float64) Money {
	return Money{d: decimal.NewFromFloat(amount).Round(moneyPlaces)}
}

// ParseMoney parses a decimal string such as "12.30".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{d: d.Round(moneyPlaces)}, nil
}

// MustMoney is ParseMoney for literals; it panics on malformed input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// SumMoney adds the amounts and rounds the total.
func SumMoney(amounts ...Money) Money {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.d)
	}
	return Money{d: total.Round(moneyPlaces)}
}

// Add returns m + other rounded.
func (m Money) Add(other Money) Money {
	return Money{d: m.d.Add(other.d).Round(moneyPlaces)}
}

// MulInt returns m multiplied by a whole quantity.
func (m Money) MulInt(n int) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(int64(n))).Round(moneyPlaces)}
}

// Rounded returns m normalized to two decimal places.
func (m Money) Rounded() Money {
	return Money{d: m.d.Round(moneyPlaces)}
}

// Equal reports whether two amounts are numerically equal.
func (m Money) Equal(other Money) bool { return m.d.Equal(other.d) }

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool { return m.d.IsPositive() }

// IsZero reports whether m == 0.
func (m Money) IsZero() bool { return m.d.IsZero() }

// Float64 returns the nearest float representation.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// String renders the amount with exactly two decimals.
func (m Money) String() string { return m.d.StringFixed(moneyPlaces) }

// MarshalJSON encodes the rounded amount as an unquoted number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.Round(moneyPlaces).String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.d = d.Round(moneyPlaces)
	return nil
}

// AuditorSalary computes the auditor payout for an audited visit total.
func AuditorSalary(total Money) Money {
	return Money{d: total.d.Mul(auditorSalaryRate).Round(moneyPlaces)}
}
