package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency used when none is specified.
const DefaultCurrency = "USD"

// minorUnitsPerMajor is the number of minor units in one major unit (cents per dollar).
const minorUnitsPerMajor = 100

// Money represents a monetary amount in integer minor currency units (cents).
// Amounts are never stored as floats; derived ratios use decimal arithmetic.
type Money struct {
	amount   int64
	currency string
}

// NewMoney creates a Money from minor units
func NewMoney(amount int64, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}
}

// NewMoneyUSD creates a USD Money from minor units (cents)
func NewMoneyUSD(amount int64) Money {
	return Money{amount: amount, currency: DefaultCurrency}
}

// Zero returns a zero amount in the default currency
func Zero() Money {
	return Money{amount: 0, currency: DefaultCurrency}
}

// NewMoneyFromDecimal creates a Money from a major-unit decimal, rounding to the nearest cent
func NewMoneyFromDecimal(d decimal.Decimal, currency string) Money {
	minor := d.Mul(decimal.NewFromInt(minorUnitsPerMajor)).Round(0).IntPart()
	return NewMoney(minor, currency)
}

// Amount returns the amount in minor units
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() string {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

// Decimal returns the amount in major units as a decimal
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.amount).Div(decimal.NewFromInt(minorUnitsPerMajor))
}

// Add returns the sum of two amounts. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency(), other.Currency())
	}
	return Money{amount: m.amount + other.amount, currency: m.Currency()}, nil
}

// Sub returns the difference of two amounts. Currencies must match.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency(), other.Currency())
	}
	return Money{amount: m.amount - other.amount, currency: m.Currency()}, nil
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount == 0
}

// IsNegative returns true if the amount is below zero
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// IsPositive returns true if the amount is above zero
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// GreaterThan returns true if m > other (same currency assumed)
func (m Money) GreaterThan(other Money) bool {
	return m.amount > other.amount
}

// LessThan returns true if m < other (same currency assumed)
func (m Money) LessThan(other Money) bool {
	return m.amount < other.amount
}

// GreaterThanOrEqual returns true if m >= other (same currency assumed)
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount >= other.amount
}

// Equals returns true if amount and currency match
func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.Currency() == other.Currency()
}

// RatioOf returns m/total as a percentage (0-100) rounded to two places.
// Returns 100 when total is zero.
func (m Money) RatioOf(total Money) decimal.Decimal {
	if total.amount == 0 {
		return decimal.NewFromInt(100)
	}
	return decimal.NewFromInt(m.amount).
		Div(decimal.NewFromInt(total.amount)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// String formats the amount in major units, e.g. "550.00 USD"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(2), m.Currency())
}
