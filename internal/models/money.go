package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// minorUnits is the number of decimal places an Amount carries.
const minorUnits = 2

var (
	maxAmount = decimal.NewFromInt(math.MaxInt64)
	minAmount = decimal.NewFromInt(math.MinInt64)
)

// Amount is a monetary value in minor currency units (paise).
type Amount int64

// FromMajor returns the Amount for a whole number of major units.
func FromMajor(units int64) Amount {
	return Amount(units * 100)
}

// ParseAmount parses a decimal string such as "50" or "65.25".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return AmountFromDecimal(d)
}

// AmountFromDecimal converts d to minor units, rejecting sub-paise precision.
func AmountFromDecimal(d decimal.Decimal) (Amount, error) {
	minor := d.Shift(minorUnits)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d.String(), minorUnits)
	}
	if minor.GreaterThan(maxAmount) || minor.LessThan(minAmount) {
		return 0, fmt.Errorf("amount %s out of range", d.String())
	}
	return Amount(minor.IntPart()), nil
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -minorUnits)
}

func (a Amount) String() string {
	return a.Decimal().StringFixed(minorUnits)
}

func (a Amount) IsPositive() bool {
	return a > 0
}

// MarshalJSON encodes the amount as a fixed-point decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON number or a decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	parsed, err := AmountFromDecimal(d)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
