// Package money converts between the exact decimal amounts exchanged over the
// API and the int64 minor units (hundredths) the ledger stores. Balance
// arithmetic never touches binary floating point.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts serialize as JSON numbers, matching the documented API shapes.
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	// ErrTooPrecise occurs when an amount carries more than two decimal places.
	ErrTooPrecise = errors.New("amount has more than two decimal places")

	// ErrOutOfRange occurs when an amount does not fit the ledger's int64
	// minor units.
	ErrOutOfRange = errors.New("amount out of range")
)

var centFactor = decimal.NewFromInt(100)

// ToMinorUnits converts a decimal amount into minor units. Sub-cent precision
// is rejected rather than rounded, and amounts beyond the int64 range are
// rejected rather than truncated.
func ToMinorUnits(d decimal.Decimal) (int64, error) {
	scaled := d.Mul(centFactor)
	if !scaled.IsInteger() {
		return 0, ErrTooPrecise
	}
	bi := scaled.BigInt()
	if !bi.IsInt64() {
		return 0, ErrOutOfRange
	}
	return bi.Int64(), nil
}

// FromMinorUnits renders minor units as a decimal amount.
func FromMinorUnits(units int64) decimal.Decimal {
	return decimal.New(units, -2)
}
