package util

import "github.com/shopspring/decimal"

// FormatMinor renders an amount in minor units (cents) as a major-unit string
// with two decimals: -1234 -> "-12.34".
func FormatMinor(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}

// MinorToMajor converts minor units to a decimal value in major units.
func MinorToMajor(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
