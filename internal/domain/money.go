// internal/domain/money.go
package domain

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
	minMinorUnits = decimal.NewFromInt(math.MinInt64)
)

// FormatMoney renders amount in the given ISO currency, e.g. "$1,950.00".
// Unknown currencies and amounts too large for int64 minor units fall back
// to two fixed decimals.
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2)
	}
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	if minor.GreaterThan(maxMinorUnits) || minor.LessThan(minMinorUnits) {
		return amount.StringFixed(2)
	}
	return money.New(minor.IntPart(), cur.Code).Display()
}
