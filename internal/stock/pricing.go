package stock

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// ResolvePricing fills in the missing member of the cost/sell/margin triple.
// Any two of the three determine the remaining one; when all three are given
// the margin must agree with the prices. Margin is profit over cost.
func ResolvePricing(cost, sell, margin *decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	provided := 0
	for _, v := range []*decimal.Decimal{cost, sell, margin} {
		if v != nil {
			provided++
		}
	}
	if provided < 2 {
		return decimal.Zero, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "provide at least two of cost price, selling price and margin")
	}
	if cost != nil && cost.IsNegative() {
		return decimal.Zero, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "cost price cannot be negative")
	}
	if sell != nil && sell.IsNegative() {
		return decimal.Zero, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "selling price cannot be negative")
	}

	switch {
	case cost != nil && sell != nil:
		if margin != nil && !MarginPercent(*cost, *sell).Round(2).Equal(margin.Round(2)) {
			return decimal.Zero, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "margin does not match cost and selling price")
		}
		return *cost, *sell, nil
	case cost != nil:
		factor := decimal.NewFromInt(1).Add(margin.Div(hundred))
		return *cost, cost.Mul(factor).Round(2), nil
	default:
		factor := decimal.NewFromInt(1).Add(margin.Div(hundred))
		if factor.IsZero() {
			return decimal.Zero, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "margin of -100% is not derivable")
		}
		return sell.Div(factor).Round(2), *sell, nil
	}
}

// MarginPercent is profit over cost as a percentage, zero when cost is zero.
func MarginPercent(cost, sell decimal.Decimal) decimal.Decimal {
	if cost.IsZero() {
		return decimal.Zero
	}
	return sell.Sub(cost).Div(cost).Mul(hundred)
}
