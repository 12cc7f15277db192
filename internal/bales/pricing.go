package bales

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Component is one stock line that goes into a bale, priced per unit.
type Component struct {
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	Quantity     int
}

// Pricing is the computed money breakdown for a bale.
type Pricing struct {
	TotalCostPrice       decimal.Decimal `json:"total_cost_price"`
	RecommendedSalePrice decimal.Decimal `json:"recommended_sale_price"`
	ActualSellingPrice   decimal.Decimal `json:"actual_selling_price"`
	Profit               decimal.Decimal `json:"profit"`
	MarginPercentage     decimal.Decimal `json:"margin_percentage"`
}

// CalculatePricing sums the component costs and selling prices and derives
// profit and margin. When actualOverride is nil the actual selling price
// defaults to the recommended price. Zero cost yields zero margin.
func CalculatePricing(components []Component, actualOverride *decimal.Decimal) Pricing {
	totalCost := decimal.Zero
	recommended := decimal.Zero
	for _, c := range components {
		qty := decimal.NewFromInt(int64(c.Quantity))
		totalCost = totalCost.Add(c.CostPrice.Mul(qty))
		recommended = recommended.Add(c.SellingPrice.Mul(qty))
	}

	actual := recommended
	if actualOverride != nil {
		actual = *actualOverride
	}

	profit := actual.Sub(totalCost)
	margin := decimal.Zero
	if totalCost.IsPositive() {
		margin = profit.Div(totalCost).Mul(hundred)
	}

	return Pricing{
		TotalCostPrice:       totalCost,
		RecommendedSalePrice: recommended,
		ActualSellingPrice:   actual,
		Profit:               profit,
		MarginPercentage:     margin,
	}
}

// LineDiscount is the saving shown against an order line: the itemized total
// of the bale's components minus the negotiated bale price, floored at zero.
func LineDiscount(itemizedTotal, balePrice decimal.Decimal) decimal.Decimal {
	discount := itemizedTotal.Sub(balePrice)
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}
