package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ApplyDiscount returns price reduced by discountPercent. A non-positive discount leaves the price untouched.
func ApplyDiscount(price, discountPercent decimal.Decimal) decimal.Decimal {
	if !discountPercent.IsPositive() {
		return price
	}
	return price.Mul(hundred.Sub(discountPercent)).Div(hundred)
}

// Money renders an amount with two fractional digits.
func Money(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
