package model

import "github.com/shopspring/decimal"

type PricingPolicy struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		TaxRate:               decimal.RequireFromString("0.18"),
		FreeShippingThreshold: decimal.NewFromInt(2000),
		ShippingFee:           decimal.NewFromInt(99),
	}
}

type Prices struct {
	Items    decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Quote prices an order whose items add up to itemsTotal. Shipping is free only strictly above the threshold.
func (p PricingPolicy) Quote(itemsTotal decimal.Decimal) Prices {
	items := itemsTotal.Round(2)
	tax := items.Mul(p.TaxRate).Round(2)
	shipping := p.ShippingFee
	if items.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	return Prices{
		Items:    items,
		Tax:      tax,
		Shipping: shipping,
		Total:    items.Add(tax).Add(shipping),
	}
}
