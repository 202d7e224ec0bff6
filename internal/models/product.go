package models

import "github.com/shopspring/decimal"

type Product struct {
	Key     string          `json:"key" yaml:"key"`
	Name    string          `json:"name" yaml:"name"`
	Credits int64           `json:"credits" yaml:"credits"`
	Price   decimal.Decimal `json:"price" yaml:"price"`
}

// DiscountedPrice applies a tier discount and rounds to cents.
func (p Product) DiscountedPrice(t Tier) decimal.Decimal {
	pct := decimal.NewFromInt(t.Benefits().DiscountPercent)
	off := p.Price.Mul(pct).Div(decimal.NewFromInt(100))
	return p.Price.Sub(off).Round(2)
}

// DefaultProducts is the built-in credit pack catalog, priced in BRL.
func DefaultProducts() []Product {
	return []Product{
		{Key: "STARTER_PACK", Name: "Starter Pack", Credits: 50, Price: decimal.RequireFromString("9.99")},
		{Key: "BASIC_PACK", Name: "Basic Pack", Credits: 100, Price: decimal.RequireFromString("17.99")},
		{Key: "PRO_PACK", Name: "Pro Pack", Credits: 250, Price: decimal.RequireFromString("39.99")},
		{Key: "ULTIMATE_PACK", Name: "Ultimate Pack", Credits: 500, Price: decimal.RequireFromString("69.99")},
	}
}

type ProductOffer struct {
	Product
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
}

type CheckoutRequest struct {
	ProductKey string `json:"productKey"`
}

type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CheckoutParams is what a payment provider needs to open a hosted session.
type CheckoutParams struct {
	UserID     string
	Product    Product
	UnitPrice  decimal.Decimal
	SuccessURL string
	CancelURL  string
}
