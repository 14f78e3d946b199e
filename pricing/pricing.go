// Package pricing computes order totals in decimal arithmetic and rounds to cents.
package pricing

import "github.com/shopspring/decimal"

type Line struct {
	UnitPrice float64
	Quantity  int
}

type Totals struct {
	SubTotal    float64
	ServiceFee  float64
	DeliveryFee float64
	Total       float64
}

// Compute returns subtotal, service fee (subtotal × rate) and
// total = subtotal + service fee + delivery fee, each rounded to two places.
func Compute(lines []Line, serviceFeeRate, deliveryFee float64) Totals {
	sub := decimal.Zero
	for _, l := range lines {
		sub = sub.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	sub = sub.Round(2)
	fee := sub.Mul(decimal.NewFromFloat(serviceFeeRate)).Round(2)
	delivery := decimal.NewFromFloat(deliveryFee).Round(2)
	total := sub.Add(fee).Add(delivery)

	return Totals{
		SubTotal:    sub.InexactFloat64(),
		ServiceFee:  fee.InexactFloat64(),
		DeliveryFee: delivery.InexactFloat64(),
		Total:       total.InexactFloat64(),
	}
}

// Round2 rounds a money amount to cents.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Mul multiplies two quantities (e.g. quantity × unit cost) and rounds to cents.
func Mul(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}
