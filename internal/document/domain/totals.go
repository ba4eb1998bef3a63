package domain

import "github.com/shopspring/decimal"

// Totals summarizes the monetary breakdown of a document.
type Totals struct {
	Subtotal  decimal.Decimal
	BtwAmount decimal.Decimal
	BtwByRate map[string]decimal.Decimal
	Total     decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// CalculateTotals derives subtotal, BTW per rate, and the grand total from
// line items. Amounts are rounded to cents at the aggregate level.
func CalculateTotals(items []LineItem) Totals {
	subtotal := decimal.Zero
	btwByRate := make(map[string]decimal.Decimal)

	for _, item := range items {
		lineTotal := item.Quantity.Mul(item.UnitPrice)
		subtotal = subtotal.Add(lineTotal)

		rate := item.BtwPercentage
		btw := lineTotal.Mul(rate).Div(oneHundred)
		key := rate.String()
		btwByRate[key] = btwByRate[key].Add(btw)
	}

	totalBtw := decimal.Zero
	for key, amount := range btwByRate {
		rounded := amount.Round(2)
		btwByRate[key] = rounded
		totalBtw = totalBtw.Add(rounded)
	}

	subtotal = subtotal.Round(2)
	return Totals{
		Subtotal:  subtotal,
		BtwAmount: totalBtw,
		BtwByRate: btwByRate,
		Total:     subtotal.Add(totalBtw),
	}
}
