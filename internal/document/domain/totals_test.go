package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateTotalsSingleRate(t *testing.T) {
	items := []LineItem{
		{Description: "Consultancy", Quantity: dec("10"), UnitPrice: dec("85"), BtwPercentage: dec("21")},
		{Description: "Travel", Quantity: dec("2"), UnitPrice: dec("25.50"), BtwPercentage: dec("21")},
	}

	totals := CalculateTotals(items)
	if !totals.Subtotal.Equal(dec("901")) {
		t.Fatalf("subtotal: expected 901, got %s", totals.Subtotal)
	}
	if !totals.BtwAmount.Equal(dec("189.21")) {
		t.Fatalf("btw: expected 189.21, got %s", totals.BtwAmount)
	}
	if !totals.Total.Equal(dec("1090.21")) {
		t.Fatalf("total: expected 1090.21, got %s", totals.Total)
	}
}

func TestCalculateTotalsRoundsPerRate(t *testing.T) {
	// Per-rate sums are rounded before the grand total, so two lines at the
	// same rate round once, not twice.
	items := []LineItem{
		{Description: "A", Quantity: dec("1"), UnitPrice: dec("0.05"), BtwPercentage: dec("21")},
		{Description: "B", Quantity: dec("1"), UnitPrice: dec("0.05"), BtwPercentage: dec("21")},
	}

	totals := CalculateTotals(items)
	if !totals.BtwAmount.Equal(dec("0.02")) {
		t.Fatalf("btw: expected 0.02, got %s", totals.BtwAmount)
	}
}

func TestCalculateTotalsMixedRates(t *testing.T) {
	items := []LineItem{
		{Description: "Standard", Quantity: dec("1"), UnitPrice: dec("100"), BtwPercentage: dec("21")},
		{Description: "Reduced", Quantity: dec("1"), UnitPrice: dec("100"), BtwPercentage: dec("9")},
		{Description: "Exempt", Quantity: dec("1"), UnitPrice: dec("100"), BtwPercentage: dec("0")},
	}

	totals := CalculateTotals(items)
	if !totals.Subtotal.Equal(dec("300")) {
		t.Fatalf("subtotal: expected 300, got %s", totals.Subtotal)
	}
	if !totals.BtwAmount.Equal(dec("30")) {
		t.Fatalf("btw: expected 30, got %s", totals.BtwAmount)
	}
	if got := totals.BtwByRate["21"]; !got.Equal(dec("21")) {
		t.Fatalf("btw at 21%%: expected 21, got %s", got)
	}
	if got := totals.BtwByRate["9"]; !got.Equal(dec("9")) {
		t.Fatalf("btw at 9%%: expected 9, got %s", got)
	}
}

func TestCalculateTotalsEmpty(t *testing.T) {
	totals := CalculateTotals(nil)
	if !totals.Subtotal.IsZero() || !totals.BtwAmount.IsZero() || !totals.Total.IsZero() {
		t.Fatalf("expected zero totals, got %s / %s / %s", totals.Subtotal, totals.BtwAmount, totals.Total)
	}
}

func TestCalculateTotalsFractionalQuantity(t *testing.T) {
	items := []LineItem{
		{Description: "Hours", Quantity: dec("2.5"), UnitPrice: dec("80"), BtwPercentage: dec("21")},
	}

	totals := CalculateTotals(items)
	if !totals.Subtotal.Equal(dec("200")) {
		t.Fatalf("subtotal: expected 200, got %s", totals.Subtotal)
	}
	if !totals.Total.Equal(dec("242")) {
		t.Fatalf("total: expected 242, got %s", totals.Total)
	}
}
