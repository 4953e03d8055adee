package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrencyUsesLocaleGrouping(t *testing.T) {
	f := NewFormatter("en-US")

	out := f.Currency(1234.5, "USD")
	assert.Contains(t, out, "$")
	assert.Contains(t, out, "1,234.50")
}

func TestCurrencyDefaultsToRupees(t *testing.T) {
	f := NewFormatter("en-IN")

	out := f.Currency(500, "")
	assert.Contains(t, out, "₹")
	assert.Contains(t, out, "500.00")
}

func TestCurrencyUnknownCode(t *testing.T) {
	f := NewFormatter("en-US")

	assert.Equal(t, "ZZQ 12.00", f.Currency(12, "zzq"))
}

func TestCurrencyCode(t *testing.T) {
	f := NewFormatter("en-US")

	assert.Equal(t, "USD 1,234.50", f.CurrencyCode(1234.5, "usd"))
	assert.Equal(t, "-INR 5.00", f.CurrencyCode(-5, ""))
	assert.Equal(t, "JPY 1,200", f.CurrencyCode(1200, "JPY"))
}

func TestCurrencyNegative(t *testing.T) {
	f := NewFormatter("en-US")

	out := f.Currency(-20, "USD")
	assert.Equal(t, "-", out[:1])
	assert.Contains(t, out, "20.00")
}

func TestNewFormatterFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "en", NewFormatter("not a locale!").Locale())
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Sunday, December 20, 2026", FormatDate("2026-12-20"))
	assert.Equal(t, "Thursday, December 24, 2026", FormatDate("2026-12-24T10:00:00Z"))
	assert.Equal(t, "next tuesday", FormatDate("next tuesday"))
	assert.Equal(t, "", FormatDate(""))
}

func TestBudgetWidth(t *testing.T) {
	assert.InDelta(t, 40.0, BudgetWidth(20000, 50000), 1e-9)
	assert.InDelta(t, 150.0, BudgetWidth(75000, 50000), 1e-9)
	assert.Equal(t, 0.0, BudgetWidth(100, 0))
}

func TestTransportIcon(t *testing.T) {
	cases := map[string]string{
		"car":        "directions_car",
		"Flight":     "flight",
		"TRAIN":      "train",
		"bus":        "directions_bus",
		"scooter":    "directions_car",
		"":           "directions_car",
		" bus ":      "directions_bus",
		"hovercraft": "directions_car",
	}
	for mode, icon := range cases {
		assert.Equal(t, icon, TransportIcon(mode), "mode %q", mode)
	}
}
