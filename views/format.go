package views

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is used when the itinerary does not name one.
const DefaultCurrency = "INR"

// Formatter renders amounts for one display locale.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter returns a formatter for a BCP 47 locale such as "en-IN". Unparseable locales
// fall back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}
}

func (f *Formatter) Locale() string {
	return f.tag.String()
}

// Currency formats amount in the given ISO 4217 code using the locale's grouping and the
// currency's standard number of decimals. Codes x/text does not know are printed as a prefix.
func (f *Formatter) Currency(amount float64, code string) string {
	return f.format(amount, code, true)
}

// CurrencyCode is Currency with the ISO code in place of the symbol, for output that cannot
// carry symbols such as the PDF core fonts.
func (f *Formatter) CurrencyCode(amount float64, code string) string {
	return f.format(amount, code, false)
}

func (f *Formatter) format(amount float64, code string, symbol bool) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return sign + code + " " + f.printer.Sprintf("%.2f", amount)
	}

	scale, _ := currency.Standard.Rounding(unit)
	number := f.printer.Sprintf(fmt.Sprintf("%%.%df", scale), amount)
	if !symbol {
		return sign + code + " " + number
	}
	return sign + f.printer.Sprint(currency.NarrowSymbol(unit)) + number
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// FormatDate renders an ISO date as "Monday, January 2, 2006". Anything else is returned as is.
func FormatDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.Format("Monday, January 2, 2006")
		}
	}
	return s
}

// BudgetWidth is the share of the total budget a category takes, in percent. Values above
// 100 are not clamped. A zero total yields 0.
func BudgetWidth(amount, total float64) float64 {
	if total == 0 {
		return 0
	}
	return amount / total * 100
}

const defaultTransportIcon = "directions_car"

var transportIcons = map[string]string{
	"car":    "directions_car",
	"flight": "flight",
	"train":  "train",
	"bus":    "directions_bus",
}

// TransportIcon maps a transport mode to a Material icon name, ignoring case.
func TransportIcon(mode string) string {
	if icon, ok := transportIcons[strings.ToLower(strings.TrimSpace(mode))]; ok {
		return icon
	}
	return defaultTransportIcon
}
