// Package currency formats monetary amounts and effort figures for
// display and report output.
package currency

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts in one fixed currency.
type Formatter interface {
	// Format renders a monetary amount with the currency symbol and
	// digit grouping. JPY renders without decimals, other currencies
	// with two.
	Format(amount float64) string
	// FormatEffort renders person-days with one decimal and grouping.
	FormatEffort(days float64) string
	// Code returns the ISO 4217 code.
	Code() string
}

type textFormatter struct {
	unit    currency.Unit
	printer *message.Printer
	digits  int
}

// NewFormatter creates a Formatter for the given ISO 4217 code.
func NewFormatter(code string) (Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parsing currency code %q: %w", code, err)
	}
	digits := 2
	if unit == currency.JPY {
		digits = 0
	}
	return &textFormatter{
		unit:    unit,
		printer: message.NewPrinter(language.English),
		digits:  digits,
	}, nil
}

func (f *textFormatter) Format(amount float64) string {
	return f.printer.Sprintf("%v%v",
		currency.Symbol(f.unit),
		number.Decimal(amount,
			number.MinFractionDigits(f.digits),
			number.MaxFractionDigits(f.digits)))
}

func (f *textFormatter) FormatEffort(days float64) string {
	return f.printer.Sprintf("%v person-days",
		number.Decimal(days, number.MinFractionDigits(1), number.MaxFractionDigits(1)))
}

func (f *textFormatter) Code() string {
	return f.unit.String()
}
