package utils

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// LedgerPrecision is the number of decimals every ledger amount carries.
const LedgerPrecision = 2

// FormatWithPrecision formats an amount with the given precision
// Example: amount 12.3456 with precision 2 returns "12.35"
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.StringFixed(int32(precision))
}

// AmountFormatter renders amounts with a currency's symbol and separators,
// always with LedgerPrecision decimals.
type AmountFormatter struct {
	formatter *money.Formatter
}

// NewAmountFormatter returns a formatter for the ISO currency code. Unknown codes
// render with the code as symbol and the default separators.
func NewAmountFormatter(currencyCode string) AmountFormatter {
	// to get a never nil currency go through the Money constructor
	cur := money.New(0, strings.ToUpper(currencyCode)).Currency()
	return AmountFormatter{
		formatter: money.NewFormatter(LedgerPrecision, cur.Decimal, cur.Thousand, cur.Grapheme, cur.Template),
	}
}

// Format renders amount, e.g. 1000000 in USD as "$1,000,000.00".
func (f AmountFormatter) Format(amount decimal.Decimal) string {
	minor := amount.Round(LedgerPrecision).Shift(LedgerPrecision).IntPart()
	return f.formatter.Format(minor)
}
