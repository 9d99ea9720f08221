package services

import (
	"strconv"
	"strings"

	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"costconsole/locales"
)

// FormatAmount formats a number with the grouping of lang and at most four
// fractional digits, trailing zeros dropped (e.g. 1234.5 -> "1,234.5").
func FormatAmount(lang locales.Language, v float64) string {
	p := message.NewPrinter(lang.Tag())
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(4)))
}

// TrimDecimal renders v with the shortest exact representation and no
// exponent: 12.50 -> "12.5", 3 -> "3".
func TrimDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatRatePercent turns a 0..1 rate into percent points. Zero renders as
// the empty string, the way the cost system leaves unset rates blank.
func FormatRatePercent(rate float64) string {
	if rate == 0 {
		return ""
	}
	// Round to 6 decimals to drop binary noise such as 0.07*100 = 7.000000000000001.
	s := strconv.FormatFloat(rate*100, 'f', 6, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s
}

// WithUnit appends a unit to a non-empty value: "7.85 g/cm3".
func WithUnit(value, unit string) string {
	if value == "" {
		return ""
	}
	if unit == "" {
		return value
	}
	return value + " " + unit
}
