package view

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Locale used for every label the console prints.
var Locale = language.Russian

var printer = message.NewPrinter(Locale)

// TimestampLayout matches the ru-RU toLocaleString output: 05.03.2024, 13:20:30.
const TimestampLayout = "02.01.2006, 15:04:05"

// FormatQty prints a quantity the way the operators read it, e.g. 1 234,5.
func FormatQty(d decimal.Decimal) string {
	f, _ := d.Float64()
	return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(3)))
}

// PlainQty prints a quantity with a dot separator and no grouping, as typed
// into edit cells.
func PlainQty(d decimal.Decimal) string {
	return d.String()
}

// SignedQty prefixes positive quantities with a plus.
func SignedQty(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.String()
	}
	return d.String()
}

// FormatTime renders t in loc using TimestampLayout.
func FormatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(TimestampLayout)
}
