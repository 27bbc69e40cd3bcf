// Package format renders amounts and counts for display.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/instax-forecast/pkg/constants"
)

// Printer formats numbers with the grouping rules of a locale.
type Printer struct {
	p *message.Printer
}

// NewPrinter returns a Printer for the given BCP 47 locale tag. Unknown or
// empty tags fall back to the default locale.
func NewPrinter(locale string) *Printer {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.Make(constants.DefaultLocale)
	}
	return &Printer{p: message.NewPrinter(tag)}
}

// Rupiah returns a discount amount as whole rupiah with separators (e.g.
// "50,000 IDR"). Fractions are dropped; amounts beyond the int64 range are
// printed in full.
func (pr *Printer) Rupiah(amount float64) string {
	whole := math.Trunc(amount)
	if whole == 0 {
		// normalize -0
		whole = 0
	}
	return pr.p.Sprintf("%.0f IDR", whole)
}

// Units returns a whole unit count with separators (e.g. "1,234 units").
func (pr *Printer) Units(count int64) string {
	if count == 1 || count == -1 {
		return pr.p.Sprintf("%d unit", count)
	}
	return pr.p.Sprintf("%d units", count)
}

// Decimal returns val with two decimals and separators (e.g. "1,234.57").
func (pr *Printer) Decimal(val float64) string {
	return pr.p.Sprintf("%.2f", val)
}

// Sprintf formats according to the printer's locale.
func (pr *Printer) Sprintf(format string, args ...interface{}) string {
	return pr.p.Sprintf(format, args...)
}
