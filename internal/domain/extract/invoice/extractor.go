// Package invoice assembles a purchase-invoice candidate from a document's
// positioned text. A structured pass reads the bank transfer slip printed at
// the bottom of Finnish invoices; whatever that pass leaves empty is filled
// by keyword-and-proximity heuristics over the whole document. Anchors are
// matched bilingually since the slips appear in Finnish and English layouts.
package invoice

import (
	"regexp"
	"strings"
	"time"

	"github.com/FACorreiaa/ledger-extract/internal/domain/extract"
	"github.com/FACorreiaa/ledger-extract/internal/domain/extract/textgrid"
	"github.com/FACorreiaa/ledger-extract/pkg/dates"
	"github.com/FACorreiaa/ledger-extract/pkg/money"
	"github.com/FACorreiaa/ledger-extract/pkg/validate"
)

var (
	// IBAN-shaped token possibly still containing layout spaces.
	slipIBANRe  = regexp.MustCompile(`\b[A-Z]{2}[0-9]{2}[0-9A-Za-z ]{6,30}\b`)
	looseIBANRe = regexp.MustCompile(`[A-Z]{2}[0-9]{2}[0-9A-Za-z ]{6,34}`)
	// Strict decimal money shape used by the largest-amount fallback.
	strictMoneyRe = regexp.MustCompile(`^[0-9]{1,10}[,.][0-9]{2}$`)
)

// Anchor label variants, Finnish first.
var (
	payeeAccountLabels = []string{"saajan", "recipient's"}
	payeeLabels        = []string{"saaja", "recipient"}
	referenceLabels    = []string{"viite", "reference"}
	dueShortLabels     = []string{"erä", "due"}
	dueDateLabels      = []string{"eräpäivä", "due date"}
	amountLabels       = []string{"euro", "amount"}
	deliveryLabels     = []string{"toimituspäivä", "toimituspvm", "delivery date"}
	invoiceDateLabels  = []string{"päivämäärä", "päiväys", "dated"}
	genericDateLabels  = []string{"pvm", "date"}
	dueAnchorLabels    = []string{"eräp", "due"}
)

// Extract builds an invoice candidate from the fragment grid. It always
// returns a candidate; absent fields stay zero. Extraction is best-effort
// and never fails.
func Extract(grid *textgrid.Grid) extract.Invoice {
	var inv extract.Invoice
	slipPass(grid, &inv)
	fallbackPass(grid, &inv)
	return inv
}

// slipPass reads the payment-slip band (rows 125-190). It runs only when
// every slip label is present in its expected window; a partial slip is
// ignored and left to the fallback heuristics.
func slipPass(g *textgrid.Grid, inv *extract.Invoice) {
	if !hasAny(g, payeeAccountLabels, 125, 150, 0, 15) ||
		!hasAny(g, []string{"IBAN"}, 125, 140, 8, 16) ||
		!hasAny(g, payeeLabels, 135, 155, 0, 15) ||
		!hasAny(g, referenceLabels, 150, 185, 40, 70) ||
		!hasAny(g, dueShortLabels, 160, 190, 40, 70) ||
		!hasAny(g, amountLabels, 160, 190, 60, 90) {
		return
	}

	if ibanAt, ok := findAny(g, []string{"IBAN"}, 125, 140, 8, 30); ok {
		for _, t := range g.Near(ibanAt.Row()+1, ibanAt.Col()-2, 10, 50) {
			candidate := slipIBANRe.FindString(t)
			if candidate == "" {
				continue
			}
			if inv.IBAN == "" && validate.IBAN(candidate).Acceptable {
				inv.IBAN = stripSpaces(candidate)
				break
			}
		}
		// The payee name is printed a few rows below the account line.
		for _, t := range g.Near(ibanAt.Row()+11, ibanAt.Col()-2, 10, 10) {
			if len(t) > 5 && !slipIBANRe.MatchString(t) {
				inv.Payee = t
				break
			}
		}
	}

	if refAt, ok := findAny(g, referenceLabels, 150, 185, 40, 70); ok {
		for _, t := range g.Near(refAt.Row(), refAt.Col(), 20, 60) {
			if inv.Reference == "" && validate.Reference(t).Acceptable {
				inv.Reference = stripSpaces(t)
				break
			}
		}
	}

	if dueAt, ok := findAny(g, dueDateLabels, 160, 190, 40, 70); ok {
		for _, t := range g.Near(dueAt.Row()-2, dueAt.Col()+2, 10, 25) {
			if d, ok := dates.ParseDMY(t, 0); ok {
				inv.DueDate = d
				break
			}
		}
	}

	if amtAt, ok := findAny(g, amountLabels, 160, 190, 60, 90); ok {
		for _, t := range g.Near(amtAt.Row()-2, amtAt.Col()+2, 10, 25) {
			if cents, ok := money.ParseCents(t); ok {
				inv.AmountCents = cents
				break
			}
		}
	}
}

// fallbackPass fills still-empty fields from whole-document heuristics, in a
// fixed order. A field set by the slip pass is never overwritten.
func fallbackPass(g *textgrid.Grid, inv *extract.Invoice) {
	// 1. Delivery date.
	if inv.DeliveryDate.IsZero() {
		if at, ok := anyAnywhere(g, deliveryLabels); ok {
			inv.DeliveryDate = dateNear(g, at, 10, 70)
		}
	}

	// 2. Invoice date: a dedicated label, or the generic date label when it
	// is demonstrably not the due-date label.
	if inv.InvoiceDate.IsZero() {
		at, ok := anyAnywhere(g, invoiceDateLabels)
		if !ok {
			dueAt, _ := anyAnywhere(g, dueAnchorLabels)
			if genAt, genOK := anyAnywhere(g, genericDateLabels); genOK && genAt != dueAt {
				at, ok = genAt, true
			}
		}
		if ok {
			inv.InvoiceDate = dateNear(g, at, 10, 80)
		}
	}

	// 3. Due date.
	if inv.DueDate.IsZero() {
		if at, ok := anyAnywhere(g, dueAnchorLabels); ok {
			inv.DueDate = dateNear(g, at, 10, 60)
		}
	}

	// 4. Reference.
	if inv.Reference == "" {
		if at, ok := anyAnywhere(g, referenceLabels); ok {
			for _, t := range g.Near(at.Row(), at.Col(), 10, 60) {
				if validate.Reference(t).Acceptable {
					inv.Reference = stripSpaces(t)
					break
				}
			}
		}
	}

	// 5. IBAN by shape anywhere near an IBAN label.
	if inv.IBAN == "" {
		if at, ok := g.Anywhere("IBAN"); ok {
			for _, t := range g.Near(at.Row(), at.Col(), 20, 10) {
				candidate := looseIBANRe.FindString(t)
				if candidate != "" && validate.IBAN(candidate).Acceptable {
					inv.IBAN = stripSpaces(candidate)
					break
				}
			}
		}
	}

	// 6. Payee of last resort: the first fragment on the document.
	if inv.Payee == "" {
		if first, ok := g.First(); ok {
			inv.Payee = first
		}
	}

	// 7. Amount of last resort: the largest printed decimal number is
	// assumed to be the total rather than a line item or tax rate.
	if inv.AmountCents == 0 {
		for _, k := range g.Keys() {
			t := g.Text(k)
			if !strictMoneyRe.MatchString(t) {
				continue
			}
			if cents, ok := money.ParseCents(t); ok && cents > inv.AmountCents {
				inv.AmountCents = cents
			}
		}
	}
}

func hasAny(g *textgrid.Grid, needles []string, r1, r2, c1, c2 int) bool {
	_, ok := findAny(g, needles, r1, r2, c1, c2)
	return ok
}

func findAny(g *textgrid.Grid, needles []string, r1, r2, c1, c2 int) (textgrid.Key, bool) {
	for _, n := range needles {
		if k, ok := g.FindFirst(n, r1, r2, c1, c2); ok {
			return k, true
		}
	}
	return 0, false
}

func anyAnywhere(g *textgrid.Grid, needles []string) (textgrid.Key, bool) {
	for _, n := range needles {
		if k, ok := g.Anywhere(n); ok {
			return k, true
		}
	}
	return 0, false
}

func dateNear(g *textgrid.Grid, at textgrid.Key, rowSpan, colSpan int) (d time.Time) {
	for _, t := range g.Near(at.Row(), at.Col(), rowSpan, colSpan) {
		if parsed, ok := dates.ParseDMY(t, 0); ok {
			return parsed
		}
	}
	return d
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
