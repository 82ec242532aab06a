// Package statement groups the table-like text of a PDF bank statement into
// transaction rows. Statements print one logical transaction across several
// physical lines with no reliable delimiters, so the grouper runs a stateful
// scan: fragments accumulate into the current physical row, row boundaries
// merge leftovers downward, and a candidate completes the moment a fresh
// amount and archive id appear while a posting date holds.
package statement

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/ledger-extract/internal/domain/extract"
	"github.com/FACorreiaa/ledger-extract/internal/domain/extract/textgrid"
	"github.com/FACorreiaa/ledger-extract/pkg/validate"
)

var (
	// Header cell that marks the start of the transaction table. Its
	// column anchors where archive ids are expected.
	tableHeaderTerms = []string{"arkistointitunnus", "filings code", "filing code", "archival code"}

	// "Entry date" label rows carry the posting date for the rows below.
	entryDateRe = regexp.MustCompile(`(?i)(kirjauspäivä|entry date)\W+([0-9]{1,2})\.([0-9]{1,2})\.((?:[0-9]{2}){0,2})`)

	// Column-cell posting date, 2- or 4-digit year.
	cellDateRe = regexp.MustCompile(`([0-9]{1,2})\.([0-9]{1,2})\.([0-9]{2}(?:[0-9]{2})?)`)

	// Amount with optional grouping and a leading or trailing sign.
	amountRe = regexp.MustCompile(`([+-])?((?:[0-9]+[ .])*[0-9]+),([0-9]{2})([+-])?`)

	// Creditor reference, optionally introduced by its label.
	referenceRe = regexp.MustCompile(`(?:(?:Viite|Reference)\w*\W*|\b)(RF[0-9]{2}[0-9]{4,20}|[0-9]{4,20})`)

	// Archive id: a leading alphanumeric run, single spaces allowed.
	archiveRe = regexp.MustCompile(`[0-9A-Za-z]+(?: [0-9A-Za-z]+)*`)

	// Free-text description candidate: letters, at least 8 characters.
	descriptionRe = regexp.MustCompile(`[A-Za-zÄÖÅäöå&][A-Za-zÄÖÅäöå& ]{7,}`)

	// Archive-header words that must not be mistaken for an archive id.
	archiveDenyTerms = []string{"kirjauspäivä", "yhteen", "entry date"}
)

// descriptionDeny rejects banking boilerplate so field labels do not leak
// into transaction descriptions. Matched case-insensitively via upper-casing.
var descriptionDeny = ahocorasick.NewStringMatcher([]string{
	"SIIRTO", "OSTO", "LASKU", "VIITEMAKSU", "IBAN", "BIC",
	"ARKISTOINTITUNNUS", "TILINUMERO", "PAYMENT",
	"TRANSFER", "PURCHASE", "ARCHIVAL", "ACCOUNT NUMBER",
})

// rowFields is the per-physical-row accumulator; candidate is the logical
// transaction being assembled across rows. Same shape, different lifetime.
type rowFields struct {
	date    time.Time
	cents   int64
	iban    string
	ref     string
	archive string
	desc    string
}

// Grouper scans a fragment grid for statement rows and emits each completed
// transaction exactly once. Emitted rows always have a nonzero amount.
type Grouper struct {
	// Emit receives each completed row, in document order.
	Emit func(extract.StatementRow)
	// Year disambiguates 2-digit and missing years; usually the statement
	// period end. Zero means the current year.
	Year int
	// DatedRows is true when the document carries dedicated "entry date"
	// label rows. Posting dates then come only from those labels and are
	// not merged downward across row boundaries. This is a per-format
	// heuristic, not a guaranteed invariant.
	DatedRows bool

	cand    rowFields
	row     rowFields
	archCol int
	inTable bool
	curRow  int
	curPage int
}

// Run performs the scan in ascending key order: ascending page, then row,
// then column.
func (gr *Grouper) Run(g *textgrid.Grid) {
	gr.archCol = -1
	gr.curRow = -1

	for _, k := range g.Keys() {
		row := k.Row()
		page := row / 200

		if page != gr.curPage {
			// The table header must be seen again on every page.
			gr.inTable = false
			gr.curPage = page
		}

		text := g.Text(k)
		col := k.Col()

		if row != gr.curRow {
			gr.rowBoundary()
			gr.curRow = row
		}

		if !gr.inTable {
			if containsAny(text, tableHeaderTerms) {
				gr.archCol = col
				gr.inTable = true
			}
			continue
		}
		gr.scanFragment(text, col)
	}

	// Input ended: merge the final physical row and flush a complete
	// candidate that no trailing fragment got to finalize.
	gr.rowBoundary()
	gr.finalize()
}

// rowBoundary merges the just-finished physical row into the candidate. A
// row that carried both an amount and an archive id starts its own
// transaction; otherwise its fields fill gaps in the current one.
func (gr *Grouper) rowBoundary() {
	if gr.row.cents != 0 && gr.row.archive != "" {
		gr.cand.cents = gr.row.cents
		gr.cand.archive = gr.row.archive
	}
	if gr.cand.cents != 0 {
		if !gr.row.date.IsZero() && !gr.DatedRows {
			gr.cand.date = gr.row.date
		}
		if gr.row.iban != "" {
			gr.cand.iban = gr.row.iban
		}
		if gr.row.ref != "" {
			gr.cand.ref = gr.row.ref
		}
		if gr.row.desc != "" && gr.cand.desc == "" {
			gr.cand.desc = gr.row.desc
		}
	}
	gr.row = rowFields{}
}

// scanFragment feeds one in-table fragment into the accumulators.
func (gr *Grouper) scanFragment(text string, col int) {
	isEntryDate := entryDateRe.MatchString(text)
	_, hasAmount := fragmentAmount(text)

	// A new entry-date label or a new amount means the previous
	// transaction is complete. Neither signal is reliable alone across
	// bank formats, which is why completion needs amount plus archive id.
	if (isEntryDate || hasAmount) && gr.cand.cents != 0 && gr.cand.archive != "" {
		gr.finalize()
	}

	if isEntryDate {
		m := entryDateRe.FindStringSubmatch(text)
		gr.cand.date = gr.labelDate(m[2], m[3], m[4])
		return
	}
	if m := cellDateRe.FindStringSubmatch(text); m != nil {
		if d, ok := gr.cellDate(m[1], m[2], m[3]); ok {
			gr.row.date = d
		}
	}

	// Archive ids live in the header's column, within tolerance.
	if col > gr.archCol-3 && col < gr.archCol+5 && gr.row.archive == "" &&
		digitCount(text) > 4 {
		if m := archiveRe.FindString(text); m != "" && !containsAny(m, archiveDenyTerms) {
			gr.row.archive = m
		}
	} else if gr.row.ref == "" {
		if m := referenceRe.FindStringSubmatch(text); m != nil &&
			validate.Reference(m[1]).Acceptable {
			gr.row.ref = m[1]
		}
	}

	if m := ibanShapeRe.FindString(text); m != "" && validate.IBAN(m).Acceptable {
		gr.row.iban = m
	}
	if cents, ok := fragmentAmount(text); ok {
		gr.row.cents = cents
	}
	if gr.row.desc == "" {
		if m := descriptionRe.FindString(text); m != "" {
			gr.row.desc = acceptableDescription(m)
		}
	}
}

// finalize emits the candidate when it holds a valid posting date, then
// resets the accumulators. The posting date is kept: statement formats let a
// date apply downward until a new one appears.
func (gr *Grouper) finalize() {
	if !gr.cand.date.IsZero() && gr.cand.cents != 0 && gr.cand.archive != "" && gr.Emit != nil {
		gr.Emit(extract.StatementRow{
			PostingDate: gr.cand.date,
			AmountCents: gr.cand.cents,
			IBAN:        gr.cand.iban,
			Reference:   gr.cand.ref,
			ArchiveID:   gr.cand.archive,
			Description: gr.cand.desc,
		})
	}
	gr.cand = rowFields{date: gr.cand.date}
}

var ibanShapeRe = regexp.MustCompile(`\b[A-Z]{2}[0-9]{2}[0-9A-Za-z]{6,30}\b`)

// labelDate resolves an entry-date label's year: absent years default to the
// statement year, 2-digit years to the reference century.
func (gr *Grouper) labelDate(dayS, monthS, yearS string) time.Time {
	day, month := atoi(dayS), atoi(monthS)
	year := atoi(yearS)
	if year == 0 {
		year = gr.refYear()
	} else if year < 100 {
		year += gr.refYear() / 100 * 100
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(d.Month()) != month || d.Day() != day {
		return time.Time{}
	}
	return d
}

func (gr *Grouper) cellDate(dayS, monthS, yearS string) (time.Time, bool) {
	d := gr.labelDate(dayS, monthS, yearS)
	return d, !d.IsZero()
}

func (gr *Grouper) refYear() int {
	if gr.Year != 0 {
		return gr.Year
	}
	return time.Now().Year()
}

// fragmentAmount parses a statement-cell amount. A sign may lead or trail;
// a token signed on both ends is ambiguous and rejected. Unsigned amounts
// are positive.
func fragmentAmount(text string) (int64, bool) {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	lead, euros, centsPart, trail := m[1], m[2], m[3], m[4]
	if lead != "" && trail != "" {
		return 0, false
	}

	var digits strings.Builder
	for _, r := range euros {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	whole := atoi64(digits.String())
	cents := whole*100 + int64(atoi(centsPart))
	if lead == "-" || trail == "-" {
		cents = -cents
	}
	return cents, true
}

// acceptableDescription normalizes a candidate and rejects deny-listed
// banking boilerplate and too-short strings.
func acceptableDescription(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= 8 {
		return ""
	}
	if len(descriptionDeny.Match([]byte(strings.ToUpper(s)))) > 0 {
		return ""
	}
	return s
}

func containsAny(text string, terms []string) bool {
	lowered := strings.ToLower(text)
	for _, t := range terms {
		if strings.Contains(lowered, t) {
			return true
		}
	}
	return false
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func atoi64(s string) int64 {
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int64(r-'0')
	}
	return n
}
