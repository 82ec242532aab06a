// Package tito parses the fixed-width Finnish TITO bank-statement format.
// The format predates Unicode: files arrive in a single-byte national
// encoding where accented letters occupy the ISO 646 bracket positions, and
// every field lives at a fixed column offset. The parser reads those offsets
// directly and emits the same normalized rows as the PDF path, bypassing all
// layout heuristics.
package tito

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/FACorreiaa/ledger-extract/internal/domain/extract"
	"github.com/FACorreiaa/ledger-extract/pkg/dates"
)

// ISO 646 FI/SE bracket substitutions applied after the byte decode.
var brackets = strings.NewReplacer(
	"]", "Å", "[", "Ä", "\\", "Ö",
	"}", "å", "{", "ä", "|", "ö",
)

// rowState accumulates one transaction across its T10 record and the T11
// supplements that follow it.
type rowState struct {
	date    time.Time
	cents   int64
	iban    string
	ref     string
	archive string
	desc    string
	level   int
}

// Parse decodes and walks a TITO byte buffer. The header record registers
// the statement via sink.BeginStatement; rows are emitted only when both the
// importRows flag and the BeginStatement return allow it. The returned count
// is the number of emitted rows; an empty buffer yields zero with no error —
// unreadable input is "nothing recognized", not a failure.
func Parse(data []byte, sink extract.Sink, importRows bool) int {
	if len(data) == 0 {
		return 0
	}

	text := decode(data)
	lines := strings.Split(text, "\r\n")
	if len(lines) == 0 {
		return 0
	}

	emitRows := header(lines[0], sink) && importRows
	emitted := 0

	var row rowState
	prevLevel := 0

	emit := func() {
		if row.date.IsZero() {
			return
		}
		if emitRows {
			sink.EmitStatementRow(extract.StatementRow{
				PostingDate: row.date,
				AmountCents: row.cents,
				IBAN:        row.iban,
				Reference:   row.ref,
				ArchiveID:   row.archive,
				Description: row.desc,
			})
			emitted++
		}
	}

	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "T11") {
			supplement(line, &row)
			continue
		}

		// Any other record type starts a new logical row. A level code at
		// or below the previous one also closes the prior record: the
		// format nests rows without an explicit terminator.
		if lineLevel(line) <= prevLevel {
			emit()
		}
		row = rowState{}

		if strings.HasPrefix(line, "T10") {
			primary(line, &row)
			prevLevel = row.level
		}
	}
	// A trailing record normally forces the last row out; flush it when the
	// file ends without one.
	emit()

	return emitted
}

// decode maps the legacy single-byte encoding to UTF-8 and restores the
// accented letters hidden in bracket positions.
func decode(data []byte) string {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		decoded = data
	}
	return brackets.Replace(string(decoded))
}

// header parses the first record: statement period at offsets 26 and 32,
// account IBAN at 292. Returns the sink's continuation verdict.
func header(line string, sink extract.Sink) bool {
	runes := []rune(line)
	start, _ := dates.ParseYYMMDD(mid(runes, 26, 6))
	end, _ := dates.ParseYYMMDD(mid(runes, 32, 6))
	return sink.BeginStatement(extract.StatementHeader{
		IBAN:        strings.TrimSpace(mid(runes, 292, 18)),
		PeriodStart: start,
		PeriodEnd:   end,
	})
}

// primary fills a row from a T10 transaction record's fixed offsets.
func primary(line string, row *rowState) {
	runes := []rune(line)

	if d, ok := dates.ParseYYMMDD(mid(runes, 30, 6)); ok {
		row.date = d
	}

	cents, _ := strconv.ParseInt(strings.TrimSpace(mid(runes, 88, 18)), 10, 64)
	if mid(runes, 87, 1) == "-" {
		cents = -cents
	}
	row.cents = cents

	row.ref = strings.TrimSpace(mid(runes, 159, 20))
	row.archive = simplify(mid(runes, 12, 18))
	row.desc = simplify(mid(runes, 108, 35))
	if row.desc == "" {
		row.desc = simplify(mid(runes, 52, 35))
	}
	row.level = lineLevel(line)
}

// supplement folds a T11 record into the pending row by subtype.
func supplement(line string, row *rowState) {
	runes := []rune(line)
	payload := mid(runes, 8, 35)

	switch mid(runes, 6, 2) {
	case "11":
		// Counterparty record: IBAN, plus an ISO reference that
		// overrides the plain one when present.
		row.iban = simplify(mid(runes, 43, 35))
		if strings.HasPrefix(payload, "RF") {
			row.ref = simplify(payload)
		}
	case "00":
		// Free text. Some banks misuse this record for the ISO
		// reference, so an RF-shaped payload overrides instead.
		if strings.HasPrefix(payload, "RF") {
			row.ref = simplify(payload)
		} else {
			appendDesc(row, mid(runes, 8, len(runes)))
		}
	case "01":
		// Unit count for multi-item entries.
		n, _ := strconv.Atoi(strings.TrimSpace(mid(runes, 8, 8)))
		appendDesc(row, fmt.Sprintf("%d units", n))
	}
}

func appendDesc(row *rowState, s string) {
	s = strings.TrimRight(s, " ")
	if s == "" {
		return
	}
	if row.desc != "" {
		row.desc += " "
	}
	row.desc += s
}

// lineLevel reads the nesting level code; blank or out-of-range reads are 0.
func lineLevel(line string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(mid([]rune(line), 187, 1)))
	return n
}

// mid extracts n characters at pos. Reads beyond the line yield the empty
// remainder instead of failing: short lines are a normal malformation.
func mid(runes []rune, pos, n int) string {
	if pos >= len(runes) {
		return ""
	}
	end := pos + n
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[pos:end])
}

func simplify(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
