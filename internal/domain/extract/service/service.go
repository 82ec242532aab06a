// Package service orchestrates the extraction pipeline: it sniffs the input
// format, classifies PDF documents by keyword, and dispatches to the invoice
// extractor, the statement row grouper or the fixed-width parser. The whole
// pipeline is a synchronous batch transformation over one document; nothing
// is shared between calls.
package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/ledger-extract/internal/domain/extract"
	"github.com/FACorreiaa/ledger-extract/internal/domain/extract/invoice"
	"github.com/FACorreiaa/ledger-extract/internal/domain/extract/pdfread"
	"github.com/FACorreiaa/ledger-extract/internal/domain/extract/sniffer"
	"github.com/FACorreiaa/ledger-extract/internal/domain/extract/statement"
	"github.com/FACorreiaa/ledger-extract/internal/domain/extract/textgrid"
	"github.com/FACorreiaa/ledger-extract/internal/domain/extract/tito"
	"github.com/FACorreiaa/ledger-extract/pkg/config"
	"github.com/FACorreiaa/ledger-extract/pkg/dates"
	"github.com/FACorreiaa/ledger-extract/pkg/validate"
)

// Classification keywords looked for in the top 30 rows of page one.
// Order matters: "hyvityslasku"/"credit invoice" contain the invoice
// keyword and must win.
var (
	creditNoteKeywords = []string{"hyvityslasku", "credit invoice", "credit note"}
	invoiceKeywords    = []string{"lasku", "invoice"}
	statementKeywords  = []string{"tiliote", "statement"}
)

var (
	ibanTokenRe = regexp.MustCompile(`\b[A-Z]{2}[0-9]{2}[0-9A-Za-z]{6,30}\b`)
	periodRe    = regexp.MustCompile(`([0-9]{1,2})\.([0-9]{1,2})\.([0-9]{4})?\W{1,3}([0-9]{1,2})\.([0-9]{1,2})\.([0-9]{4})`)
	entryDateRe = regexp.MustCompile(`(?i)(kirjauspäivä|entry date)\W+[0-9]{1,2}\.[0-9]{1,2}\.`)
)

// Service runs best-effort financial record extraction. It never returns an
// error for unrecognized or unreadable input: the Outcome's zero counts are
// the only signal, by design.
type Service struct {
	logger *slog.Logger
	cfg    config.ImportConfig
}

func New(logger *slog.Logger, cfg config.ImportConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, cfg: cfg}
}

// Import sniffs raw bytes and runs the matching pipeline, emitting records
// through sink. Identical input bytes produce an identical ordered sequence
// of emissions.
func (s *Service) Import(ctx context.Context, data []byte, sink extract.Sink) extract.Outcome {
	outcome := extract.Outcome{JobID: uuid.New()}

	format := sniffer.Detect(data)
	log := s.logger.With("job_id", outcome.JobID, "format", format.String(), "bytes", len(data))

	switch format {
	case sniffer.FormatTITO:
		outcome.Kind = extract.KindStatement
		outcome.RowsEmitted = tito.Parse(data, sink, s.cfg.ImportStatementRows)

	case sniffer.FormatPDF:
		doc, err := pdfread.Open(data)
		if err != nil {
			// Unreadable document reads as zero fragments.
			log.WarnContext(ctx, "pdf could not be opened", "error", err)
			return outcome
		}
		outcome = s.importDocument(ctx, doc, sink, outcome)

	default:
		log.DebugContext(ctx, "unrecognized input format")
	}

	log.InfoContext(ctx, "import finished",
		"kind", outcome.Kind.String(),
		"rows", outcome.RowsEmitted,
		"invoices", outcome.InvoicesEmitted)
	return outcome
}

// ImportDocument runs the PDF pipeline over an already-opened document.
// Embedders with their own text-layer source can call this directly.
func (s *Service) ImportDocument(ctx context.Context, doc *pdfread.Document, sink extract.Sink) extract.Outcome {
	return s.importDocument(ctx, doc, sink, extract.Outcome{JobID: uuid.New()})
}

func (s *Service) importDocument(ctx context.Context, doc *pdfread.Document, sink extract.Sink, outcome extract.Outcome) extract.Outcome {
	grid := pdfread.BuildGrid(doc)
	if grid.Len() == 0 {
		return outcome
	}

	switch {
	case s.keywordInTop(grid, creditNoteKeywords):
		// Credit notes are deliberately not auto-imported.
		outcome.Kind = extract.KindCreditNote

	case s.keywordInTop(grid, invoiceKeywords) && s.cfg.TreatAmbiguousAsInvoice:
		outcome.Kind = extract.KindInvoice
		sink.EmitInvoice(invoice.Extract(grid))
		outcome.InvoicesEmitted = 1

	case s.keywordInTop(grid, statementKeywords):
		outcome.Kind = extract.KindStatement
		outcome.RowsEmitted = s.importStatement(ctx, grid, sink)
	}
	return outcome
}

func (s *Service) keywordInTop(grid *textgrid.Grid, keywords []string) bool {
	for _, kw := range keywords {
		if _, ok := grid.FindFirst(kw, 0, 30, 0, 99); ok {
			return true
		}
	}
	return false
}

// importStatement locates the statement header, registers it, and runs the
// row grouper when row import is enabled.
func (s *Service) importStatement(ctx context.Context, grid *textgrid.Grid, sink extract.Sink) int {
	joined := grid.Joined()

	// The account is the first IBAN-shaped token that validates. RF
	// creditor references share the shape and are skipped.
	var iban string
	for _, candidate := range ibanTokenRe.FindAllString(joined, -1) {
		if strings.HasPrefix(candidate, "RF") {
			continue
		}
		if validate.IBAN(candidate).Acceptable {
			iban = candidate
			break
		}
	}
	if iban == "" {
		return 0
	}

	start, end := statementPeriod(joined)
	cont := sink.BeginStatement(extract.StatementHeader{
		IBAN:        iban,
		PeriodStart: start,
		PeriodEnd:   end,
	})
	if !cont || !s.cfg.ImportStatementRows {
		return 0
	}

	year := 0
	if !end.IsZero() {
		year = end.Year()
	}
	grouper := statement.Grouper{
		Year: year,
		// Dedicated entry-date label rows mean column dates must not be
		// carried downward across row boundaries.
		DatedRows: entryDateRe.MatchString(joined),
	}
	rows := 0
	grouper.Emit = func(row extract.StatementRow) {
		sink.EmitStatementRow(row)
		rows++
	}
	grouper.Run(grid)

	s.logger.DebugContext(ctx, "statement rows grouped", "iban", iban, "rows", rows)
	return rows
}

// statementPeriod finds the first pair of adjacent dates; the first date may
// omit its year and borrow the second's.
func statementPeriod(joined string) (start, end time.Time) {
	m := periodRe.FindStringSubmatch(joined)
	if m == nil {
		return start, end
	}
	year1 := m[3]
	if year1 == "" {
		year1 = m[6]
	}
	start, _ = dates.ParseDMY(m[1]+"."+m[2]+"."+year1, 0)
	end, _ = dates.ParseDMY(m[4]+"."+m[5]+"."+m[6], 0)
	return start, end
}
