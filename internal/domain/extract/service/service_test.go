package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/ledger-extract/internal/domain/extract"
	"github.com/FACorreiaa/ledger-extract/internal/domain/extract/pdfread"
	"github.com/FACorreiaa/ledger-extract/pkg/config"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newService(cfg config.ImportConfig) *Service {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
}

func word(text string, x, y float64) *pdfread.Word {
	return &pdfread.Word{Text: text, X: x, Y: y}
}

// document builds a one-page text layer where one point equals one grid cell.
func document(words ...*pdfread.Word) *pdfread.Document {
	return &pdfread.Document{Pages: []*pdfread.Page{
		{Width: 100, Height: 200, Words: words},
	}}
}

func fixedRecord(width int, fields map[int]string) string {
	runes := []rune(strings.Repeat(" ", width))
	for pos, s := range fields {
		copy(runes[pos:], []rune(s))
	}
	return string(runes)
}

func titoFile() []byte {
	header := fixedRecord(310, map[int]string{
		0:   "T00",
		26:  "260101",
		32:  "260131",
		292: "FI2112345600000785",
	})
	row := fixedRecord(190, map[int]string{
		0:  "T10",
		12: "123456789012345678",
		30: "260115",
		88: "000000000000012345",
	})
	return []byte(header + "\r\n" + row)
}

func TestImportTITO(t *testing.T) {
	svc := newService(config.ImportConfig{ImportStatementRows: true})

	var sink extract.Collector
	outcome := svc.Import(context.Background(), titoFile(), &sink)

	assert.Equal(t, extract.KindStatement, outcome.Kind)
	assert.Equal(t, 1, outcome.RowsEmitted)
	require.NotNil(t, sink.Header)
	assert.Equal(t, "FI2112345600000785", sink.Header.IBAN)
	require.Len(t, sink.Rows, 1)
	assert.Equal(t, int64(12345), sink.Rows[0].AmountCents)
}

// Identical bytes must yield an identical ordered sequence of emissions.
func TestImportIsDeterministic(t *testing.T) {
	svc := newService(config.ImportConfig{ImportStatementRows: true})
	data := titoFile()

	var first, second extract.Collector
	a := svc.Import(context.Background(), data, &first)
	b := svc.Import(context.Background(), data, &second)

	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, first.Header, second.Header)
	assert.Equal(t, a.Kind, b.Kind)
	assert.Equal(t, a.RowsEmitted, b.RowsEmitted)
	assert.NotEqual(t, a.JobID, b.JobID)
}

func TestImportUnknownFormat(t *testing.T) {
	svc := newService(config.ImportConfig{ImportStatementRows: true})

	var sink extract.Collector
	outcome := svc.Import(context.Background(), []byte("not a document"), &sink)

	assert.Equal(t, extract.KindNone, outcome.Kind)
	assert.Zero(t, outcome.RowsEmitted)
	assert.Zero(t, outcome.InvoicesEmitted)
	assert.Nil(t, sink.Header)
}

func TestImportMalformedPDF(t *testing.T) {
	svc := newService(config.ImportConfig{})

	var sink extract.Collector
	outcome := svc.Import(context.Background(), []byte("%PDF-1.4 truncated"), &sink)

	assert.Equal(t, extract.KindNone, outcome.Kind)
	assert.Empty(t, sink.Invoices)
}

func TestImportDocumentCreditNote(t *testing.T) {
	svc := newService(config.ImportConfig{TreatAmbiguousAsInvoice: true})
	doc := document(
		word("Hyvityslasku", 10, 5),
		word("250,00", 40, 20),
	)

	var sink extract.Collector
	outcome := svc.ImportDocument(context.Background(), doc, &sink)

	// Recognized, never auto-imported.
	assert.Equal(t, extract.KindCreditNote, outcome.Kind)
	assert.Empty(t, sink.Invoices)
	assert.Zero(t, outcome.InvoicesEmitted)
}

func TestImportDocumentInvoice(t *testing.T) {
	doc := document(
		word("Lasku", 10, 5),
		word("250,00", 40, 20),
	)

	t.Run("imported when ambiguous input is allowed", func(t *testing.T) {
		svc := newService(config.ImportConfig{TreatAmbiguousAsInvoice: true})

		var sink extract.Collector
		outcome := svc.ImportDocument(context.Background(), doc, &sink)

		assert.Equal(t, extract.KindInvoice, outcome.Kind)
		assert.Equal(t, 1, outcome.InvoicesEmitted)
		require.Len(t, sink.Invoices, 1)
		assert.Equal(t, int64(25000), sink.Invoices[0].AmountCents)
	})

	t.Run("skipped otherwise", func(t *testing.T) {
		svc := newService(config.ImportConfig{})

		var sink extract.Collector
		outcome := svc.ImportDocument(context.Background(), doc, &sink)

		assert.Equal(t, extract.KindNone, outcome.Kind)
		assert.Empty(t, sink.Invoices)
	})
}

func statementDocument() *pdfread.Document {
	return document(
		word("Tiliote", 5, 5),
		word("FI2112345600000785", 5, 7),
		word("1.1.2026", 5, 9),
		word("-", 14, 9),
		word("31.1.2026", 20, 9),
		word("Arkistointitunnus", 40, 20),
		word("12.1.2026", 5, 22),
		word("123456789012345678", 40, 22),
		word("100,00", 70, 22),
	)
}

func TestImportDocumentStatement(t *testing.T) {
	svc := newService(config.ImportConfig{ImportStatementRows: true})

	var sink extract.Collector
	outcome := svc.ImportDocument(context.Background(), statementDocument(), &sink)

	assert.Equal(t, extract.KindStatement, outcome.Kind)
	assert.Equal(t, 1, outcome.RowsEmitted)

	require.NotNil(t, sink.Header)
	assert.Equal(t, "FI2112345600000785", sink.Header.IBAN)
	assert.Equal(t, day(2026, time.January, 1), sink.Header.PeriodStart)
	assert.Equal(t, day(2026, time.January, 31), sink.Header.PeriodEnd)

	require.Len(t, sink.Rows, 1)
	assert.Equal(t, day(2026, time.January, 12), sink.Rows[0].PostingDate)
	assert.Equal(t, int64(10000), sink.Rows[0].AmountCents)
	assert.Equal(t, "123456789012345678", sink.Rows[0].ArchiveID)
}

func TestImportDocumentStatementRowGates(t *testing.T) {
	t.Run("rows disabled by config", func(t *testing.T) {
		svc := newService(config.ImportConfig{})

		var sink extract.Collector
		outcome := svc.ImportDocument(context.Background(), statementDocument(), &sink)

		assert.Equal(t, extract.KindStatement, outcome.Kind)
		assert.Zero(t, outcome.RowsEmitted)
		require.NotNil(t, sink.Header)
		assert.Empty(t, sink.Rows)
	})

	t.Run("sink declines rows", func(t *testing.T) {
		svc := newService(config.ImportConfig{ImportStatementRows: true})

		sink := extract.Collector{RefuseRows: true}
		outcome := svc.ImportDocument(context.Background(), statementDocument(), &sink)

		assert.Zero(t, outcome.RowsEmitted)
		require.NotNil(t, sink.Header)
		assert.Empty(t, sink.Rows)
	})
}

func TestImportDocumentStatementWithoutAccount(t *testing.T) {
	svc := newService(config.ImportConfig{ImportStatementRows: true})
	doc := document(word("Tiliote", 5, 5))

	var sink extract.Collector
	outcome := svc.ImportDocument(context.Background(), doc, &sink)

	assert.Equal(t, extract.KindStatement, outcome.Kind)
	assert.Zero(t, outcome.RowsEmitted)
	assert.Nil(t, sink.Header)
}

func TestImportDocumentEmpty(t *testing.T) {
	svc := newService(config.ImportConfig{TreatAmbiguousAsInvoice: true, ImportStatementRows: true})

	var sink extract.Collector
	outcome := svc.ImportDocument(context.Background(), &pdfread.Document{}, &sink)

	assert.Equal(t, extract.KindNone, outcome.Kind)
	assert.Zero(t, outcome.RowsEmitted)
	assert.Zero(t, outcome.InvoicesEmitted)
}
