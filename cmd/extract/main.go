// Command extract runs the extraction pipeline over a single document and
// writes the recovered records as CSV.
//
// Usage:
//
//	extract -in statement.pdf -out rows.csv
//	extract -in statement.tito -out rows.csv -rows=false
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/joho/godotenv"

	"github.com/FACorreiaa/ledger-extract/internal/domain/extract"
	"github.com/FACorreiaa/ledger-extract/internal/domain/extract/service"
	"github.com/FACorreiaa/ledger-extract/pkg/config"
	"github.com/FACorreiaa/ledger-extract/pkg/money"
)

const dateLayout = "02.01.2006"

// csvRecord is the flat export shape for both statement rows and invoices.
type csvRecord struct {
	Kind        string `csv:"kind"`
	Date        string `csv:"date"`
	Amount      string `csv:"amount"`
	AmountCents int64  `csv:"amount_cents"`
	IBAN        string `csv:"iban"`
	Reference   string `csv:"reference"`
	ArchiveID   string `csv:"archive_id"`
	Description string `csv:"description"`
	Payee       string `csv:"payee"`
	DueDate     string `csv:"due_date"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "extract:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var (
		inPath     = flag.String("in", "", "input document (PDF or TITO)")
		outPath    = flag.String("out", "", "CSV output path (default: stdout)")
		importRows = flag.Bool("rows", true, "emit individual statement rows")
		ambiguous  = flag.Bool("ambiguous-invoice", true, "treat documents that merely mention an invoice as invoices")
		logLevel   = flag.String("log-level", "", "override LOG_LEVEL")
	)
	flag.Parse()

	if *inPath == "" {
		return fmt.Errorf("missing -in")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Import.ImportStatementRows = *importRows
	cfg.Import.TreatAmbiguousAsInvoice = *ambiguous
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	}))

	data, err := os.ReadFile(*inPath)
	if err != nil {
		return err
	}

	collector := &extract.Collector{}
	svc := service.New(logger, cfg.Import)
	outcome := svc.Import(context.Background(), data, collector)

	records, total := flatten(collector)
	if err := writeCSV(records, *outPath); err != nil {
		return err
	}

	logger.Info("done",
		"job_id", outcome.JobID,
		"kind", outcome.Kind.String(),
		"records", len(records),
		"total", money.FormatCents(total))
	return nil
}

func flatten(c *extract.Collector) ([]*csvRecord, int64) {
	var records []*csvRecord
	var total int64

	for _, row := range c.Rows {
		records = append(records, &csvRecord{
			Kind:        "statement-row",
			Date:        row.PostingDate.Format(dateLayout),
			Amount:      money.FormatCents(row.AmountCents),
			AmountCents: row.AmountCents,
			IBAN:        row.IBAN,
			Reference:   row.Reference,
			ArchiveID:   row.ArchiveID,
			Description: row.Description,
		})
		total += row.AmountCents
	}
	for _, inv := range c.Invoices {
		rec := &csvRecord{
			Kind:        "invoice",
			Amount:      money.FormatCents(inv.AmountCents),
			AmountCents: inv.AmountCents,
			IBAN:        inv.IBAN,
			Reference:   inv.Reference,
			Payee:       inv.Payee,
		}
		if !inv.InvoiceDate.IsZero() {
			rec.Date = inv.InvoiceDate.Format(dateLayout)
		}
		if !inv.DueDate.IsZero() {
			rec.DueDate = inv.DueDate.Format(dateLayout)
		}
		records = append(records, rec)
		total += inv.AmountCents
	}
	return records, total
}

func writeCSV(records []*csvRecord, path string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return gocsv.Marshal(records, out)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
