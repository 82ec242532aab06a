// Package extract defines the normalized record shapes produced by the
// extraction core and the callback surface through which they are delivered.
// Both the PDF path and the fixed-width statement path emit through the same
// Sink, so the consuming ledger importer never sees where a record came from.
package extract

import (
	"time"

	"github.com/google/uuid"
)

// StatementHeader identifies the account and period of a bank statement.
// It is established once per document, before any rows are accepted.
type StatementHeader struct {
	IBAN        string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// StatementRow is one settled bank transaction. AmountCents is never zero in
// an emitted row; optional fields are empty strings or the zero time.
type StatementRow struct {
	PostingDate time.Time
	AmountCents int64
	IBAN        string
	Reference   string
	ArchiveID   string
	Description string
}

// Invoice is a purchase-invoice candidate assembled from a document's text.
// Any field except AmountCents may be unset.
type Invoice struct {
	AmountCents  int64
	InvoiceDate  time.Time
	DeliveryDate time.Time
	DueDate      time.Time
	Reference    string
	IBAN         string
	Payee        string
}

// Sink receives extraction results. Calls are synchronous and may carry
// side effects; the core does not buffer or retry them.
type Sink interface {
	// BeginStatement registers the statement header. Returning false
	// suppresses row emission for the rest of the document.
	BeginStatement(h StatementHeader) bool
	EmitStatementRow(row StatementRow)
	EmitInvoice(inv Invoice)
}

// Kind is the classification decided for one input document.
type Kind int

const (
	KindNone Kind = iota
	KindCreditNote
	KindInvoice
	KindStatement
)

func (k Kind) String() string {
	switch k {
	case KindCreditNote:
		return "credit-note"
	case KindInvoice:
		return "invoice"
	case KindStatement:
		return "statement"
	default:
		return "none"
	}
}

// Outcome summarizes one import call. "Nothing recognized" and "recognized
// but empty" both surface as zero emitted records; callers must not read
// more into the distinction than the Kind value offers.
type Outcome struct {
	JobID           uuid.UUID
	Kind            Kind
	RowsEmitted     int
	InvoicesEmitted int
}

// Collector is a Sink that appends everything it receives in order.
// Used by tests and the CLI.
type Collector struct {
	Header   *StatementHeader
	Rows     []StatementRow
	Invoices []Invoice
	// RefuseRows makes BeginStatement return false, mimicking a consumer
	// that registers the header but declines row import.
	RefuseRows bool
}

func (c *Collector) BeginStatement(h StatementHeader) bool {
	hc := h
	c.Header = &hc
	return !c.RefuseRows
}

func (c *Collector) EmitStatementRow(row StatementRow) {
	c.Rows = append(c.Rows, row)
}

func (c *Collector) EmitInvoice(inv Invoice) {
	c.Invoices = append(c.Invoices, inv)
}
