package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/ledger-extract/internal/domain/extract/textgrid"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// put is a shorthand for filling a grid at page 0.
func put(g *textgrid.Grid, row, col int, text string) {
	g.Put(textgrid.MakeKey(0, row, col), text)
}

func TestExtractFromPaymentSlip(t *testing.T) {
	g := textgrid.New()
	// Slip band as printed at the bottom of a Finnish giro form.
	put(g, 130, 5, "Saajan tilinumero")
	put(g, 130, 10, "IBAN")
	put(g, 132, 12, "FI21 1234 5600 0007 85")
	put(g, 140, 5, "Saaja")
	put(g, 145, 10, "Acme Oy Ab")
	put(g, 160, 50, "Viitenumero")
	put(g, 162, 55, "12 3456 1")
	put(g, 170, 50, "Eräpäivä")
	put(g, 170, 60, "15.1.2026")
	put(g, 170, 70, "Euro")
	put(g, 172, 80, "1234,56")
	// A larger number elsewhere must not displace the slip amount.
	put(g, 50, 20, "9999,99")

	inv := Extract(g)

	assert.Equal(t, "FI2112345600000785", inv.IBAN)
	assert.Equal(t, "Acme Oy Ab", inv.Payee)
	assert.Equal(t, "1234561", inv.Reference)
	assert.Equal(t, day(2026, time.January, 15), inv.DueDate)
	assert.Equal(t, int64(123456), inv.AmountCents)
}

func TestExtractPartialSlipFallsBack(t *testing.T) {
	g := textgrid.New()
	// Only two slip labels present: the structured pass must not run.
	put(g, 130, 5, "Saajan tilinumero")
	put(g, 130, 10, "IBAN")
	put(g, 132, 12, "FI2112345600000785")
	put(g, 135, 40, "250,00")

	inv := Extract(g)

	// IBAN is still found, through the whole-document heuristic.
	assert.Equal(t, "FI2112345600000785", inv.IBAN)
	assert.Equal(t, int64(25000), inv.AmountCents)
	assert.Equal(t, "Saajan tilinumero", inv.Payee)
}

func TestExtractFallbackHeuristics(t *testing.T) {
	g := textgrid.New()
	put(g, 2, 5, "Acme Oy")
	put(g, 5, 10, "Toimituspäivä")
	put(g, 5, 18, "2.5.2026")
	put(g, 10, 10, "Päivämäärä")
	put(g, 10, 18, "12.5.2026")
	put(g, 14, 10, "Eräpäivä:")
	put(g, 14, 18, "30.5.2026")
	put(g, 16, 10, "Viitenumero")
	put(g, 16, 30, "RF18539007547034")
	put(g, 18, 10, "IBAN:")
	put(g, 18, 15, "FI2112345600000785")
	put(g, 20, 40, "980,00")
	put(g, 22, 40, "1234,56")

	inv := Extract(g)

	assert.Equal(t, day(2026, time.May, 2), inv.DeliveryDate)
	assert.Equal(t, day(2026, time.May, 12), inv.InvoiceDate)
	assert.Equal(t, day(2026, time.May, 30), inv.DueDate)
	assert.Equal(t, "RF18539007547034", inv.Reference)
	assert.Equal(t, "FI2112345600000785", inv.IBAN)
	assert.Equal(t, "Acme Oy", inv.Payee)
	// The largest decimal token is taken as the total.
	assert.Equal(t, int64(123456), inv.AmountCents)
}

func TestExtractGenericDateLabel(t *testing.T) {
	t.Run("shared with due label yields no invoice date", func(t *testing.T) {
		g := textgrid.New()
		put(g, 10, 10, "Eräpvm")
		put(g, 10, 18, "12.5.2026")

		inv := Extract(g)
		assert.True(t, inv.InvoiceDate.IsZero())
		assert.Equal(t, day(2026, time.May, 12), inv.DueDate)
	})

	t.Run("distinct generic label is used", func(t *testing.T) {
		g := textgrid.New()
		put(g, 10, 10, "Pvm")
		put(g, 10, 18, "12.5.2026")
		put(g, 14, 10, "Eräpvm")
		put(g, 14, 18, "30.5.2026")

		inv := Extract(g)
		assert.Equal(t, day(2026, time.May, 12), inv.InvoiceDate)
		assert.Equal(t, day(2026, time.May, 30), inv.DueDate)
	})
}

func TestExtractEmptyGrid(t *testing.T) {
	inv := Extract(textgrid.New())
	assert.Zero(t, inv.AmountCents)
	assert.Empty(t, inv.Payee)
	assert.True(t, inv.InvoiceDate.IsZero())
}
