package pdfread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/ledger-extract/internal/domain/extract/textgrid"
)

// page dimensions chosen so one point maps to exactly one grid bucket.
func bucketPage(words ...*Word) *Page {
	return &Page{Width: 100, Height: 200, Words: words}
}

func TestBuildGridChainsWords(t *testing.T) {
	w2 := &Word{Text: "tilinumero", X: 25, Y: 40}
	w1 := &Word{Text: "Saajan", X: 10, Y: 40, Next: w2}

	doc := &Document{Pages: []*Page{bucketPage(w1, w2)}}
	grid := BuildGrid(doc)

	// w2 is consumed by w1's chain, so only one fragment exists.
	require.Equal(t, 1, grid.Len())
	assert.Equal(t, "Saajan tilinumero", grid.Text(textgrid.MakeKey(0, 40, 10)))
}

func TestBuildGridTightensSplitNumbers(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  string
	}{
		{"split IBAN", []string{"FI21", "1234", "5600", "0007", "85"}, "FI2112345600000785"},
		{"grouped amount", []string{"12", "345,67"}, "12345,67"},
		{"sign kept with digits", []string{"-", "100,00"}, "-100,00"},
		{"words keep their spaces", []string{"Saajan", "tilinumero"}, "Saajan tilinumero"},
		{"mixed", []string{"Viite", "12", "3456", "1"}, "Viite 1234561"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var head *Word
			var prev *Word
			for i, text := range tt.words {
				w := &Word{Text: text, X: float64(10 + i*8), Y: 40}
				if prev != nil {
					prev.Next = w
				} else {
					head = w
				}
				prev = w
			}

			grid := BuildGrid(&Document{Pages: []*Page{bucketPage(head)}})
			require.Equal(t, 1, grid.Len())
			assert.Equal(t, tt.want, grid.Text(textgrid.MakeKey(0, 40, 10)))
		})
	}
}

func TestBuildGridQuantizesToPageRatio(t *testing.T) {
	// A4-sized page: 595x842 points.
	page := &Page{
		Width:  595,
		Height: 842,
		Words: []*Word{
			{Text: "keskella", X: 300, Y: 425},
		},
	}
	grid := BuildGrid(&Document{Pages: []*Page{page}})

	k, ok := grid.Anywhere("keskella")
	require.True(t, ok)
	assert.Equal(t, 100, k.Row())
	assert.Equal(t, 50, k.Col())
}

func TestBuildGridSkipsDegeneratePages(t *testing.T) {
	doc := &Document{Pages: []*Page{
		nil,
		{Width: 0, Height: 842},
		bucketPage(&Word{Text: "sivu", X: 5, Y: 5}),
	}}
	grid := BuildGrid(doc)

	assert.Equal(t, 1, grid.Len())
	// The surviving word keeps its own page index.
	k, ok := grid.Anywhere("sivu")
	require.True(t, ok)
	assert.Equal(t, 2, k.Page())

	assert.Equal(t, 0, BuildGrid(nil).Len())
}
