package pdfread

import (
	"strings"
	"unicode"

	"github.com/FACorreiaa/ledger-extract/internal/domain/extract/textgrid"
)

// BuildGrid flattens a document into the quantized fragment grid. Each page
// is divided into 100 logical columns and 200 logical rows; every unconsumed
// word starts a fragment that absorbs its whole next-word chain, so a chain
// is stored once, at the position of its first word.
func BuildGrid(doc *Document) *textgrid.Grid {
	grid := textgrid.New()
	if doc == nil {
		return grid
	}

	for pageIdx, page := range doc.Pages {
		if page == nil || page.Width <= 0 || page.Height <= 0 {
			continue
		}
		colScale := 100.0 / page.Width
		rowScale := 200.0 / page.Height

		consumed := make(map[*Word]bool, len(page.Words))

		for _, word := range page.Words {
			if word == nil || consumed[word] {
				continue
			}

			var sb strings.Builder
			sb.WriteString(word.Text)
			for next := word.Next; next != nil; next = next.Next {
				consumed[next] = true
				sb.WriteByte(' ')
				sb.WriteString(next.Text)
			}

			key := textgrid.MakeKey(pageIdx,
				int(word.Y*rowScale),
				int(word.X*colScale))
			grid.Put(key, tightenNumbers(collapseSpaces(sb.String())))
		}
	}
	return grid
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// tightenNumbers removes whitespace between two digits, or between a digit
// and a +/- sign. Account numbers and amounts are frequently split across
// word boxes by the rendering layout ("12 345,67", "FI21 1234"); rejoining
// them here is what makes the checksum validators usable downstream.
func tightenNumbers(s string) string {
	runes := []rune(s)
	var out []rune
	for i, r := range runes {
		if i > 0 && i < len(runes)-1 && unicode.IsSpace(r) {
			before := runes[i-1]
			after := runes[i+1]
			if (unicode.IsDigit(before) || unicode.IsDigit(after)) &&
				(unicode.IsDigit(before) || before == '-' || before == '+') &&
				(unicode.IsDigit(after) || after == '-' || after == '+') {
				continue
			}
		}
		out = append(out, r)
	}
	return string(out)
}
