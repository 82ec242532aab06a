package pdfread

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ledongthuc/pdf"
)

// Default page size (A4 in points) when no MediaBox can be resolved.
const (
	defaultPageWidth  = 595.0
	defaultPageHeight = 842.0
)

// Geometry tolerances for reassembling words from the character runs the
// text layer yields. Gaps are measured relative to the font size.
const (
	lineTolerance = 2.0 // max Y drift within one text line, points
	glyphGapRatio = 0.3 // gap below this fraction of font size joins glyphs
	wordGapRatio  = 1.5 // gap below this fraction of font size links words
)

// Open reads a PDF's text layer into a Document. A page whose content
// cannot be decoded is skipped; an unreadable file returns an error, which
// callers treat as "nothing recognized" rather than a failure.
func Open(data []byte) (doc *Document, err error) {
	// The underlying parser panics on some malformed cross-reference
	// tables instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	doc = &Document{}
	for i := 1; i <= reader.NumPage(); i++ {
		doc.Pages = append(doc.Pages, readPage(reader.Page(i)))
	}
	return doc, nil
}

// readPage converts one page into positioned words. The text layer of a
// malformed page can panic deep in the content-stream parser, so the page is
// dropped on recover.
func readPage(p pdf.Page) (page *Page) {
	defer func() {
		if r := recover(); r != nil {
			page = nil
		}
	}()

	if p.V.IsNull() {
		return nil
	}

	width, height := pageSize(p)
	page = &Page{Width: width, Height: height}

	texts := p.Content().Text
	if len(texts) == 0 {
		return page
	}
	page.Words = assembleWords(texts, height)
	return page
}

// pageSize resolves the MediaBox, walking up the page tree for inherited
// boxes, with an A4 fallback.
func pageSize(p pdf.Page) (float64, float64) {
	box := p.V.Key("MediaBox")
	for parent := p.V.Key("Parent"); box.IsNull() && !parent.IsNull(); parent = parent.Key("Parent") {
		box = parent.Key("MediaBox")
	}
	if box.Len() == 4 {
		w := box.Index(2).Float64() - box.Index(0).Float64()
		h := box.Index(3).Float64() - box.Index(1).Float64()
		if w > 0 && h > 0 {
			return w, h
		}
	}
	return defaultPageWidth, defaultPageHeight
}

// assembleWords groups character runs into lines by Y, merges adjacent runs
// into words, and links neighboring words on a line the way a reader would
// continue. PDF coordinates grow upward; Word.Y is flipped to grow downward.
func assembleWords(texts []pdf.Text, pageHeight float64) []*Word {
	runs := make([]pdf.Text, len(texts))
	copy(runs, texts)
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Y != runs[j].Y {
			return runs[i].Y > runs[j].Y // top of page first
		}
		return runs[i].X < runs[j].X
	})

	var words []*Word
	var line []pdf.Text
	lineY := runs[0].Y

	flush := func() {
		if len(line) > 0 {
			words = append(words, lineWords(line, pageHeight)...)
			line = line[:0]
		}
	}

	for _, t := range runs {
		if t.S == "" {
			continue
		}
		if abs(t.Y-lineY) > lineTolerance {
			flush()
			lineY = t.Y
		}
		line = append(line, t)
	}
	flush()
	return words
}

// lineWords merges a line's character runs into words and chains the words
// left to right while the gap stays small enough to read as one phrase.
func lineWords(line []pdf.Text, pageHeight float64) []*Word {
	sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })

	var words []*Word
	var sb bytes.Buffer
	var start, endX, size float64

	flushWord := func() {
		if sb.Len() == 0 {
			return
		}
		words = append(words, &Word{
			Text: sb.String(),
			X:    start,
			Y:    pageHeight - line[0].Y,
		})
		sb.Reset()
	}

	for _, t := range line {
		fontSize := t.FontSize
		if fontSize <= 0 {
			fontSize = 10
		}
		if sb.Len() == 0 {
			start, size = t.X, fontSize
		} else if t.X-endX > glyphGapRatio*size {
			flushWord()
			start, size = t.X, fontSize
		}
		sb.WriteString(t.S)
		endX = t.X + t.W
		if fontSize > size {
			size = fontSize
		}
	}
	flushWord()

	// Link words separated by a modest gap; a wide gap reads as a new
	// column and breaks the chain.
	for i := 0; i+1 < len(words); i++ {
		gap := words[i+1].X - wordEnd(line, words[i], words[i+1])
		if gap <= wordGapRatio*maxf(sizeOf(line, words[i]), 1) {
			words[i].Next = words[i+1]
		}
	}
	return words
}

// wordEnd estimates where a word's ink stops: the start of the next word's
// X minus the measured gap is unavailable, so the nearest run end is used.
func wordEnd(line []pdf.Text, w, next *Word) float64 {
	end := w.X
	for _, t := range line {
		if t.X >= w.X && t.X < next.X && t.X+t.W > end {
			end = t.X + t.W
		}
	}
	return end
}

func sizeOf(line []pdf.Text, w *Word) float64 {
	for _, t := range line {
		if t.X >= w.X {
			if t.FontSize > 0 {
				return t.FontSize
			}
			break
		}
	}
	return 10
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
