// Package pdfread recovers positioned text fragments from a PDF's text
// layer. The text layer is read with ledongthuc/pdf; pages are reduced to
// chains of words with top-left-origin coordinates, and BuildGrid quantizes
// those into the textgrid used by the field extractors. Scanned images are
// not OCRed: only text already present in the file is seen.
package pdfread

// Word is one text box on a page. Next links the visually adjacent word on
// the same line, the way a reader would continue.
type Word struct {
	Text string
	X    float64
	Y    float64 // distance from the top of the page
	Next *Word
}

// Page holds a page's dimensions in points and its word boxes.
type Page struct {
	Width  float64
	Height float64
	Words  []*Word
}

// Document is an opened, position-aware view of a PDF's text layer.
type Document struct {
	Pages []*Page
}
