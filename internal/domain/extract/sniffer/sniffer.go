// Package sniffer detects the wire format of an uploaded document so the
// import service can route it to the right parser.
package sniffer

import "bytes"

// Format identifies a supported input format.
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatTITO
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatTITO:
		return "tito"
	default:
		return "unknown"
	}
}

var (
	pdfMagic   = []byte("%PDF")
	titoHeader = []byte("T00")
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
)

// Detect classifies raw bytes. PDF files carry the %PDF magic; a TITO
// statement starts with its T00 header record. Anything else is unknown and
// yields zero emissions downstream.
func Detect(data []byte) Format {
	data = bytes.TrimPrefix(data, utf8BOM)
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return FormatPDF
	case bytes.HasPrefix(data, titoHeader):
		return FormatTITO
	default:
		return FormatUnknown
	}
}
