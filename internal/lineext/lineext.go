// Package lineext turns uploaded notice files into the ordered line
// sequence the structural parser consumes. Extraction is per-format; the
// structural interpretation of the lines happens downstream in parser.
package lineext

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"masrag/internal/doctree"
)

// headerLineCount is how many page-one lines are offered to the metadata
// extractor as header candidates.
const headerLineCount = 10

// Result is the extraction output for one document: every line in document
// order, plus the first-page header lines used for metadata fallback.
type Result struct {
	Lines  []doctree.RawLine
	Header []doctree.RawLine
}

// Extractor converts raw document bytes into extracted lines.
type Extractor interface {
	Extract(r io.Reader, filename string) (*Result, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".docx": true,
}

// Options carries format-specific extraction settings.
type Options struct {
	// PDFFallbackPdftotext enables the pdftotext subprocess when the Go
	// PDF library cannot read a file.
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string, opts Options) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// buildResult assigns sequence and page numbers to per-page line slices and
// takes the header from the top of page one. Blank lines are dropped here so
// sequence indexes count only lines the parser will see.
func buildResult(pages [][]string) *Result {
	res := &Result{}
	seq := 0
	for pi, page := range pages {
		for _, text := range page {
			if strings.TrimSpace(text) == "" {
				continue
			}
			ln := doctree.RawLine{Text: text, Seq: seq, Page: pi + 1}
			res.Lines = append(res.Lines, ln)
			if pi == 0 && len(res.Header) < headerLineCount {
				res.Header = append(res.Header, ln)
			}
			seq++
		}
	}
	return res
}
