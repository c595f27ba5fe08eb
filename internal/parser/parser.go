// Package parser converts the flat line sequence extracted from a notice
// into a hierarchical tree of labeled nodes. There is no fixed schema:
// structure is recovered by heuristic pattern recognition over numbering
// conventions, with a continuity policy that prefers a smaller-but-correct
// tree over a larger-but-speculative one.
//
// Parsing a document is single-threaded and performs no I/O. Distinct
// documents may be parsed in parallel; each parse owns its state.
package parser

import (
	"errors"

	"masrag/internal/doctree"
)

// ErrEmptyDocument means upstream extraction produced no usable text.
var ErrEmptyDocument = errors.New("document produced no structural content")

// Input is what the text-extraction stage hands to the parser.
type Input struct {
	Filename    string
	Lines       []doctree.RawLine
	HeaderLines []doctree.RawLine
}

// ParseNotice assembles the structured document: metadata extraction, then
// a single in-order pass over the lines. Fatal errors are MetadataError and
// ErrEmptyDocument; continuity fallbacks surface as warnings on the result,
// never as failures.
func ParseNotice(in Input) (*doctree.StructuredDocument, error) {
	meta, err := ExtractMetadata(in.Filename, in.HeaderLines)
	if err != nil {
		return nil, err
	}

	b := newTreeBuilder(meta.NoticeID)
	for _, ln := range in.Lines {
		b.ingest(ln)
	}
	tree, warnings := b.finish()

	if tree.Len() == 1 && tree.Root().Text == "" {
		return nil, ErrEmptyDocument
	}

	return &doctree.StructuredDocument{
		Metadata: meta,
		RootID:   tree.RootID,
		Nodes:    tree.Nodes,
		Order:    tree.Order,
		Warnings: warnings,
	}, nil
}
