package parser

import (
	"regexp"
	"strings"
)

// MarkerKind is the classifier's verdict on what a line opens.
type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerPart
	MarkerAnnex
	MarkerDefHeading
	MarkerDefinition
	MarkerParagraph
	MarkerSubParagraph
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerPart:
		return "part"
	case MarkerAnnex:
		return "annex"
	case MarkerDefHeading:
		return "definition-heading"
	case MarkerDefinition:
		return "definition"
	case MarkerParagraph:
		return "paragraph"
	case MarkerSubParagraph:
		return "sub-paragraph"
	}
	return "none"
}

// Marker is a classified line: what structural unit it opens, the literal
// numbering token captured from the line, and the trailing text. The token
// is not yet validated for sequence continuity.
type Marker struct {
	Kind  MarkerKind
	Token string
	Rest  string
}

// MAS notices head top-level divisions "PART I"; some older circulars use
// "Division" or "Chapter". Annexes are lettered.
var (
	partRe  = regexp.MustCompile(`^(?i:PART|DIVISION|CHAPTER)\s+([IVXLCDM]+|\d+)\b[.:\x{2013}-]?\s*(.*)$`)
	annexRe = regexp.MustCompile(`^(?i:ANNEX)\s+([A-Z]|\d+)\b[.:\x{2013}-]?\s*(.*)$`)

	// A quoted or emphasized term immediately followed by "means".
	defTermRe = regexp.MustCompile(`^["\x{201c}'\x{2018}]([^"\x{201c}\x{201d}'\x{2018}\x{2019}]+)["\x{201d}'\x{2019}]\s+means\s+(.*)$`)

	// "1. text" or "3.4 text". The trailing word requirement keeps bare
	// numerals (footnote markers, figures) out of the structure.
	paraRe       = regexp.MustCompile(`^(\d+)\.\s+(\S.*)$`)
	paraDottedRe = regexp.MustCompile(`^(\d+\.\d+)\.?\s+(\S.*)$`)

	subParaRe = regexp.MustCompile(`^\(([a-z]+)\)\s+(\S.*)$`)
)

// Closed vocabulary of headings that open a definitions region.
var definitionHeadings = map[string]bool{
	"definitions":    true,
	"interpretation": true,
}

// classify decides whether line opens a new structural unit. Pure function:
// candidate patterns are evaluated in fixed priority order and the first
// confident match wins. inDefinitions reports whether a definitions region
// is currently open, which enables individual definition-entry matching.
func classify(line string, inDefinitions bool) Marker {
	if m := partRe.FindStringSubmatch(line); m != nil {
		return Marker{Kind: MarkerPart, Token: m[1], Rest: m[2]}
	}
	if m := annexRe.FindStringSubmatch(line); m != nil {
		return Marker{Kind: MarkerAnnex, Token: m[1], Rest: m[2]}
	}
	if definitionHeadings[normalizeHeading(line)] {
		return Marker{Kind: MarkerDefHeading, Token: normalizeHeading(line), Rest: ""}
	}
	if inDefinitions {
		if m := defTermRe.FindStringSubmatch(line); m != nil {
			return Marker{Kind: MarkerDefinition, Token: slugifyTerm(m[1]), Rest: m[2]}
		}
	}
	if m := paraDottedRe.FindStringSubmatch(line); m != nil {
		return Marker{Kind: MarkerParagraph, Token: m[1], Rest: m[2]}
	}
	if m := paraRe.FindStringSubmatch(line); m != nil {
		return Marker{Kind: MarkerParagraph, Token: m[1], Rest: m[2]}
	}
	if m := subParaRe.FindStringSubmatch(line); m != nil {
		return Marker{Kind: MarkerSubParagraph, Token: m[1], Rest: m[2]}
	}
	return Marker{Kind: MarkerNone}
}

// normalizeHeading lowercases and strips trailing punctuation so that
// "Definitions:" and "DEFINITIONS" both hit the closed heading set.
func normalizeHeading(line string) string {
	s := strings.ToLower(strings.TrimSpace(line))
	return strings.TrimRight(s, ".:;")
}

// slugifyTerm turns a defined term into a numbering-path token.
func slugifyTerm(term string) string {
	s := strings.ToLower(strings.TrimSpace(term))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
