package parser

import (
	"strconv"
	"strings"

	"masrag/internal/doctree"
)

// decision is the numbering tracker's call on a classified marker:
// continue the structure, or treat the line as body text.
type decision int

const (
	decideBody decision = iota
	decideSibling
	decideChild
)

// frame is one open level of the parse stack. stack[0] is the root;
// a node at depth d sits at index d.
type frame struct {
	nodeID string
	kind   doctree.NodeType
	token  string
}

// accept applies the continuity policy: a numbered marker is accepted as a
// sibling when it is the expected successor of the last-seen token at some
// open depth, as a child when it restarts at the canonical first value, and
// demoted to body text otherwise. Precision over recall: a token that is
// neither a successor nor a valid restart never fabricates a node.
// Returns the decision and the depth the new node would live at.
func (b *treeBuilder) accept(m Marker) (decision, int, string) {
	switch m.Kind {
	case MarkerNone:
		return decideBody, 0, ""

	case MarkerPart, MarkerAnnex:
		// Closed-vocabulary headings cannot be spurious. They always open
		// a new top-level node.
		return decideSibling, 1, ""

	case MarkerDefHeading:
		// A definitions heading opens a region under the deepest open
		// heading (root or a Part), never under a numbered paragraph.
		d := 1
		for i := len(b.stack) - 1; i >= 0; i-- {
			k := b.stack[i].kind
			if k == doctree.Preamble || k == doctree.Part || k == doctree.Annex {
				d = i + 1
				break
			}
		}
		return decideSibling, d, ""

	case MarkerDefinition:
		if b.defsDepth == 0 {
			return decideBody, 0, "definition entry outside a definitions region"
		}
		// Entries sit at a fixed depth directly under the region heading.
		return decideSibling, b.defsDepth + 1, ""

	case MarkerParagraph:
		return b.acceptParagraph(m.Token)

	case MarkerSubParagraph:
		return b.acceptSubParagraph(m.Token)
	}
	return decideBody, 0, ""
}

func (b *treeBuilder) acceptParagraph(tok string) (decision, int, string) {
	// Sibling: the expected successor of an open paragraph token,
	// deepest level first. Definitions headings share the paragraph node
	// type but carry a non-numeric token, so they never join a sequence.
	seen := false
	for d := len(b.stack) - 1; d >= 1; d-- {
		f := b.stack[d]
		if f.kind != doctree.Paragraph || !isNumericToken(f.token) {
			continue
		}
		seen = true
		if isNumberSuccessor(f.token, tok) {
			return decideSibling, d, ""
		}
		// "3.1" directly after paragraph "3" opens a child level.
		if tok == f.token+".1" {
			return decideChild, d + 1, ""
		}
	}
	restart := lastNumberComponent(tok) == "1"
	// No competing sequence anywhere: accept even a non-"1." opener.
	// Documents that begin mid-sequence are real; with nothing open there
	// is no continuity to violate.
	if restart || !seen {
		// Numbered paragraphs never nest inside a definitions region;
		// a fresh sequence closes it and continues at the heading's level.
		if b.defsDepth > 0 {
			return decideSibling, b.defsDepth, ""
		}
		return decideChild, len(b.stack), ""
	}
	return decideBody, 0, "paragraph number breaks sequence continuity"
}

func (b *treeBuilder) acceptSubParagraph(tok string) (decision, int, string) {
	for d := len(b.stack) - 1; d >= 1; d-- {
		f := b.stack[d]
		if f.kind != doctree.SubParagraph {
			continue
		}
		if isLetterSuccessor(f.token, tok) || isRomanSuccessor(f.token, tok) {
			return decideSibling, d, ""
		}
	}
	// Restart: "(a)" or "(i)" one level under an open paragraph,
	// sub-paragraph, or definition entry ("X" means - (a) ...). A
	// sub-paragraph cannot hang directly off a heading.
	if tok == "a" || tok == "i" {
		top := b.stack[len(b.stack)-1]
		switch top.kind {
		case doctree.Paragraph, doctree.SubParagraph, doctree.Definition:
			return decideChild, len(b.stack), ""
		}
		return decideBody, 0, "sub-paragraph with no open paragraph"
	}
	return decideBody, 0, "sub-paragraph token breaks sequence continuity"
}

// isNumberSuccessor reports whether cur is the numeric successor of prev,
// for both plain ("4" after "3") and dotted ("3.5" after "3.4") tokens.
func isNumberSuccessor(prev, cur string) bool {
	pp := strings.Split(prev, ".")
	cp := strings.Split(cur, ".")
	if len(pp) != len(cp) {
		return false
	}
	for i := 0; i < len(pp)-1; i++ {
		if pp[i] != cp[i] {
			return false
		}
	}
	p, err1 := strconv.Atoi(pp[len(pp)-1])
	c, err2 := strconv.Atoi(cp[len(cp)-1])
	return err1 == nil && err2 == nil && c == p+1
}

func lastNumberComponent(tok string) string {
	parts := strings.Split(tok, ".")
	return parts[len(parts)-1]
}

// isNumericToken reports whether every dot component of tok is an integer.
func isNumericToken(tok string) bool {
	for _, p := range strings.Split(tok, ".") {
		if _, err := strconv.Atoi(p); err != nil {
			return false
		}
	}
	return true
}

// isLetterSuccessor reports whether cur follows prev alphabetically,
// carrying "z" into "aa".
func isLetterSuccessor(prev, cur string) bool {
	return cur == nextLetterToken(prev)
}

func nextLetterToken(tok string) string {
	if tok == "" {
		return ""
	}
	b := []byte(tok)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 'a' || b[i] > 'z' {
			return ""
		}
		if b[i] < 'z' {
			b[i]++
			return string(b)
		}
		b[i] = 'a'
	}
	return "a" + string(b)
}

// isRomanSuccessor reports whether cur is the roman numeral after prev.
func isRomanSuccessor(prev, cur string) bool {
	p, ok1 := romanValue(prev)
	c, ok2 := romanValue(cur)
	return ok1 && ok2 && c == p+1
}

var romanDigits = map[byte]int{'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000}

// romanValue parses a lowercase roman numeral using subtractive notation.
func romanValue(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	total := 0
	prev := 0
	for i := len(s) - 1; i >= 0; i-- {
		v, ok := romanDigits[s[i]]
		if !ok {
			return 0, false
		}
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	return total, true
}
