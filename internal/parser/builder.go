package parser

import (
	"fmt"
	"strings"

	"masrag/internal/doctree"
)

// treeBuilder holds all per-parse state: the tree under construction, the
// stack of currently open nodes, and the warnings collected so far. One
// builder per document; nothing is shared across parses.
type treeBuilder struct {
	tree      *doctree.Tree
	stack     []frame
	defsDepth int // stack depth of the open definitions heading, 0 if none
	warnings  []doctree.Warning
	prefix    string // document-scoped node ID prefix (the notice ID)
}

func newTreeBuilder(noticeID string) *treeBuilder {
	t := doctree.NewTree(noticeID, doctree.Preamble)
	return &treeBuilder{
		tree:   t,
		stack:  []frame{{nodeID: noticeID, kind: doctree.Preamble}},
		prefix: noticeID,
	}
}

// ingest consumes one extracted line in document order.
func (b *treeBuilder) ingest(line doctree.RawLine) {
	text := normalizeSpace(line.Text)
	if text == "" {
		return
	}

	m := classify(text, b.defsDepth > 0)
	dec, depth, reason := b.accept(m)

	switch dec {
	case decideBody:
		if m.Kind != MarkerNone {
			b.warnings = append(b.warnings, doctree.Warning{
				Seq:    line.Seq,
				Page:   line.Page,
				Marker: fmt.Sprintf("%s %q", m.Kind, m.Token),
				Reason: reason,
			})
		}
		b.appendText(text)
	case decideSibling:
		b.stack = b.stack[:depth]
		if b.defsDepth >= depth {
			b.defsDepth = 0
		}
		b.push(m, text)
	case decideChild:
		b.push(m, text)
	}
}

// push creates a node under the current top of stack and opens it.
func (b *treeBuilder) push(m Marker, fullLine string) {
	parent := b.tree.Get(b.stack[len(b.stack)-1].nodeID)

	path := make([]string, 0, len(parent.NumberingPath)+1)
	path = append(path, parent.NumberingPath...)
	path = append(path, m.Token)

	id := b.nodeID(path)
	// Duplicate definition terms would collide; suffix an ordinal so node
	// IDs stay unique within the document.
	for ord := 2; b.tree.Get(id) != nil; ord++ {
		id = b.nodeID(path) + fmt.Sprintf("-%d", ord)
	}

	n := &doctree.Node{
		ID:            id,
		Type:          nodeType(m.Kind),
		NumberingPath: path,
		Text:          fullLine,
	}
	b.tree.Attach(n, parent.ID)
	b.stack = append(b.stack, frame{nodeID: id, kind: n.Type, token: m.Token})

	if m.Kind == MarkerDefHeading {
		b.defsDepth = len(b.stack) - 1
	}
}

// appendText accumulates a body line into the deepest-open node. Before any
// node is open this is the implicit preamble root.
func (b *treeBuilder) appendText(text string) {
	n := b.tree.Get(b.stack[len(b.stack)-1].nodeID)
	if n.Text == "" {
		n.Text = text
	} else {
		n.Text += " " + text
	}
}

// nodeID derives the identifier from the numbering path. IDs are pure
// functions of the path, prefixed with the notice ID for global uniqueness.
func (b *treeBuilder) nodeID(path []string) string {
	return b.prefix + "#" + strings.Join(path, ".")
}

// finish returns the completed tree and the warning list. The builder must
// not be used afterwards.
func (b *treeBuilder) finish() (*doctree.Tree, []doctree.Warning) {
	tree := b.tree
	warnings := b.warnings
	b.tree = nil
	b.stack = nil
	return tree, warnings
}

func nodeType(k MarkerKind) doctree.NodeType {
	switch k {
	case MarkerPart:
		return doctree.Part
	case MarkerAnnex:
		return doctree.Annex
	case MarkerDefHeading:
		return doctree.Paragraph
	case MarkerDefinition:
		return doctree.Definition
	case MarkerParagraph:
		return doctree.Paragraph
	case MarkerSubParagraph:
		return doctree.SubParagraph
	}
	return doctree.Preamble
}

// normalizeSpace collapses runs of whitespace to single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
