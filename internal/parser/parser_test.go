package parser

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"masrag/internal/doctree"
)

const testFilename = "MAS Notice 758_dated 18 Dec 2024_effective 26 Dec 2024.pdf"

func rawLines(texts ...string) []doctree.RawLine {
	out := make([]doctree.RawLine, len(texts))
	for i, s := range texts {
		out[i] = doctree.RawLine{Text: s, Seq: i, Page: 1}
	}
	return out
}

func mustParse(t *testing.T, texts ...string) *doctree.StructuredDocument {
	t.Helper()
	doc, err := ParseNotice(Input{Filename: testFilename, Lines: rawLines(texts...)})
	if err != nil {
		t.Fatalf("ParseNotice: %v", err)
	}
	return doc
}

func TestParseNotice_NestedStructure(t *testing.T) {
	doc := mustParse(t,
		"PART I Scope",
		"1. Application",
		"(a) first rule",
		"(b) second rule",
		"2. Effective date",
	)

	if len(doc.Nodes) != 6 { // root + 5
		t.Fatalf("expected 6 nodes, got %d", len(doc.Nodes))
	}

	part := doc.Nodes["MAS Notice 758#I"]
	if part == nil || part.Type != doctree.Part {
		t.Fatalf("missing or mistyped part node: %+v", part)
	}
	if part.ParentID != doc.RootID {
		t.Errorf("part parent = %q, want root %q", part.ParentID, doc.RootID)
	}

	p1 := doc.Nodes["MAS Notice 758#I.1"]
	p2 := doc.Nodes["MAS Notice 758#I.2"]
	if p1 == nil || p2 == nil {
		t.Fatalf("missing paragraph nodes")
	}
	if p2.ParentID != part.ID {
		t.Errorf("paragraph 2 parent = %q, want %q (sibling of 1, not child)", p2.ParentID, part.ID)
	}

	a := doc.Nodes["MAS Notice 758#I.1.a"]
	b := doc.Nodes["MAS Notice 758#I.1.b"]
	if a == nil || b == nil {
		t.Fatalf("missing sub-paragraph nodes")
	}
	if a.ParentID != p1.ID || b.ParentID != p1.ID {
		t.Errorf("sub-paragraph parents = %q, %q, want %q", a.ParentID, b.ParentID, p1.ID)
	}
	if a.Type != doctree.SubParagraph {
		t.Errorf("node type = %q, want %q", a.Type, doctree.SubParagraph)
	}

	if got := []string{p1.Children[0], p1.Children[1]}; got[0] != a.ID || got[1] != b.ID {
		t.Errorf("paragraph 1 children = %v, want [%s %s]", got, a.ID, b.ID)
	}
	if len(doc.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", doc.Warnings)
	}
}

func TestParseNotice_OrphanParagraphRestart(t *testing.T) {
	// A lone "3." with nothing open has no competing sequence to violate:
	// it is accepted as a child of the root.
	doc := mustParse(t, "3. Orphaned paragraph")

	n := doc.Nodes["MAS Notice 758#3"]
	if n == nil {
		t.Fatalf("orphan paragraph not accepted; nodes: %v", doc.Order)
	}
	if n.ParentID != doc.RootID {
		t.Errorf("parent = %q, want root", n.ParentID)
	}
	if n.Depth() != 1 {
		t.Errorf("depth = %d, want 1", n.Depth())
	}
	if len(doc.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", doc.Warnings)
	}
}

func TestParseNotice_StraySubParagraphIsBodyText(t *testing.T) {
	// "(a)" directly after a heading has no paragraph to nest under:
	// continuity fails, the line joins the Part's body, and a warning is
	// recorded.
	doc := mustParse(t,
		"PART I Scope",
		"(a) stray sub-paragraph",
	)

	if len(doc.Nodes) != 2 {
		t.Fatalf("expected root + part only, got %d nodes", len(doc.Nodes))
	}
	part := doc.Nodes["MAS Notice 758#I"]
	if !strings.Contains(part.Text, "(a) stray sub-paragraph") {
		t.Errorf("stray line not appended to part text: %q", part.Text)
	}
	if len(doc.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(doc.Warnings))
	}
	if doc.Warnings[0].Seq != 1 {
		t.Errorf("warning seq = %d, want 1", doc.Warnings[0].Seq)
	}
}

func TestParseNotice_SequenceJumpIsBodyText(t *testing.T) {
	doc := mustParse(t,
		"1. First paragraph",
		"(a) first item",
		"(d) jumped item",
	)

	if len(doc.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(doc.Nodes))
	}
	a := doc.Nodes["MAS Notice 758#1.a"]
	if !strings.Contains(a.Text, "(d) jumped item") {
		t.Errorf("jumped marker should continue (a)'s body, got %q", a.Text)
	}
	if len(doc.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(doc.Warnings))
	}
}

func TestParseNotice_ParagraphAfterSubParagraphs(t *testing.T) {
	// "3." after "(b)" is a sibling of "2.", popping the sub-paragraph level.
	doc := mustParse(t,
		"1. First",
		"2. Second",
		"(a) item one",
		"(b) item two",
		"3. Third",
	)
	p3 := doc.Nodes["MAS Notice 758#3"]
	if p3 == nil {
		t.Fatalf("paragraph 3 not created")
	}
	if p3.ParentID != doc.RootID {
		t.Errorf("paragraph 3 parent = %q, want root", p3.ParentID)
	}
}

func TestParseNotice_DottedParagraphNesting(t *testing.T) {
	doc := mustParse(t,
		"3. Reporting requirements",
		"3.1 A bank shall submit returns monthly.",
		"3.2 Returns shall be certified.",
		"4. Record keeping",
	)
	p31 := doc.Nodes["MAS Notice 758#3.3.1"]
	p32 := doc.Nodes["MAS Notice 758#3.3.2"]
	if p31 == nil || p32 == nil {
		t.Fatalf("dotted paragraphs not nested; nodes: %v", doc.Order)
	}
	if p31.ParentID != "MAS Notice 758#3" {
		t.Errorf("3.1 parent = %q, want paragraph 3", p31.ParentID)
	}
	if p32.ParentID != "MAS Notice 758#3" {
		t.Errorf("3.2 parent = %q, want paragraph 3", p32.ParentID)
	}
	p4 := doc.Nodes["MAS Notice 758#4"]
	if p4 == nil || p4.ParentID != doc.RootID {
		t.Fatalf("paragraph 4 should resume the top-level sequence: %+v", p4)
	}
}

func TestParseNotice_Definitions(t *testing.T) {
	doc := mustParse(t,
		"PART I Preliminary",
		"Definitions",
		`"bank" means a bank licensed under the Banking Act`,
		`"customer" means any person with an account`,
		"1. A bank shall notify its customers.",
	)

	heading := doc.Nodes["MAS Notice 758#I.definitions"]
	if heading == nil {
		t.Fatalf("definitions heading node missing; nodes: %v", doc.Order)
	}
	bank := doc.Nodes["MAS Notice 758#I.definitions.bank"]
	customer := doc.Nodes["MAS Notice 758#I.definitions.customer"]
	if bank == nil || customer == nil {
		t.Fatalf("definition entries missing; nodes: %v", doc.Order)
	}
	if bank.Type != doctree.Definition {
		t.Errorf("node type = %q, want %q", bank.Type, doctree.Definition)
	}
	if bank.ParentID != heading.ID || customer.ParentID != heading.ID {
		t.Errorf("definition parents = %q, %q, want %q", bank.ParentID, customer.ParentID, heading.ID)
	}

	// The numbered paragraph closes the definitions region and sits at the
	// heading's level, not inside it.
	p1 := doc.Nodes["MAS Notice 758#I.1"]
	if p1 == nil {
		t.Fatalf("paragraph after definitions region missing; nodes: %v", doc.Order)
	}
	if p1.ParentID != "MAS Notice 758#I" {
		t.Errorf("paragraph parent = %q, want the part", p1.ParentID)
	}
}

func TestParseNotice_PreambleCollectsLeadingText(t *testing.T) {
	doc := mustParse(t,
		"Monetary Authority of Singapore",
		"Notice to Banks",
		"1. This notice applies to all banks.",
	)
	root := doc.Nodes[doc.RootID]
	if root.Type != doctree.Preamble {
		t.Errorf("root type = %q, want %q", root.Type, doctree.Preamble)
	}
	if !strings.Contains(root.Text, "Monetary Authority of Singapore") {
		t.Errorf("preamble text missing leading lines: %q", root.Text)
	}
}

func TestParseNotice_EmptyDocument(t *testing.T) {
	_, err := ParseNotice(Input{Filename: testFilename, Lines: rawLines("", "   ")})
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestParseNotice_MetadataFailure(t *testing.T) {
	_, err := ParseNotice(Input{
		Filename:    "scan0001.pdf",
		Lines:       rawLines("1. Some text"),
		HeaderLines: rawLines("unrelated header"),
	})
	var metaErr *MetadataError
	if !errors.As(err, &metaErr) {
		t.Fatalf("err = %v, want *MetadataError", err)
	}
}

// Property: every node ID appears exactly once.
func TestParseNotice_IDUniqueness(t *testing.T) {
	doc := mustParse(t,
		"PART I Scope",
		"1. First",
		"(a) item",
		"2. Second",
		"ANNEX A Forms",
		"1. Form instructions",
	)
	seen := map[string]bool{}
	for _, id := range doc.Order {
		if seen[id] {
			t.Errorf("duplicate node ID %q", id)
		}
		seen[id] = true
	}
	if len(doc.Order) != len(doc.Nodes) {
		t.Errorf("order has %d entries, nodes map %d", len(doc.Order), len(doc.Nodes))
	}
}

// Property: walking parent_id from any node terminates at the root within
// the maximum observed depth.
func TestParseNotice_ParentClosure(t *testing.T) {
	doc := mustParse(t,
		"PART I Scope",
		"1. First",
		"(a) item",
		"(i) nested item",
	)
	maxDepth := 0
	for _, n := range doc.Nodes {
		if n.Depth() > maxDepth {
			maxDepth = n.Depth()
		}
	}
	for _, n := range doc.Nodes {
		cur := n
		steps := 0
		for cur.ParentID != "" {
			cur = doc.Nodes[cur.ParentID]
			if cur == nil {
				t.Fatalf("node %q has dangling parent", n.ID)
			}
			steps++
			if steps > maxDepth {
				t.Fatalf("parent walk from %q exceeded max depth %d", n.ID, maxDepth)
			}
		}
		if cur.ID != doc.RootID {
			t.Errorf("parent walk from %q ended at %q, not root", n.ID, cur.ID)
		}
	}
}

// Property: pre-order traversal reproduces the input text up to whitespace
// normalization, with no line dropped or duplicated.
func TestParseNotice_OrderPreservation(t *testing.T) {
	input := []string{
		"Preamble text before any structure.",
		"PART I Scope",
		"1. Application",
		"continued application text",
		"(a) first rule",
		"(b) second rule",
		"2. Effective date",
	}
	doc := mustParse(t, input...)

	var parts []string
	for _, n := range doc.PreOrder() {
		if n.Text != "" {
			parts = append(parts, n.Text)
		}
	}
	got := strings.Join(parts, " ")
	want := strings.Join(input, " ")
	if got != want {
		t.Errorf("pre-order text = %q, want %q", got, want)
	}
}

// Property: len(numbering_path) == depth, and the path prefix equals the
// parent's full path.
func TestParseNotice_DepthPathConsistency(t *testing.T) {
	doc := mustParse(t,
		"PART I Scope",
		"1. Application",
		"(a) first rule",
		"(i) nested",
	)
	for _, n := range doc.Nodes {
		if n.ID == doc.RootID {
			if len(n.NumberingPath) != 0 {
				t.Errorf("root path = %v, want empty", n.NumberingPath)
			}
			continue
		}
		parent := doc.Nodes[n.ParentID]
		if len(n.NumberingPath) != len(parent.NumberingPath)+1 {
			t.Errorf("node %q path length %d, parent %d", n.ID, len(n.NumberingPath), len(parent.NumberingPath))
		}
		for i, tok := range parent.NumberingPath {
			if n.NumberingPath[i] != tok {
				t.Errorf("node %q path prefix mismatch at %d: %v vs parent %v", n.ID, i, n.NumberingPath, parent.NumberingPath)
			}
		}
	}
}

// Property: re-parsing the same input yields byte-identical output.
func TestParseNotice_Idempotence(t *testing.T) {
	input := Input{
		Filename: testFilename,
		Lines: rawLines(
			"PART I Scope",
			"1. Application",
			"(a) first rule",
			"2. Effective date",
		),
	}
	first, err := ParseNotice(input)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	second, err := ParseNotice(input)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	b1, _ := json.Marshal(first)
	b2, _ := json.Marshal(second)
	if string(b1) != string(b2) {
		t.Errorf("parses differ:\n%s\n%s", b1, b2)
	}
}
