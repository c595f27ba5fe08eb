package doctree

// NodeType classifies a structural unit of a regulatory notice.
type NodeType string

const (
	Preamble     NodeType = "preamble"
	Part         NodeType = "part"
	Paragraph    NodeType = "paragraph"
	SubParagraph NodeType = "sub-paragraph"
	Definition   NodeType = "definition"
	Annex        NodeType = "annex"
)

// RawLine is one unit of extracted text with its document-order index
// and source page. The parser never mutates it.
type RawLine struct {
	Text string
	Seq  int
	Page int
}

// Node is a structural unit of a parsed notice. Nodes reference each
// other by ID only, so a tree can be queried as a flat map plus a
// parent/children index.
type Node struct {
	ID            string   `json:"node_id"`
	Type          NodeType `json:"node_type"`
	NumberingPath []string `json:"numbering_path"`
	Text          string   `json:"text"`
	ParentID      string   `json:"parent_id,omitempty"`
	Children      []string `json:"children,omitempty"`
}

// Depth is the node's distance from the root. The root has an empty
// numbering path and depth 0.
func (n *Node) Depth() int { return len(n.NumberingPath) }

// Tree owns all nodes of one parsed notice.
type Tree struct {
	RootID string
	Nodes  map[string]*Node
	Order  []string // node IDs in creation (document) order
}

// NewTree creates a tree holding only a root node of the given ID and type.
func NewTree(rootID string, rootType NodeType) *Tree {
	root := &Node{ID: rootID, Type: rootType, NumberingPath: []string{}}
	return &Tree{
		RootID: rootID,
		Nodes:  map[string]*Node{rootID: root},
		Order:  []string{rootID},
	}
}

// Get returns the node with the given ID, or nil.
func (t *Tree) Get(id string) *Node { return t.Nodes[id] }

// Root returns the root node.
func (t *Tree) Root() *Node { return t.Nodes[t.RootID] }

// Len returns the number of nodes, root included.
func (t *Tree) Len() int { return len(t.Nodes) }

// Attach adds n to the tree as the last child of the node with parentID.
func (t *Tree) Attach(n *Node, parentID string) {
	n.ParentID = parentID
	t.Nodes[n.ID] = n
	t.Order = append(t.Order, n.ID)
	parent := t.Nodes[parentID]
	parent.Children = append(parent.Children, n.ID)
}

// PreOrder returns all nodes in pre-order, children in insertion order.
func (t *Tree) PreOrder() []*Node {
	out := make([]*Node, 0, len(t.Nodes))
	var walk func(id string)
	walk = func(id string) {
		n := t.Nodes[id]
		out = append(out, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.RootID)
	return out
}

// DocumentMetadata identifies a notice. EffectiveDate is empty when the
// source genuinely has none; that is a legitimate value, not an error.
type DocumentMetadata struct {
	NoticeID        string `json:"notice_id"`
	PublicationDate string `json:"publication_date"`
	EffectiveDate   string `json:"effective_date,omitempty"`
}

// Warning records a line where a plausible marker failed the numbering
// continuity check and was demoted to body text.
type Warning struct {
	Seq    int    `json:"seq"`
	Page   int    `json:"page"`
	Marker string `json:"marker"`
	Reason string `json:"reason"`
}

// StructuredDocument is the finished artifact handed to the enrichment
// stage. It is never mutated after assembly.
type StructuredDocument struct {
	Metadata DocumentMetadata `json:"metadata"`
	RootID   string           `json:"root_id"`
	Nodes    map[string]*Node `json:"nodes"`
	Order    []string         `json:"order"`
	Warnings []Warning        `json:"warnings,omitempty"`
}

// PreOrder returns the document's nodes in pre-order.
func (d *StructuredDocument) PreOrder() []*Node {
	t := Tree{RootID: d.RootID, Nodes: d.Nodes}
	return t.PreOrder()
}
