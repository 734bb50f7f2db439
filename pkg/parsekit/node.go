package parsekit

import "alan.dev/alanc/internal/diag"

// Kind tags the variant of a CST Node, matching the taxonomy of spec §3
// exactly: Leaf, Negation leaf, Sequence-anonymous, Sequence-named,
// Choice-anonymous, Choice-named, Repetition, Optional, Null.
type Kind int

const (
	KindLeaf Kind = iota
	KindNegationLeaf
	KindSeqAnon
	KindSeqNamed
	KindChoiceAnon
	KindChoiceNamed
	KindRepetition
	KindOptional
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "Leaf"
	case KindNegationLeaf:
		return "NegationLeaf"
	case KindSeqAnon:
		return "Sequence"
	case KindSeqNamed:
		return "NamedSequence"
	case KindChoiceAnon:
		return "Choice"
	case KindChoiceNamed:
		return "NamedChoice"
	case KindRepetition:
		return "Repetition"
	case KindOptional:
		return "Optional"
	case KindNull:
		return "Null"
	default:
		return "Unknown"
	}
}

// Node is a single CST node. Only the fields relevant to its Kind are
// populated; the rest stay at their zero value. Text always equals the
// exact source slice the node matched (invariant 1 of spec §8): for
// composite kinds it is the concatenation of every descendant leaf's text,
// built up during parsing rather than re-derived afterwards.
type Node struct {
	Kind Kind
	Pos  diag.Position
	Text string

	// Children holds ordered sub-nodes for KindSeqAnon and KindRepetition.
	Children []*Node
	// Fields holds keyed sub-nodes, insertion-ordered, for KindSeqNamed and
	// (together with Branch) KindChoiceNamed.
	Fields *OrderedFields
	// Branch names the selected alternative for KindChoiceNamed.
	Branch string
	// SelectedIndex identifies the selected alternative for KindChoiceAnon.
	SelectedIndex int
	// Inner holds the wrapped node for KindOptional (nil Inner, Kind Null,
	// means "absent") and the selected node for KindChoiceAnon/KindChoiceNamed.
	Inner *Node
}

// IsPresent reports whether an Optional node actually matched something.
func (n *Node) IsPresent() bool {
	return n != nil && n.Kind == KindOptional && n.Inner != nil && n.Inner.Kind != KindNull
}

// OrderedFields is a string-keyed map of *Node that preserves insertion
// order, used for Sequence-named and Choice-named nodes so callers can walk
// fields in declaration order (readable tree navigation, per spec §3).
type OrderedFields struct {
	keys []string
	vals map[string]*Node
}

// Set inserts or overwrites the value for key, recording first-insertion
// order.
func (f *OrderedFields) Set(key string, val *Node) {
	if f.vals == nil {
		f.vals = make(map[string]*Node)
	}
	if _, exists := f.vals[key]; !exists {
		f.keys = append(f.keys, key)
	}
	f.vals[key] = val
}

// Get retrieves the node bound to key, if any.
func (f *OrderedFields) Get(key string) (*Node, bool) {
	if f == nil || f.vals == nil {
		return nil, false
	}
	n, ok := f.vals[key]
	return n, ok
}

// Keys returns the field names in insertion order.
func (f *OrderedFields) Keys() []string {
	if f == nil {
		return nil
	}
	return f.keys
}

func joinText(nodes []*Node) string {
	total := 0
	for _, n := range nodes {
		total += len(n.Text)
	}
	buf := make([]byte, 0, total)
	for _, n := range nodes {
		buf = append(buf, n.Text...)
	}
	return string(buf)
}

func newNullNode(pos diag.Position) *Node {
	return &Node{Kind: KindNull, Pos: pos}
}
