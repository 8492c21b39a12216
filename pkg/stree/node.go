package stree

// Kind identifies the structural role of a [Node].
type Kind uint8

const (
	// KindInvalid is the zero value. Nodes of this kind are rejected by
	// [Emit] and never produced by constructors.
	KindInvalid Kind = iota
	// KindScalar is a leaf node carrying text in Value.
	KindScalar
	// KindSequence is an ordered collection of child nodes in Items.
	KindSequence
	// KindMapping is an ordered collection of key/value Pairs.
	KindMapping
	// KindAlias is a reference to an earlier anchored node. Value holds
	// the target anchor label.
	KindAlias
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindAlias:
		return "alias"
	default:
		return "invalid"
	}
}

// Style is a presentation hint carried through the tree untouched. The
// codec never branches on it; only text rendering consumes it.
type Style uint8

const (
	// StyleAny lets the renderer pick a presentation.
	StyleAny Style = iota
	// StylePlain renders a scalar without quotes.
	StylePlain
	// StyleSingleQuoted renders a scalar in single quotes.
	StyleSingleQuoted
	// StyleDoubleQuoted renders a scalar in double quotes.
	StyleDoubleQuoted
	// StyleLiteral renders a scalar as a literal block (|).
	StyleLiteral
	// StyleFolded renders a scalar as a folded block (>).
	StyleFolded
	// StyleBlock renders a collection in block (indented) form.
	StyleBlock
	// StyleFlow renders a collection in flow ([a, b] / {k: v}) form.
	StyleFlow
)

// String returns the lowercase name of the style.
func (s Style) String() string {
	switch s {
	case StylePlain:
		return "plain"
	case StyleSingleQuoted:
		return "single"
	case StyleDoubleQuoted:
		return "double"
	case StyleLiteral:
		return "literal"
	case StyleFolded:
		return "folded"
	case StyleBlock:
		return "block"
	case StyleFlow:
		return "flow"
	default:
		return "any"
	}
}

// Pair is a single mapping entry. Keys are full nodes, not strings, so
// mappings can be keyed by sequences, mappings, or tagged scalars.
type Pair struct {
	Key   *Node
	Value *Node
}

// Node is one vertex of a serialization tree.
//
// Exactly one of the kind-specific payloads is meaningful: Value for
// scalars and aliases, Items for sequences, Pairs for mappings. Tag,
// Anchor, Style, and Implicit apply to scalars and collections; aliases
// carry none of them.
//
// The zero value has KindInvalid and is not usable. Use the constructors.
type Node struct {
	Kind Kind

	// Tag is the explicit type tag ("!!int", "!example.com,2026/widget").
	// Empty means the consumer infers a type from shape and content.
	Tag string

	// Value holds scalar text, or the target anchor label for aliases.
	Value string

	// Anchor is the label other nodes may alias. Empty means unanchored.
	Anchor string

	// Style is a presentation hint for text rendering.
	Style Style

	// Implicit marks the tag as omittable in rendered text: the value
	// re-resolves to the same tag without it.
	Implicit bool

	Items []*Node // KindSequence children, in order
	Pairs []Pair  // KindMapping entries, in document order
}

// Scalar returns an untagged scalar node holding value.
func Scalar(value string) *Node {
	return &Node{Kind: KindScalar, Value: value}
}

// TaggedScalar returns a scalar node holding value with an explicit tag.
func TaggedScalar(tag, value string) *Node {
	return &Node{Kind: KindScalar, Tag: tag, Value: value}
}

// Sequence returns a sequence node over the given items.
func Sequence(items ...*Node) *Node {
	return &Node{Kind: KindSequence, Items: items}
}

// Mapping returns a mapping node over the given pairs.
func Mapping(pairs ...Pair) *Node {
	return &Node{Kind: KindMapping, Pairs: pairs}
}

// Alias returns an alias node referencing the anchor label target.
func Alias(target string) *Node {
	return &Node{Kind: KindAlias, Value: target}
}

// IsScalar reports whether the node is a scalar.
func (n *Node) IsScalar() bool { return n != nil && n.Kind == KindScalar }

// IsSequence reports whether the node is a sequence.
func (n *Node) IsSequence() bool { return n != nil && n.Kind == KindSequence }

// IsMapping reports whether the node is a mapping.
func (n *Node) IsMapping() bool { return n != nil && n.Kind == KindMapping }

// IsAlias reports whether the node is an alias.
func (n *Node) IsAlias() bool { return n != nil && n.Kind == KindAlias }

// Len returns the child count: items for sequences, pairs for mappings,
// and zero for everything else.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case KindSequence:
		return len(n.Items)
	case KindMapping:
		return len(n.Pairs)
	default:
		return 0
	}
}

// Append adds items to a sequence node. It panics on other kinds, which
// indicates a caller bug rather than bad input.
func (n *Node) Append(items ...*Node) {
	if n.Kind != KindSequence {
		panic("stree: Append on " + n.Kind.String() + " node")
	}
	n.Items = append(n.Items, items...)
}

// Put sets the value for a plain scalar key on a mapping node, replacing
// an existing entry with the same key text. It panics on other kinds.
func (n *Node) Put(key string, value *Node) {
	if n.Kind != KindMapping {
		panic("stree: Put on " + n.Kind.String() + " node")
	}
	for i, p := range n.Pairs {
		if p.Key.IsScalar() && p.Key.Value == key {
			n.Pairs[i].Value = value
			return
		}
	}
	n.Pairs = append(n.Pairs, Pair{Key: Scalar(key), Value: value})
}

// Get returns the value for a plain scalar key on a mapping node, or nil
// when the key is absent or the node is not a mapping.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	for _, p := range n.Pairs {
		if p.Key.IsScalar() && p.Key.Value == key {
			return p.Value
		}
	}
	return nil
}

// Walk calls fn for n and every node reachable from it, in document
// order. Returning false skips the children of that node. Aliases are
// visited but never followed, so walking terminates on cyclic documents.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n.Kind {
	case KindSequence:
		for _, item := range n.Items {
			item.Walk(fn)
		}
	case KindMapping:
		for _, p := range n.Pairs {
			p.Key.Walk(fn)
			p.Value.Walk(fn)
		}
	}
}
