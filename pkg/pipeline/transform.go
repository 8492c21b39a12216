package pipeline

import (
	"fmt"

	"github.com/matzehuels/treeline/pkg/codec"
	"github.com/matzehuels/treeline/pkg/stree"
)

// ExpandAliases returns a copy of s with every alias replaced by a deep
// copy of its anchor's target. Anchors are dropped from the copy since
// nothing references them afterwards. Streams whose aliases form cycles
// have no finite expansion and are rejected.
func ExpandAliases(s *stree.Stream) (*stree.Stream, error) {
	out := stree.NewStream()
	for i, doc := range s.Documents {
		x := &expander{
			anchors:   map[string]*stree.Node{},
			expanding: map[string]bool{},
		}
		root, err := x.expand(doc.Root)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out.Append(&stree.Document{
			Root:          root,
			ExplicitStart: doc.ExplicitStart,
			ExplicitEnd:   doc.ExplicitEnd,
		})
	}
	return out, nil
}

// expander tracks anchor targets in the original tree. The expanding set
// detects aliases that point back into the subtree being copied, which
// would otherwise recurse forever.
type expander struct {
	anchors   map[string]*stree.Node
	expanding map[string]bool
}

func (x *expander) expand(n *stree.Node) (*stree.Node, error) {
	if n == nil {
		return nil, nil
	}

	if n.IsAlias() {
		target, ok := x.anchors[n.Value]
		if !ok {
			return nil, &codec.UnknownAnchorError{Anchor: n.Value}
		}
		if x.expanding[n.Value] {
			return nil, fmt.Errorf("cycle through anchor %q has no finite expansion", n.Value)
		}
		return x.expand(target)
	}

	if n.Anchor != "" {
		x.anchors[n.Anchor] = n
		x.expanding[n.Anchor] = true
		defer delete(x.expanding, n.Anchor)
	}

	out := &stree.Node{
		Kind:     n.Kind,
		Tag:      n.Tag,
		Value:    n.Value,
		Style:    n.Style,
		Implicit: n.Implicit,
	}

	switch n.Kind {
	case stree.KindSequence:
		out.Items = make([]*stree.Node, 0, len(n.Items))
		for _, item := range n.Items {
			c, err := x.expand(item)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, c)
		}
	case stree.KindMapping:
		out.Pairs = make([]stree.Pair, 0, len(n.Pairs))
		for _, p := range n.Pairs {
			k, err := x.expand(p.Key)
			if err != nil {
				return nil, err
			}
			v, err := x.expand(p.Value)
			if err != nil {
				return nil, err
			}
			out.Pairs = append(out.Pairs, stree.Pair{Key: k, Value: v})
		}
	}
	return out, nil
}
