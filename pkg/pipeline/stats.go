package pipeline

import (
	"sort"

	"github.com/matzehuels/treeline/pkg/cache"
	"github.com/matzehuels/treeline/pkg/stree"
	"github.com/matzehuels/treeline/pkg/textio"
)

// CollectStats walks a stream and counts documents, nodes, anchors, and
// aliases, recording the deepest nesting seen. Aliases count as leaves;
// their targets are not walked again.
func CollectStats(s *stree.Stream) Stats {
	var st Stats
	if s == nil {
		return st
	}
	st.DocCount = s.Len()
	for _, doc := range s.Documents {
		countNodes(doc.Root, 1, &st)
	}
	return st
}

func countNodes(n *stree.Node, depth int, st *Stats) {
	if n == nil {
		return
	}
	st.NodeCount++
	if depth > st.MaxDepth {
		st.MaxDepth = depth
	}
	if n.Anchor != "" {
		st.AnchorCount++
	}
	switch n.Kind {
	case stree.KindAlias:
		st.AliasCount++
	case stree.KindSequence:
		for _, item := range n.Items {
			countNodes(item, depth+1, st)
		}
	case stree.KindMapping:
		for _, p := range n.Pairs {
			countNodes(p.Key, depth+1, st)
			countNodes(p.Value, depth+1, st)
		}
	}
}

// DistinctTags returns every explicit tag appearing in s, sorted.
func DistinctTags(s *stree.Stream) []string {
	if s == nil {
		return nil
	}
	seen := map[string]struct{}{}
	for _, doc := range s.Documents {
		doc.Root.Walk(func(n *stree.Node) bool {
			if n.Tag != "" {
				seen[n.Tag] = struct{}{}
			}
			return true
		})
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// TreeHash returns the content hash of a stream's serialized YAML form.
// The hash covers structure, tags, anchors, and styles, so it is stable
// across runs for the same tree.
func TreeHash(s *stree.Stream) (string, error) {
	data, err := textio.Marshal(s)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
