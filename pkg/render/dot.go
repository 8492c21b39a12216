package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/treeline/pkg/stree"
)

// Output formats for [Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ValidFormats is the set of supported graph output formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// Options configures graph rendering.
type Options struct {
	// Format selects the output: dot, svg, or png. Empty means dot.
	Format string

	// Rankdir sets the layout direction (TB or LR). Empty means TB.
	Rankdir string
}

// maxLabel bounds scalar text in node labels so wide values don't blow
// up the drawing.
const maxLabel = 32

// ToDOT converts a stream to Graphviz DOT format. Every node in the tree
// becomes a vertex; mapping and sequence membership become labeled edges;
// aliases become dashed edges back to their anchor's vertex. Multi-document
// streams get one cluster per document.
//
// The resulting DOT can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(s *stree.Stream, opts Options) string {
	rankdir := opts.Rankdir
	if rankdir == "" {
		rankdir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph stream {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")

	w := &dotWriter{buf: &buf, indent: "  "}
	for i, doc := range s.Documents {
		w.anchors = map[string]string{}
		if s.Len() > 1 {
			fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", i)
			fmt.Fprintf(&buf, "    label=\"document %d\";\n", i)
			buf.WriteString("    color=grey;\n")
			w.indent = "    "
			w.vertex(doc.Root)
			buf.WriteString("  }\n")
			w.indent = "  "
			continue
		}
		buf.WriteString("\n")
		w.vertex(doc.Root)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// dotWriter assigns vertex IDs and tracks anchor targets per document.
type dotWriter struct {
	buf     *bytes.Buffer
	indent  string
	next    int
	anchors map[string]string
}

func (w *dotWriter) id() string {
	id := "n" + strconv.Itoa(w.next)
	w.next++
	return id
}

// vertex emits n and its subtree, returning n's vertex ID. Aliases return
// their target's ID so the caller's edge points at the anchored vertex.
func (w *dotWriter) vertex(n *stree.Node) string {
	if n == nil {
		id := w.id()
		fmt.Fprintf(w.buf, "%s%s [label=\"~\", fontcolor=grey];\n", w.indent, id)
		return id
	}

	if n.IsAlias() {
		if target, ok := w.anchors[n.Value]; ok {
			return target
		}
		// Dangling alias: validation rejects these, but draw rather
		// than panic so partial trees stay inspectable.
		id := w.id()
		fmt.Fprintf(w.buf, "%s%s [label=%q, fontcolor=red];\n", w.indent, id, "*"+n.Value)
		return id
	}

	id := w.id()
	if n.Anchor != "" {
		w.anchors[n.Anchor] = id
	}
	fmt.Fprintf(w.buf, "%s%s [%s];\n", w.indent, id, strings.Join(vertexAttrs(n), ", "))

	switch n.Kind {
	case stree.KindSequence:
		for i, item := range n.Items {
			w.edge(id, item, strconv.Itoa(i))
		}
	case stree.KindMapping:
		for _, p := range n.Pairs {
			if p.Key.IsScalar() {
				w.edge(id, p.Value, truncate(p.Key.Value))
				continue
			}
			// Collection keys are rare; draw them as explicit vertices
			// so the pairing stays visible.
			w.edge(id, p.Key, "key")
			w.edge(id, p.Value, "value")
		}
	}
	return id
}

func (w *dotWriter) edge(from string, child *stree.Node, label string) {
	to := w.vertex(child)
	attrs := fmt.Sprintf("label=%q", label)
	if child.IsAlias() {
		attrs += ", style=dashed"
	}
	fmt.Fprintf(w.buf, "%s%s -> %s [%s];\n", w.indent, from, to, attrs)
}

func vertexAttrs(n *stree.Node) []string {
	var parts []string
	if n.Anchor != "" {
		parts = append(parts, "&"+n.Anchor)
	}
	if n.Tag != "" {
		parts = append(parts, n.Tag)
	}

	attrs := make([]string, 0, 3)
	switch n.Kind {
	case stree.KindScalar:
		text := truncate(n.Value)
		if text == "" {
			text = `""`
		}
		parts = append(parts, text)
		attrs = append(attrs, fmt.Sprintf("label=%q", strings.Join(parts, "\n")), "shape=ellipse")
	case stree.KindSequence:
		parts = append(parts, fmt.Sprintf("sequence (%d)", len(n.Items)))
		attrs = append(attrs, fmt.Sprintf("label=%q", strings.Join(parts, "\n")))
	case stree.KindMapping:
		parts = append(parts, fmt.Sprintf("mapping (%d)", len(n.Pairs)))
		attrs = append(attrs, fmt.Sprintf("label=%q", strings.Join(parts, "\n")))
	}

	if n.Anchor != "" {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxLabel {
		return s
	}
	return string(runes[:maxLabel-3]) + "..."
}
