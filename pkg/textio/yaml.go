package textio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/treeline/pkg/stree"
	"github.com/matzehuels/treeline/pkg/tags"
)

// Write renders s as YAML on w, one "---"-separated document per stream
// document. The tree is validated on the way out: malformed nodes,
// dangling aliases, and excessive nesting fail before any text is
// written.
func Write(s *stree.Stream, w io.Writer) error {
	a := &yamlAssembler{}
	if err := stree.Emit(s, a); err != nil {
		return err
	}
	if len(a.docs) == 0 {
		return nil
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, doc := range a.docs {
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("textio: render yaml: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("textio: render yaml: %w", err)
	}
	return nil
}

// Marshal renders s as YAML text.
func Marshal(s *stree.Stream) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read parses YAML (or JSON, a YAML subset) from r into a stream. Alias
// ordering and nesting are validated by the tree builder as documents
// are replayed.
func Read(r io.Reader) (*stree.Stream, error) {
	dec := yaml.NewDecoder(r)
	var docs []*yaml.Node
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("textio: parse yaml: %w", err)
		}
		docs = append(docs, &doc)
	}
	return buildStream(docs)
}

// Unmarshal parses YAML text into a stream.
func Unmarshal(data []byte) (*stree.Stream, error) {
	return Read(bytes.NewReader(data))
}

// yamlAssembler is a [stree.Handler] that builds yaml.v3 document nodes
// from the event stream.
type yamlAssembler struct {
	docs  []*yaml.Node
	doc   *yaml.Node
	stack []*yaml.Node
}

func (a *yamlAssembler) HandleEvent(ev stree.Event) error {
	switch ev.Type {
	case stree.EventStreamStart, stree.EventStreamEnd:
		return nil

	case stree.EventDocumentStart:
		a.doc = &yaml.Node{Kind: yaml.DocumentNode}

	case stree.EventDocumentEnd:
		a.docs = append(a.docs, a.doc)
		a.doc = nil

	case stree.EventScalar:
		a.attach(&yaml.Node{
			Kind:   yaml.ScalarNode,
			Tag:    ev.Tag,
			Value:  ev.Value,
			Anchor: ev.Anchor,
			Style:  styleOut(ev.Style),
		})

	case stree.EventAlias:
		a.attach(&yaml.Node{Kind: yaml.AliasNode, Value: ev.Anchor})

	case stree.EventSequenceStart:
		n := &yaml.Node{
			Kind:   yaml.SequenceNode,
			Tag:    ev.Tag,
			Anchor: ev.Anchor,
			Style:  styleOut(ev.Style),
		}
		a.attach(n)
		a.stack = append(a.stack, n)

	case stree.EventMappingStart:
		n := &yaml.Node{
			Kind:   yaml.MappingNode,
			Tag:    ev.Tag,
			Anchor: ev.Anchor,
			Style:  styleOut(ev.Style),
		}
		a.attach(n)
		a.stack = append(a.stack, n)

	case stree.EventSequenceEnd, stree.EventMappingEnd:
		a.stack = a.stack[:len(a.stack)-1]

	default:
		return fmt.Errorf("textio: unexpected event %s", ev.Type)
	}
	return nil
}

// attach places n under the open container, or as the document root.
// Mapping children arrive key, value, key, value, matching the flat
// Content layout yaml.v3 uses.
func (a *yamlAssembler) attach(n *yaml.Node) {
	if len(a.stack) > 0 {
		parent := a.stack[len(a.stack)-1]
		parent.Content = append(parent.Content, n)
		return
	}
	a.doc.Content = append(a.doc.Content, n)
}

// buildStream replays parsed yaml.v3 documents through a tree builder.
func buildStream(docs []*yaml.Node) (*stree.Stream, error) {
	b := stree.NewBuilder()
	if err := b.HandleEvent(stree.Event{Type: stree.EventStreamStart}); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if err := b.HandleEvent(stree.Event{Type: stree.EventDocumentStart, Implicit: true}); err != nil {
			return nil, err
		}
		if err := nodeEvents(doc, b); err != nil {
			return nil, err
		}
		if err := b.HandleEvent(stree.Event{Type: stree.EventDocumentEnd, Implicit: true}); err != nil {
			return nil, err
		}
	}
	if err := b.HandleEvent(stree.Event{Type: stree.EventStreamEnd}); err != nil {
		return nil, err
	}
	return b.Stream()
}

// nodeEvents walks one parsed yaml.v3 node, replaying it as events.
func nodeEvents(n *yaml.Node, h stree.Handler) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return h.HandleEvent(stree.Event{Type: stree.EventScalar, Tag: tags.Null, Value: "null", Implicit: true})
		}
		return nodeEvents(n.Content[0], h)

	case yaml.ScalarNode:
		return h.HandleEvent(stree.Event{
			Type:     stree.EventScalar,
			Tag:      tagIn(n),
			Value:    n.Value,
			Anchor:   n.Anchor,
			Style:    styleIn(n.Style),
			Implicit: n.Style&yaml.TaggedStyle == 0,
		})

	case yaml.AliasNode:
		return h.HandleEvent(stree.Event{Type: stree.EventAlias, Anchor: n.Value})

	case yaml.SequenceNode:
		start := stree.Event{
			Type:   stree.EventSequenceStart,
			Tag:    tagIn(n),
			Anchor: n.Anchor,
			Style:  styleIn(n.Style),
		}
		if err := h.HandleEvent(start); err != nil {
			return err
		}
		for _, item := range n.Content {
			if err := nodeEvents(item, h); err != nil {
				return err
			}
		}
		return h.HandleEvent(stree.Event{Type: stree.EventSequenceEnd})

	case yaml.MappingNode:
		start := stree.Event{
			Type:   stree.EventMappingStart,
			Tag:    tagIn(n),
			Anchor: n.Anchor,
			Style:  styleIn(n.Style),
		}
		if err := h.HandleEvent(start); err != nil {
			return err
		}
		for _, child := range n.Content {
			if err := nodeEvents(child, h); err != nil {
				return err
			}
		}
		return h.HandleEvent(stree.Event{Type: stree.EventMappingEnd})

	default:
		return fmt.Errorf("textio: unsupported yaml node kind %d", n.Kind)
	}
}

// tagIn translates a parsed node's tag. Tags the resolver assigned on
// its own are dropped, leaving the node untagged for re-inference; tags
// spelled out in the source are kept, folded to short form.
func tagIn(n *yaml.Node) string {
	t := tags.Normalize(n.Tag)
	if n.Style&yaml.TaggedStyle == 0 && tags.Builtin(t) {
		return ""
	}
	if t == "!" {
		return ""
	}
	return t
}

func styleIn(s yaml.Style) stree.Style {
	switch {
	case s&yaml.SingleQuotedStyle != 0:
		return stree.StyleSingleQuoted
	case s&yaml.DoubleQuotedStyle != 0:
		return stree.StyleDoubleQuoted
	case s&yaml.LiteralStyle != 0:
		return stree.StyleLiteral
	case s&yaml.FoldedStyle != 0:
		return stree.StyleFolded
	case s&yaml.FlowStyle != 0:
		return stree.StyleFlow
	}
	return stree.StyleAny
}

func styleOut(s stree.Style) yaml.Style {
	switch s {
	case stree.StyleSingleQuoted:
		return yaml.SingleQuotedStyle
	case stree.StyleDoubleQuoted:
		return yaml.DoubleQuotedStyle
	case stree.StyleLiteral:
		return yaml.LiteralStyle
	case stree.StyleFolded:
		return yaml.FoldedStyle
	case stree.StyleFlow:
		return yaml.FlowStyle
	}
	return 0
}
