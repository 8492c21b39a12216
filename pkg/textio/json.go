package textio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/treeline/pkg/codec"
	"github.com/matzehuels/treeline/pkg/stree"
	"github.com/matzehuels/treeline/pkg/tags"
)

// WriteJSON renders s as JSON on w, one compact document per line.
// Aliases are expanded in place since JSON cannot express sharing;
// cyclic documents, custom tags, non-finite floats, and non-scalar
// mapping keys have no JSON form and fail.
func WriteJSON(s *stree.Stream, w io.Writer) error {
	if s == nil {
		return nil
	}
	var buf bytes.Buffer
	for _, doc := range s.Documents {
		jw := &jsonWriter{
			buf:       &buf,
			anchors:   make(map[string]*stree.Node),
			expanding: make(map[string]bool),
		}
		root := doc.Root
		if root == nil {
			root = stree.TaggedScalar(tags.Null, "null")
		}
		if err := jw.node(root); err != nil {
			return err
		}
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// MarshalJSON renders s as JSON text.
func MarshalJSON(s *stree.Stream) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadJSON parses JSON documents from r, one or more concatenated
// values, into a stream.
func ReadJSON(r io.Reader) (*stree.Stream, error) {
	dec := json.NewDecoder(r)
	var docs []*yaml.Node
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("textio: parse json: %w", err)
		}
		var doc yaml.Node
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("textio: parse json: %w", err)
		}
		docs = append(docs, &doc)
	}
	return buildStream(docs)
}

// UnmarshalJSON parses JSON text into a stream.
func UnmarshalJSON(data []byte) (*stree.Stream, error) {
	return ReadJSON(bytes.NewReader(data))
}

type jsonWriter struct {
	buf       *bytes.Buffer
	anchors   map[string]*stree.Node
	expanding map[string]bool
}

func (jw *jsonWriter) node(n *stree.Node) error {
	if n == nil {
		return fmt.Errorf("textio: %w: nil node", stree.ErrMalformedNode)
	}
	if n.Anchor != "" {
		if jw.expanding[n.Anchor] {
			return fmt.Errorf("textio: cycle through anchor %q has no JSON form", n.Anchor)
		}
		jw.anchors[n.Anchor] = n
		jw.expanding[n.Anchor] = true
		defer delete(jw.expanding, n.Anchor)
	}

	switch n.Kind {
	case stree.KindScalar:
		tok, err := scalarJSON(n)
		if err != nil {
			return err
		}
		jw.buf.Write(tok)
		return nil

	case stree.KindAlias:
		target, ok := jw.anchors[n.Value]
		if !ok {
			return fmt.Errorf("textio: %w: %q", stree.ErrDanglingAlias, n.Value)
		}
		return jw.node(target)

	case stree.KindSequence:
		jw.buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				jw.buf.WriteByte(',')
			}
			if err := jw.node(item); err != nil {
				return err
			}
		}
		jw.buf.WriteByte(']')
		return nil

	case stree.KindMapping:
		jw.buf.WriteByte('{')
		for i, p := range n.Pairs {
			if i > 0 {
				jw.buf.WriteByte(',')
			}
			if err := jw.key(p.Key); err != nil {
				return err
			}
			jw.buf.WriteByte(':')
			if err := jw.node(p.Value); err != nil {
				return err
			}
		}
		jw.buf.WriteByte('}')
		return nil

	default:
		return fmt.Errorf("textio: %w: kind %s", stree.ErrMalformedNode, n.Kind)
	}
}

// key renders a mapping key. JSON object keys are strings, so the key
// must be a scalar (or alias to one); its text is quoted as-is.
func (jw *jsonWriter) key(n *stree.Node) error {
	if n.IsAlias() {
		target, ok := jw.anchors[n.Value]
		if !ok {
			return fmt.Errorf("textio: %w: %q", stree.ErrDanglingAlias, n.Value)
		}
		n = target
	}
	if !n.IsScalar() {
		return fmt.Errorf("textio: %s mapping key has no JSON form", n.Kind)
	}
	quoted, err := json.Marshal(n.Value)
	if err != nil {
		return fmt.Errorf("textio: render key: %w", err)
	}
	jw.buf.Write(quoted)
	return nil
}

// scalarJSON renders one scalar as a JSON token. Built-in tags (and
// untagged text, via inference) resolve to a value first, so numbers and
// booleans come out bare while binary and timestamps come out as
// strings.
func scalarJSON(n *stree.Node) ([]byte, error) {
	tag := tags.Normalize(n.Tag)
	if tag != "" && tag != "!" && !tags.Builtin(tag) {
		return nil, fmt.Errorf("textio: tag %s has no JSON form", tag)
	}
	if tag == "" || tag == "!" {
		switch n.Style {
		case stree.StyleSingleQuoted, stree.StyleDoubleQuoted, stree.StyleLiteral, stree.StyleFolded:
			return json.Marshal(n.Value)
		}
	}
	v, err := codec.ParseScalar(tag, n.Value)
	if err != nil {
		return nil, err
	}
	tok, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("textio: render scalar %q: %w", n.Value, err)
	}
	return tok, nil
}
