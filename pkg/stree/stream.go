package stree

// Document is one root node plus its marker flags. Anchor labels are
// scoped to a single document: an alias never reaches across documents.
type Document struct {
	// Root is the document's top node. A nil root represents an empty
	// document and emits as an implicit null scalar.
	Root *Node

	// ExplicitStart forces the "---" marker even when not required.
	ExplicitStart bool

	// ExplicitEnd forces the "..." marker after the document.
	ExplicitEnd bool
}

// NewDocument returns a document wrapping root with implicit markers.
func NewDocument(root *Node) *Document {
	return &Document{Root: root}
}

// Stream is an ordered list of documents, the top-level unit every
// encode, decode, parse, and render operation works on.
type Stream struct {
	Documents []*Document
}

// NewStream returns a stream over the given documents.
func NewStream(docs ...*Document) *Stream {
	return &Stream{Documents: docs}
}

// Append adds documents to the end of the stream.
func (s *Stream) Append(docs ...*Document) {
	s.Documents = append(s.Documents, docs...)
}

// Len returns the number of documents in the stream.
func (s *Stream) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Documents)
}

// First returns the root of the first document, or nil for an empty
// stream. Most single-document callers only ever need this.
func (s *Stream) First() *Node {
	if s.Len() == 0 {
		return nil
	}
	return s.Documents[0].Root
}

// NodeCount returns the total number of nodes across all documents,
// aliases included. Used for conversion statistics.
func (s *Stream) NodeCount() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, d := range s.Documents {
		if d == nil {
			continue
		}
		d.Root.Walk(func(*Node) bool {
			total++
			return true
		})
	}
	return total
}

// Validate checks that every node has a well-formed kind, that aliases
// only reference anchors defined earlier in the same document, and that
// nesting stays within [DefaultMaxDepth]. It returns the first violation
// found, wrapped around one of the sentinel errors in this package.
func (s *Stream) Validate() error {
	return Emit(s, nopHandler{})
}

type nopHandler struct{}

func (nopHandler) HandleEvent(Event) error { return nil }
