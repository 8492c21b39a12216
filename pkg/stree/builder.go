package stree

import "fmt"

// Builder is a [Handler] that reconstructs a [Stream] from events. Feed
// it a well-formed event sequence (stream-start through stream-end) and
// call [Builder.Stream] for the result. A Builder is single-use and not
// safe for concurrent use.
type Builder struct {
	// MaxDepth bounds container nesting. Zero means [DefaultMaxDepth].
	MaxDepth int

	stream  *Stream
	doc     *Document
	stack   []*frame
	anchors map[string]bool
	done    bool
}

type frame struct {
	node   *Node
	key    *Node // pending mapping key
	hasKey bool
}

// NewBuilder returns an empty builder ready to receive events.
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildStream reconstructs a stream from a complete event slice. It is a
// convenience wrapper around [Builder].
func BuildStream(events []Event) (*Stream, error) {
	b := NewBuilder()
	for _, ev := range events {
		if err := b.HandleEvent(ev); err != nil {
			return nil, err
		}
	}
	return b.Stream()
}

// Stream returns the reconstructed stream. It fails with
// [ErrTruncatedStream] until a stream-end event has been consumed.
func (b *Builder) Stream() (*Stream, error) {
	if !b.done {
		return nil, fmt.Errorf("build: %w", ErrTruncatedStream)
	}
	return b.stream, nil
}

// HandleEvent consumes the next event. It returns [ErrUnexpectedEvent]
// when the event cannot occur at the current position, [ErrDanglingAlias]
// for an alias whose anchor has not been defined yet, and
// [ErrDepthExceeded] when containers nest too deeply.
func (b *Builder) HandleEvent(ev Event) error {
	switch ev.Type {
	case EventStreamStart:
		if b.stream != nil || b.done {
			return fmt.Errorf("build: %w: duplicate stream-start", ErrUnexpectedEvent)
		}
		b.stream = &Stream{}
		return nil

	case EventStreamEnd:
		if err := b.requireStream("stream-end"); err != nil {
			return err
		}
		if b.doc != nil {
			return fmt.Errorf("build: %w: stream-end inside open document", ErrUnexpectedEvent)
		}
		b.done = true
		return nil

	case EventDocumentStart:
		if err := b.requireStream("document-start"); err != nil {
			return err
		}
		if b.doc != nil {
			return fmt.Errorf("build: %w: nested document-start", ErrUnexpectedEvent)
		}
		b.doc = &Document{ExplicitStart: !ev.Implicit}
		b.anchors = make(map[string]bool)
		return nil

	case EventDocumentEnd:
		if err := b.requireDocument("document-end"); err != nil {
			return err
		}
		if len(b.stack) != 0 {
			return fmt.Errorf("build: %w: document-end inside open collection", ErrUnexpectedEvent)
		}
		b.doc.ExplicitEnd = !ev.Implicit
		b.stream.Documents = append(b.stream.Documents, b.doc)
		b.doc = nil
		return nil

	case EventScalar:
		node := &Node{
			Kind:     KindScalar,
			Tag:      ev.Tag,
			Value:    ev.Value,
			Anchor:   ev.Anchor,
			Style:    ev.Style,
			Implicit: ev.Implicit,
		}
		return b.place("scalar", node)

	case EventAlias:
		if err := b.requireDocument("alias"); err != nil {
			return err
		}
		if ev.Anchor == "" {
			return fmt.Errorf("build: %w: alias without target", ErrUnexpectedEvent)
		}
		if !b.anchors[ev.Anchor] {
			return fmt.Errorf("build: %w: %q", ErrDanglingAlias, ev.Anchor)
		}
		return b.place("alias", Alias(ev.Anchor))

	case EventSequenceStart:
		return b.open("sequence-start", &Node{
			Kind:     KindSequence,
			Tag:      ev.Tag,
			Anchor:   ev.Anchor,
			Style:    ev.Style,
			Implicit: ev.Implicit,
		})

	case EventSequenceEnd:
		return b.close("sequence-end", KindSequence)

	case EventMappingStart:
		return b.open("mapping-start", &Node{
			Kind:     KindMapping,
			Tag:      ev.Tag,
			Anchor:   ev.Anchor,
			Style:    ev.Style,
			Implicit: ev.Implicit,
		})

	case EventMappingEnd:
		return b.close("mapping-end", KindMapping)

	default:
		return fmt.Errorf("build: %w: %s", ErrUnexpectedEvent, ev.Type)
	}
}

func (b *Builder) requireStream(what string) error {
	if b.stream == nil || b.done {
		return fmt.Errorf("build: %w: %s outside stream", ErrUnexpectedEvent, what)
	}
	return nil
}

func (b *Builder) requireDocument(what string) error {
	if err := b.requireStream(what); err != nil {
		return err
	}
	if b.doc == nil {
		return fmt.Errorf("build: %w: %s outside document", ErrUnexpectedEvent, what)
	}
	return nil
}

// open starts a container: it is attached to its parent immediately so
// that pending mapping keys resolve in event order, then pushed so the
// following events fill it in.
func (b *Builder) open(what string, node *Node) error {
	if err := b.requireDocument(what); err != nil {
		return err
	}
	maxDepth := b.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if len(b.stack) >= maxDepth {
		return fmt.Errorf("build: %w (limit %d)", ErrDepthExceeded, maxDepth)
	}
	if err := b.attach(what, node); err != nil {
		return err
	}
	b.stack = append(b.stack, &frame{node: node})
	return nil
}

func (b *Builder) close(what string, kind Kind) error {
	if err := b.requireDocument(what); err != nil {
		return err
	}
	if len(b.stack) == 0 {
		return fmt.Errorf("build: %w: %s without matching start", ErrUnexpectedEvent, what)
	}
	top := b.stack[len(b.stack)-1]
	if top.node.Kind != kind {
		return fmt.Errorf("build: %w: %s closes open %s", ErrUnexpectedEvent, what, top.node.Kind)
	}
	if top.hasKey {
		return fmt.Errorf("build: %w: %s with key awaiting value", ErrUnexpectedEvent, what)
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

func (b *Builder) place(what string, node *Node) error {
	if err := b.requireDocument(what); err != nil {
		return err
	}
	return b.attach(what, node)
}

// attach hangs node off the innermost open container, or sets it as the
// document root when no container is open. Anchor labels become visible
// to aliases the moment the node is attached.
func (b *Builder) attach(what string, node *Node) error {
	if node.Anchor != "" {
		b.anchors[node.Anchor] = true
	}
	if len(b.stack) == 0 {
		if b.doc.Root != nil {
			return fmt.Errorf("build: %w: second root %s in document", ErrUnexpectedEvent, what)
		}
		b.doc.Root = node
		return nil
	}
	top := b.stack[len(b.stack)-1]
	switch top.node.Kind {
	case KindSequence:
		top.node.Items = append(top.node.Items, node)
	case KindMapping:
		if !top.hasKey {
			top.key, top.hasKey = node, true
		} else {
			top.node.Pairs = append(top.node.Pairs, Pair{Key: top.key, Value: node})
			top.key, top.hasKey = nil, false
		}
	default:
		return fmt.Errorf("build: %w: %s inside %s", ErrUnexpectedEvent, what, top.node.Kind)
	}
	return nil
}
