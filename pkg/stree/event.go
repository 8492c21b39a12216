package stree

import (
	"errors"
	"fmt"
)

// DefaultMaxDepth bounds tree nesting during event emission and tree
// building. Deeper input is reported as a structured error instead of
// exhausting the stack.
const DefaultMaxDepth = 10_000

var (
	// ErrMalformedNode is returned by [Emit] when a node has an invalid
	// kind, a nil child, or an alias without a target label.
	ErrMalformedNode = errors.New("malformed node")

	// ErrDanglingAlias is returned by [Emit] and [Builder.HandleEvent]
	// when an alias references an anchor label that has not appeared
	// earlier in the same document.
	ErrDanglingAlias = errors.New("alias references undefined anchor")

	// ErrDepthExceeded is returned by [Emit] and [Builder.HandleEvent]
	// when nesting exceeds the configured maximum depth.
	ErrDepthExceeded = errors.New("maximum nesting depth exceeded")

	// ErrUnexpectedEvent is returned by [Builder.HandleEvent] when an
	// event arrives outside any container that could receive it, such as
	// a scalar before document-start or a second root in one document.
	ErrUnexpectedEvent = errors.New("unexpected event")

	// ErrTruncatedStream is returned by [Builder.Stream] when the event
	// sequence ended before stream-end, leaving documents or collections
	// open.
	ErrTruncatedStream = errors.New("truncated event stream")
)

// EventType discriminates the members of the event vocabulary.
type EventType uint8

const (
	EventNone EventType = iota
	EventStreamStart
	EventStreamEnd
	EventDocumentStart
	EventDocumentEnd
	EventScalar
	EventSequenceStart
	EventSequenceEnd
	EventMappingStart
	EventMappingEnd
	EventAlias
)

// String returns the wire-style name of the event type.
func (t EventType) String() string {
	switch t {
	case EventStreamStart:
		return "stream-start"
	case EventStreamEnd:
		return "stream-end"
	case EventDocumentStart:
		return "document-start"
	case EventDocumentEnd:
		return "document-end"
	case EventScalar:
		return "scalar"
	case EventSequenceStart:
		return "sequence-start"
	case EventSequenceEnd:
		return "sequence-end"
	case EventMappingStart:
		return "mapping-start"
	case EventMappingEnd:
		return "mapping-end"
	case EventAlias:
		return "alias"
	default:
		return "none"
	}
}

// Event is one element of the flattened tree. Field meaning varies by
// type: Value carries scalar text, Anchor carries the label being defined
// (or, for EventAlias, the label being referenced), and Implicit marks an
// omittable tag or, on document events, an omittable marker.
type Event struct {
	Type     EventType
	Anchor   string
	Tag      string
	Value    string
	Style    Style
	Implicit bool
}

// Handler consumes an event stream. Implementations include [Builder],
// which reconstructs trees, [Collector], which records events, and the
// textio renderer, which writes text. Returning an error stops emission.
type Handler interface {
	HandleEvent(Event) error
}

// Collector is a [Handler] that records every event in order.
type Collector struct {
	Events []Event
}

// HandleEvent appends ev to the collected slice. It never fails.
func (c *Collector) HandleEvent(ev Event) error {
	c.Events = append(c.Events, ev)
	return nil
}

// Emit flattens s into events and drives h with them, validating node
// shape, alias ordering, and nesting depth along the way. Emission stops
// at the first handler error or validation failure.
func Emit(s *Stream, h Handler) error {
	e := emitter{h: h, maxDepth: DefaultMaxDepth}
	return e.stream(s)
}

// EmitEvents flattens s into a slice of events. It is a convenience
// wrapper around [Emit] with a [Collector].
func EmitEvents(s *Stream) ([]Event, error) {
	var c Collector
	if err := Emit(s, &c); err != nil {
		return nil, err
	}
	return c.Events, nil
}

type emitter struct {
	h        Handler
	maxDepth int
	depth    int
	anchors  map[string]bool
}

func (e *emitter) stream(s *Stream) error {
	if err := e.h.HandleEvent(Event{Type: EventStreamStart}); err != nil {
		return err
	}
	if s != nil {
		for _, doc := range s.Documents {
			if err := e.document(doc); err != nil {
				return err
			}
		}
	}
	return e.h.HandleEvent(Event{Type: EventStreamEnd})
}

func (e *emitter) document(d *Document) error {
	if d == nil {
		return fmt.Errorf("emit: %w: nil document", ErrMalformedNode)
	}
	// Anchor labels reset at each document boundary.
	e.anchors = make(map[string]bool)

	root := d.Root
	if root == nil {
		root = &Node{Kind: KindScalar, Tag: "!!null", Implicit: true}
	}
	if err := e.h.HandleEvent(Event{Type: EventDocumentStart, Implicit: !d.ExplicitStart}); err != nil {
		return err
	}
	if err := e.node(root); err != nil {
		return err
	}
	return e.h.HandleEvent(Event{Type: EventDocumentEnd, Implicit: !d.ExplicitEnd})
}

func (e *emitter) node(n *Node) error {
	if n == nil {
		return fmt.Errorf("emit: %w: nil node", ErrMalformedNode)
	}
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.maxDepth {
		return fmt.Errorf("emit: %w (limit %d)", ErrDepthExceeded, e.maxDepth)
	}
	if n.Anchor != "" {
		e.anchors[n.Anchor] = true
	}

	switch n.Kind {
	case KindScalar:
		return e.h.HandleEvent(Event{
			Type:     EventScalar,
			Anchor:   n.Anchor,
			Tag:      n.Tag,
			Value:    n.Value,
			Style:    n.Style,
			Implicit: n.Implicit,
		})

	case KindAlias:
		if n.Value == "" {
			return fmt.Errorf("emit: %w: alias without target", ErrMalformedNode)
		}
		if !e.anchors[n.Value] {
			return fmt.Errorf("emit: %w: %q", ErrDanglingAlias, n.Value)
		}
		return e.h.HandleEvent(Event{Type: EventAlias, Anchor: n.Value})

	case KindSequence:
		start := Event{
			Type:     EventSequenceStart,
			Anchor:   n.Anchor,
			Tag:      n.Tag,
			Style:    n.Style,
			Implicit: n.Implicit,
		}
		if err := e.h.HandleEvent(start); err != nil {
			return err
		}
		for _, item := range n.Items {
			if err := e.node(item); err != nil {
				return err
			}
		}
		return e.h.HandleEvent(Event{Type: EventSequenceEnd})

	case KindMapping:
		start := Event{
			Type:     EventMappingStart,
			Anchor:   n.Anchor,
			Tag:      n.Tag,
			Style:    n.Style,
			Implicit: n.Implicit,
		}
		if err := e.h.HandleEvent(start); err != nil {
			return err
		}
		for _, p := range n.Pairs {
			if err := e.node(p.Key); err != nil {
				return err
			}
			if err := e.node(p.Value); err != nil {
				return err
			}
		}
		return e.h.HandleEvent(Event{Type: EventMappingEnd})

	default:
		return fmt.Errorf("emit: %w: kind %s", ErrMalformedNode, n.Kind)
	}
}
