package codec

import "github.com/matzehuels/treeline/pkg/stree"

// Encodable lets a type choose its own tree representation. EncodeWith
// receives a coder preloaded with the type's resolved tag; the hook
// picks a mode by calling one of the Set methods and may override tag,
// style, and implicitness. Values stored in the coder are encoded
// recursively afterwards.
type Encodable interface {
	EncodeWith(c *Coder) error
}

// Decodable lets a type rebuild itself from a tree node. DecodeWith
// receives a coder in the mode matching the node's kind, with payloads
// already decoded. The receiver is allocated, and its anchor bound,
// before the hook runs, so self-referential documents resolve.
type Decodable interface {
	DecodeWith(c *Coder) error
}

// Mode says which payload a [Coder] is carrying. The zero value is
// ModeMapping: a hook that never calls a setter represents as an empty
// mapping.
type Mode uint8

const (
	// ModeMapping carries ordered key/value entries.
	ModeMapping Mode = iota
	// ModeScalar carries a single text value.
	ModeScalar
	// ModeSequence carries an ordered list of values.
	ModeSequence
)

// String returns the lowercase name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeScalar:
		return "scalar"
	case ModeSequence:
		return "sequence"
	default:
		return "mapping"
	}
}

// Entry is one key/value pair of a mapping-mode coder, in insertion
// order.
type Entry struct {
	Key   string
	Value any
}

// Coder mediates between hook types and the engine. On encode it is the
// surface a hook writes its representation into; on decode it carries
// the already-decoded payload a hook reads its state from. The three
// modes are mutually exclusive: calling a setter switches the mode and
// drops the other payloads.
//
// A Coder belongs to a single hook invocation and is not safe for
// concurrent use.
type Coder struct {
	tag      string
	style    stree.Style
	implicit bool
	mode     Mode

	scalar  string
	seq     []any
	entries []Entry
}

// NewCoder returns a mapping-mode coder carrying the given tag.
func NewCoder(tag string) *Coder {
	return &Coder{tag: tag}
}

// Tag returns the tag the representation will carry (encode) or the tag
// the node carried (decode).
func (c *Coder) Tag() string { return c.tag }

// SetTag overrides the tag for the representation.
func (c *Coder) SetTag(tag string) { c.tag = tag }

// Style returns the presentation hint.
func (c *Coder) Style() stree.Style { return c.style }

// SetStyle sets the presentation hint carried to text rendering.
func (c *Coder) SetStyle(s stree.Style) { c.style = s }

// Implicit reports whether the tag may be omitted from rendered text.
func (c *Coder) Implicit() bool { return c.implicit }

// SetImplicit marks the tag as omittable in rendered text.
func (c *Coder) SetImplicit(v bool) { c.implicit = v }

// Mode returns the current payload mode.
func (c *Coder) Mode() Mode { return c.mode }

// SetScalar switches the coder to scalar mode holding the given text.
func (c *Coder) SetScalar(s string) {
	c.mode = ModeScalar
	c.scalar = s
	c.seq = nil
	c.entries = nil
}

// Scalar returns the scalar payload. It is only meaningful in
// ModeScalar.
func (c *Coder) Scalar() string { return c.scalar }

// SetSeq switches the coder to sequence mode holding the given items.
// The slice is used as-is, not copied.
func (c *Coder) SetSeq(items []any) {
	c.mode = ModeSequence
	c.seq = items
	c.scalar = ""
	c.entries = nil
}

// Append adds items to the sequence payload, switching to sequence mode
// if necessary.
func (c *Coder) Append(items ...any) {
	if c.mode != ModeSequence {
		c.SetSeq(nil)
	}
	c.seq = append(c.seq, items...)
}

// Seq returns the sequence payload. It is only meaningful in
// ModeSequence.
func (c *Coder) Seq() []any { return c.seq }

// SetEntry sets the value for a key in the mapping payload, switching to
// mapping mode if necessary. Setting an existing key replaces its value
// in place; new keys append in insertion order.
func (c *Coder) SetEntry(key string, value any) {
	if c.mode != ModeMapping {
		c.mode = ModeMapping
		c.scalar = ""
		c.seq = nil
		c.entries = nil
	}
	for i := range c.entries {
		if c.entries[i].Key == key {
			c.entries[i].Value = value
			return
		}
	}
	c.entries = append(c.entries, Entry{Key: key, Value: value})
}

// Entry returns the value stored under key and whether it was present.
func (c *Coder) Entry(key string) (any, bool) {
	for _, e := range c.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Entries returns the mapping payload in insertion order. The slice is
// shared with the coder; callers must not grow it.
func (c *Coder) Entries() []Entry { return c.entries }
