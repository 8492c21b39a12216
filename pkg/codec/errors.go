package codec

import (
	"fmt"
	"reflect"
)

// UnsupportedValueError is returned by [Encoder.Encode] for Go values
// that have no tree representation and no hook: functions, channels,
// complex numbers, unsafe pointers. The decoder returns it for mapping
// keys that decode to values Go cannot hash.
type UnsupportedValueError struct {
	Type reflect.Type
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("codec: unsupported value of type %s", e.Type)
}

// UnknownTagError is returned by the decoder when a tag resolves to no
// registered type, no domain callback, and no built-in construction for
// the node's shape.
type UnknownTagError struct {
	Tag string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("codec: unknown tag %q", e.Tag)
}

// UnknownAnchorError is returned by the decoder when an alias references
// an anchor label that is not bound in the current document.
type UnknownAnchorError struct {
	Anchor string
}

func (e *UnknownAnchorError) Error() string {
	return fmt.Sprintf("codec: alias references unknown anchor %q", e.Anchor)
}

// MalformedScalarError is returned by the decoder when scalar text
// cannot be parsed as its explicit tag, or when a registered type cannot
// be constructed from the payload it was given.
type MalformedScalarError struct {
	Tag   string
	Value string
}

func (e *MalformedScalarError) Error() string {
	return fmt.Sprintf("codec: malformed %s scalar %q", e.Tag, e.Value)
}

// DepthExceededError is returned by both directions when nesting passes
// the configured maximum depth, instead of exhausting the stack on
// adversarial or runaway input.
type DepthExceededError struct {
	Depth int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("codec: nesting depth exceeds %d", e.Depth)
}
