package errors

import (
	"errors"

	"github.com/matzehuels/treeline/pkg/codec"
	"github.com/matzehuels/treeline/pkg/stree"
)

// FromEngine maps an engine error to a coded surface error. Typed codec
// errors and stree sentinels map to their dedicated codes; anything else
// becomes INTERNAL_ERROR. A nil input stays nil.
func FromEngine(err error) *Error {
	if err == nil {
		return nil
	}

	var (
		unsupported *codec.UnsupportedValueError
		unknownTag  *codec.UnknownTagError
		unknownAnc  *codec.UnknownAnchorError
		malformed   *codec.MalformedScalarError
		depth       *codec.DepthExceededError
	)
	switch {
	case errors.As(err, &unsupported):
		return Wrap(ErrCodeUnsupportedValue, err, "value cannot be represented")
	case errors.As(err, &unknownTag):
		return Wrap(ErrCodeUnknownTag, err, "tag %s is not registered", unknownTag.Tag)
	case errors.As(err, &unknownAnc):
		return Wrap(ErrCodeUnknownAnchor, err, "anchor %q is not defined", unknownAnc.Anchor)
	case errors.As(err, &malformed):
		return Wrap(ErrCodeMalformedScalar, err, "text %q does not parse as %s", malformed.Value, malformed.Tag)
	case errors.As(err, &depth):
		return Wrap(ErrCodeDepthExceeded, err, "nesting exceeds %d levels", depth.Depth)
	case errors.Is(err, stree.ErrDanglingAlias):
		return Wrap(ErrCodeUnknownAnchor, err, "alias references an undefined anchor")
	case errors.Is(err, stree.ErrDepthExceeded):
		return Wrap(ErrCodeDepthExceeded, err, "nesting exceeds the configured limit")
	case errors.Is(err, stree.ErrMalformedNode),
		errors.Is(err, stree.ErrUnexpectedEvent),
		errors.Is(err, stree.ErrTruncatedStream):
		return Wrap(ErrCodeMalformedInput, err, "document structure is not valid")
	}
	return Wrap(ErrCodeInternal, err, "unexpected engine failure")
}
