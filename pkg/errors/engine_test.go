package errors

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/matzehuels/treeline/pkg/codec"
	"github.com/matzehuels/treeline/pkg/stree"
)

func TestFromEngine(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{
			name: "unsupported value",
			err:  &codec.UnsupportedValueError{Type: reflect.TypeOf(make(chan int))},
			code: ErrCodeUnsupportedValue,
		},
		{
			name: "unknown tag",
			err:  &codec.UnknownTagError{Tag: "!mystery"},
			code: ErrCodeUnknownTag,
		},
		{
			name: "unknown anchor",
			err:  &codec.UnknownAnchorError{Anchor: "ghost"},
			code: ErrCodeUnknownAnchor,
		},
		{
			name: "malformed scalar",
			err:  &codec.MalformedScalarError{Tag: "!!int", Value: "abc"},
			code: ErrCodeMalformedScalar,
		},
		{
			name: "depth exceeded",
			err:  &codec.DepthExceededError{Depth: 100},
			code: ErrCodeDepthExceeded,
		},
		{
			name: "wrapped typed error",
			err:  fmt.Errorf("decode: %w", &codec.UnknownTagError{Tag: "!x"}),
			code: ErrCodeUnknownTag,
		},
		{
			name: "dangling alias sentinel",
			err:  fmt.Errorf("build: %w", stree.ErrDanglingAlias),
			code: ErrCodeUnknownAnchor,
		},
		{
			name: "depth sentinel",
			err:  stree.ErrDepthExceeded,
			code: ErrCodeDepthExceeded,
		},
		{
			name: "malformed node sentinel",
			err:  stree.ErrMalformedNode,
			code: ErrCodeMalformedInput,
		},
		{
			name: "unexpected event sentinel",
			err:  stree.ErrUnexpectedEvent,
			code: ErrCodeMalformedInput,
		},
		{
			name: "truncated stream sentinel",
			err:  stree.ErrTruncatedStream,
			code: ErrCodeMalformedInput,
		},
		{
			name: "unrecognized error",
			err:  errors.New("disk on fire"),
			code: ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromEngine(tt.err)
			if got == nil {
				t.Fatal("FromEngine() = nil, want coded error")
			}
			if got.Code != tt.code {
				t.Errorf("Code = %v, want %v", got.Code, tt.code)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("errors.Is(FromEngine(err), err) = false, want true")
			}
		})
	}
}

func TestFromEngineNil(t *testing.T) {
	if got := FromEngine(nil); got != nil {
		t.Errorf("FromEngine(nil) = %v, want nil", got)
	}
}

func TestFromEnginePreservesDetail(t *testing.T) {
	var unknownTag *codec.UnknownTagError
	err := FromEngine(&codec.UnknownTagError{Tag: "!geo/point"})
	if !errors.As(err, &unknownTag) {
		t.Fatal("errors.As() = false, want typed cause to survive wrapping")
	}
	if unknownTag.Tag != "!geo/point" {
		t.Errorf("Tag = %q, want %q", unknownTag.Tag, "!geo/point")
	}
}
