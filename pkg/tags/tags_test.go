package tags

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name string
}

type gadget struct {
	ID int
}

type box[T any] struct {
	Value T
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"tag:yaml.org,2002:int", "!!int"},
		{"tag:yaml.org,2002:str", "!!str"},
		{"!!bool", "!!bool"},
		{"!example.com,2026/widget", "!example.com,2026/widget"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestBuiltin(t *testing.T) {
	assert.True(t, Builtin("!!int"))
	assert.True(t, Builtin("tag:yaml.org,2002:timestamp"))
	assert.False(t, Builtin("!example.com,2026/widget"))
	assert.False(t, Builtin(""))
}

func TestGenericTag(t *testing.T) {
	want := "!go/github.com/matzehuels/treeline/pkg/tags.widget"
	assert.Equal(t, want, GenericTag(reflect.TypeOf(widget{})))
	assert.Equal(t, want, GenericTag(reflect.TypeOf(&widget{})), "pointers unwrap")

	assert.Equal(t, "", GenericTag(reflect.TypeOf(42)), "builtin types have no generic tag")
	assert.Equal(t, "", GenericTag(reflect.TypeOf(struct{ X int }{})), "unnamed types have no generic tag")

	generic := GenericTag(reflect.TypeOf(box[int]{}))
	assert.Equal(t, "!go/github.com/matzehuels/treeline/pkg/tags.box", generic,
		"type parameters are stripped")
}

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("!example.com,2026/widget", widget{}))

	res, ok := r.ResolveDecode("!example.com,2026/widget")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(widget{}), res.Type)
	assert.Nil(t, res.Domain)

	tag, ok := r.ResolveEncode(widget{})
	require.True(t, ok)
	assert.Equal(t, "!example.com,2026/widget", tag)

	tag, ok = r.ResolveEncode(&widget{})
	require.True(t, ok, "pointer values resolve through their element type")
	assert.Equal(t, "!example.com,2026/widget", tag)

	_, ok = r.ResolveDecode("!example.com,2026/unknown")
	assert.False(t, ok)
	_, ok = r.ResolveEncode(gadget{})
	assert.False(t, ok)
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Register("", widget{}), ErrEmptyTag)
	assert.ErrorIs(t, r.Register("!w", nil), ErrNilValue)
	assert.ErrorIs(t, r.RegisterDomain("", nil), ErrEmptyTag)
	assert.ErrorIs(t, r.RegisterDomain("example.com,2026", nil), ErrNilValue)
}

func TestRegisterReplacement(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("!w", widget{}))
	require.NoError(t, r.Register("!w", &widget{}), "pointer form is the same registration")

	// Re-binding the tag moves decoding to the new type.
	require.NoError(t, r.Register("!w", gadget{}))
	res, ok := r.ResolveDecode("!w")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(gadget{}), res.Type)

	// Encode bindings move only when the type itself is re-registered.
	tag, ok := r.ResolveEncode(widget{})
	require.True(t, ok)
	assert.Equal(t, "!w", tag)
}

func TestLastTagWinsForEncoding(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("!primary", widget{}))
	require.NoError(t, r.Register("!legacy", widget{}))

	// Both tags decode to the type; output uses the newest binding.
	for _, tag := range []string{"!primary", "!legacy"} {
		res, ok := r.ResolveDecode(tag)
		require.True(t, ok, tag)
		assert.Equal(t, reflect.TypeOf(widget{}), res.Type)
	}
	tag, ok := r.ResolveEncode(widget{})
	require.True(t, ok)
	assert.Equal(t, "!legacy", tag)
}

func TestRegisterNormalizesLongForm(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("tag:yaml.org,2002:widget", widget{}))
	_, ok := r.ResolveDecode("!!widget")
	assert.True(t, ok)
}

func TestDomainResolution(t *testing.T) {
	r := NewRegistry()
	var broad, narrow DomainFunc
	broad = func(tag string, v any) (any, error) { return "broad", nil }
	narrow = func(tag string, v any) (any, error) { return "narrow", nil }

	require.NoError(t, r.RegisterDomain("example.com,2026", broad))
	require.NoError(t, r.RegisterDomain("example.com,2026/nested", narrow))

	res, ok := r.ResolveDecode("!example.com,2026/widget")
	require.True(t, ok)
	require.NotNil(t, res.Domain)
	out, err := res.Domain(res.Tag, nil)
	require.NoError(t, err)
	assert.Equal(t, "broad", out)

	res, ok = r.ResolveDecode("!example.com,2026/nested/widget")
	require.True(t, ok, "longest domain prefix wins")
	out, err = res.Domain(res.Tag, nil)
	require.NoError(t, err)
	assert.Equal(t, "narrow", out)

	// An exact type binding beats any domain.
	require.NoError(t, r.Register("!example.com,2026/widget", widget{}))
	res, ok = r.ResolveDecode("!example.com,2026/widget")
	require.True(t, ok)
	assert.NotNil(t, res.Type)
	assert.Nil(t, res.Domain)

	// A bare domain tag with no suffix does not match.
	_, ok = r.ResolveDecode("!example.com,2026/")
	assert.False(t, ok)
}

func TestDomainReplacement(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterDomain("d.example", func(string, any) (any, error) { return 1, nil }))
	require.NoError(t, r.RegisterDomain("d.example", func(string, any) (any, error) { return 2, nil }))

	res, ok := r.ResolveDecode("!d.example/x")
	require.True(t, ok)
	out, err := res.Domain(res.Tag, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out, "later domain registration replaces the callback")
}

func TestTagsSnapshot(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("!a", widget{}))
	require.NoError(t, r.Register("!b", gadget{}))
	assert.ElementsMatch(t, []string{"!a", "!b"}, r.Tags())
}

func TestRegistryConcurrency(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("!w", widget{}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Register("!w", widget{})
				_ = r.RegisterDomain("spin.example", func(string, any) (any, error) { return nil, nil })
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, ok := r.ResolveDecode("!w"); !ok {
					t.Error("registered tag disappeared")
					return
				}
				r.ResolveEncode(widget{})
				r.ResolveDecode("!spin.example/x")
			}
		}()
	}
	wg.Wait()
}

func TestDefaultRegistry(t *testing.T) {
	require.NoError(t, Register("!tags-test.example/widget", widget{}))
	res, ok := Default().ResolveDecode("!tags-test.example/widget")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(widget{}), res.Type)

	require.NoError(t, RegisterDomain("tags-test.example/domain", func(tag string, v any) (any, error) {
		return tag, nil
	}))
	_, ok = Default().ResolveDecode("!tags-test.example/domain/x")
	assert.True(t, ok)
}
