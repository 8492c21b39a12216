// Package tags maps type tags to Go types and back.
//
// Tags are the type vocabulary of serialized trees. Built-in tags
// ("!!int", "!!timestamp") cover the scalar and collection types every
// document may contain; application tags ("!example.com,2026/widget")
// are bound to Go types or domain callbacks through a [Registry].
//
// The package-level [Register] and [RegisterDomain] bind into the shared
// default registry, which the codec uses unless a custom one is wired in.
// Registries are safe for concurrent use; bindings may be added at any
// time and become visible to subsequent operations.
package tags

import (
	"reflect"
	"strings"
)

// Canonical short-form tags for the built-in types. Trees store tags in
// this form; [Normalize] folds the long "tag:yaml.org,2002:" spelling
// into it on input.
const (
	Null      = "!!null"
	Bool      = "!!bool"
	Int       = "!!int"
	Float     = "!!float"
	Str       = "!!str"
	Binary    = "!!binary"
	Timestamp = "!!timestamp"
	Seq       = "!!seq"
	Map       = "!!map"
)

// GenericPrefix starts every fallback tag derived from a Go type name.
const GenericPrefix = "!go/"

// longPrefix is the expanded spelling of the "!!" shorthand.
const longPrefix = "tag:yaml.org,2002:"

// Normalize folds the long tag spelling into the short one:
// "tag:yaml.org,2002:int" becomes "!!int". Tags in any other form pass
// through unchanged.
func Normalize(tag string) string {
	if rest, ok := strings.CutPrefix(tag, longPrefix); ok {
		return "!!" + rest
	}
	return tag
}

// Builtin reports whether tag names one of the built-in types.
func Builtin(tag string) bool {
	switch Normalize(tag) {
	case Null, Bool, Int, Float, Str, Binary, Timestamp, Seq, Map:
		return true
	}
	return false
}

// GenericTag returns the fallback tag for a Go type, derived from its
// fully qualified name: "!go/<pkg-path>.<TypeName>". Pointers are
// unwrapped first. Unnamed and builtin-package types have no generic tag
// and yield "".
func GenericTag(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.PkgPath() == "" || t.Name() == "" {
		return ""
	}
	return GenericPrefix + t.PkgPath() + "." + stripTypeParams(t.Name())
}

// stripTypeParams removes the instantiation suffix from generic type
// names ("Box[int]" becomes "Box") so tags stay stable across
// instantiations.
func stripTypeParams(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}
