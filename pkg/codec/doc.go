// Package codec converts between live Go values and serialization trees.
//
// The [Encoder] lowers values into [stree.Stream] trees; the [Decoder]
// raises trees back into values. Both directions preserve object
// identity through anchors and aliases, so shared references and cyclic
// structures survive a round trip.
//
// # Encoding
//
//	s, err := codec.Encode(map[string]any{"size": 3})
//
// Each argument becomes one document. Built-in values (nil, bool,
// integers, floats, strings, []byte, time.Time, slices, arrays, maps)
// lower to tagged scalars and collections. Structs lower to mappings
// keyed by exported field names, tagged with their registered tag or a
// generic "!go/..." fallback. Functions, channels, and other
// non-representable values fail with [UnsupportedValueError].
//
// # Decoding
//
//	v, err := codec.Decode(s)        // first document
//	vs, err := codec.DecodeAll(s)    // every document
//
// Untagged plain scalars resolve by inference (null, bool, int, float,
// timestamp, then string); explicit built-in tags parse strictly and
// fail with [MalformedScalarError] on bad text. Sequences become []any,
// mappings become map[any]any, and application tags resolve through the
// registry. Registered types decode to *T.
//
// # Custom Types
//
// Bind a tag with [tags.Register], then either rely on the default field
// mapping or implement the hooks:
//
//	type Temperature struct{ celsius float64 }
//
//	func (t *Temperature) EncodeWith(c *codec.Coder) error {
//		c.SetScalar(strconv.FormatFloat(t.celsius, 'f', 1, 64))
//		return nil
//	}
//
//	func (t *Temperature) DecodeWith(c *codec.Coder) error {
//		f, err := strconv.ParseFloat(c.Scalar(), 64)
//		t.celsius = f
//		return err
//	}
//
// The [Coder] is the only surface hooks touch: they never see nodes,
// anchors, or the registry. Types without hooks encode their exported
// fields and decode by case-insensitive field matching, silently
// dropping unknown keys unless [Decoder.StrictFields] is set.
//
// [tags.RegisterDomain] covers whole tag families with one callback that
// receives the full tag and the decoded default shape.
//
// # Identity
//
// The encoder tracks pointers, non-empty slices, and maps per document.
// Reaching the same object twice emits an anchor on the first occurrence
// and aliases after that. The decoder binds each anchor before the node
// is populated, which is what lets self-referential documents resolve:
//
//	type ring struct{ Next *ring }
//	r := &ring{}
//	r.Next = r
//	s, _ := codec.Encode(r)   // one anchor, one alias
//
// Anchors never cross document boundaries; an alias into another
// document fails with [UnknownAnchorError].
//
// # Limits
//
// Nesting is bounded by MaxDepth (default [stree.DefaultMaxDepth]) in
// both directions, reported as [DepthExceededError].
package codec
