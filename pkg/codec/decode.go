package codec

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/matzehuels/treeline/pkg/stree"
	"github.com/matzehuels/treeline/pkg/tags"
)

// Decoder raises serialization trees back into Go values. The zero value
// is ready to use with the default registry and depth limit.
//
// A Decoder carries per-call state and is not safe for concurrent use;
// the package-level [Decode] and [DecodeAll] create a fresh one per call.
type Decoder struct {
	// Registry resolves tag-to-type bindings. Nil means [tags.Default].
	Registry *tags.Registry

	// MaxDepth bounds nesting. Zero means [stree.DefaultMaxDepth].
	MaxDepth int

	// StrictFields makes mapping keys that match no struct field an
	// error when populating registered hookless types. The default is
	// to drop them silently.
	StrictFields bool

	anchors map[string]any
}

// NewDecoder returns a decoder with default settings.
func NewDecoder() *Decoder { return &Decoder{} }

// Decode raises the first document of s using a fresh [Decoder].
func Decode(s *stree.Stream) (any, error) {
	return NewDecoder().Decode(s)
}

// DecodeAll raises every document of s using a fresh [Decoder].
func DecodeAll(s *stree.Stream) ([]any, error) {
	return NewDecoder().DecodeAll(s)
}

func (d *Decoder) registry() *tags.Registry {
	if d.Registry != nil {
		return d.Registry
	}
	return tags.Default()
}

func (d *Decoder) maxDepth() int {
	if d.MaxDepth > 0 {
		return d.MaxDepth
	}
	return stree.DefaultMaxDepth
}

// Decode raises the first document into a value. Empty streams and empty
// documents yield nil.
func (d *Decoder) Decode(s *stree.Stream) (any, error) {
	if s.Len() == 0 {
		return nil, nil
	}
	return d.decodeDocument(s.Documents[0])
}

// DecodeAll raises every document of s, one value per document. The
// anchor table resets at each document boundary, so aliases never
// resolve across documents.
func (d *Decoder) DecodeAll(s *stree.Stream) ([]any, error) {
	if s == nil {
		return nil, nil
	}
	out := make([]any, 0, s.Len())
	for _, doc := range s.Documents {
		v, err := d.decodeDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *Decoder) decodeDocument(doc *stree.Document) (any, error) {
	d.anchors = make(map[string]any)
	if doc == nil || doc.Root == nil {
		return nil, nil
	}
	return d.decodeNode(doc.Root, 1)
}

func (d *Decoder) decodeNode(n *stree.Node, depth int) (any, error) {
	if depth > d.maxDepth() {
		return nil, &DepthExceededError{Depth: d.maxDepth()}
	}
	switch n.Kind {
	case stree.KindAlias:
		v, ok := d.anchors[n.Value]
		if !ok {
			return nil, &UnknownAnchorError{Anchor: n.Value}
		}
		return v, nil
	case stree.KindScalar:
		return d.decodeScalar(n)
	case stree.KindSequence:
		return d.decodeSequence(n, depth)
	case stree.KindMapping:
		return d.decodeMapping(n, depth)
	default:
		return nil, fmt.Errorf("codec: cannot decode %s node", n.Kind)
	}
}

// bind publishes v under the node's anchor label, if it has one.
func (d *Decoder) bind(n *stree.Node, v any) {
	if n.Anchor != "" {
		d.anchors[n.Anchor] = v
	}
}

func (d *Decoder) decodeScalar(n *stree.Node) (any, error) {
	tag := tags.Normalize(n.Tag)
	var v any
	switch {
	case tag == "" || tag == "!":
		v = d.plainScalar(n)
	case tags.Builtin(tag):
		parsed, err := ParseScalar(tag, n.Value)
		if err != nil {
			return nil, err
		}
		v = parsed
	default:
		return d.decodeTaggedScalar(n, tag)
	}
	d.bind(n, v)
	return v, nil
}

// plainScalar resolves an untagged scalar. Quoted and block styles pin
// the text as a string; plain style goes through inference.
func (d *Decoder) plainScalar(n *stree.Node) any {
	switch n.Style {
	case stree.StyleSingleQuoted, stree.StyleDoubleQuoted, stree.StyleLiteral, stree.StyleFolded:
		return n.Value
	}
	v, _ := infer(n.Value)
	return v
}

func (d *Decoder) decodeTaggedScalar(n *stree.Node, tag string) (any, error) {
	res, ok := d.registry().ResolveDecode(tag)
	if !ok {
		return nil, &UnknownTagError{Tag: tag}
	}
	if res.Domain != nil {
		out, err := res.Domain(tag, n.Value)
		if err != nil {
			return nil, fmt.Errorf("codec: domain callback for %s: %w", tag, err)
		}
		d.bind(n, out)
		return out, nil
	}

	pv := reflect.New(res.Type)
	d.bind(n, pv.Interface())
	if dec, ok := pv.Interface().(Decodable); ok {
		c := &Coder{tag: tag, style: n.Style, implicit: n.Implicit, mode: ModeScalar, scalar: n.Value}
		if err := dec.DecodeWith(c); err != nil {
			return nil, fmt.Errorf("codec: decode hook for %s: %w", res.Type, err)
		}
		return pv.Interface(), nil
	}
	// No hook: only string-kinded types can absorb a bare scalar.
	if res.Type.Kind() == reflect.String {
		pv.Elem().SetString(n.Value)
		return pv.Interface(), nil
	}
	return nil, &MalformedScalarError{Tag: tag, Value: n.Value}
}

func (d *Decoder) decodeSequence(n *stree.Node, depth int) (any, error) {
	tag := tags.Normalize(n.Tag)
	switch tag {
	case "", "!", tags.Seq:
		v, err := d.defaultSeq(n, depth)
		if err != nil {
			return nil, err
		}
		return v, nil
	}

	res, ok := d.registry().ResolveDecode(tag)
	if !ok {
		return nil, &UnknownTagError{Tag: tag}
	}
	if res.Domain != nil {
		// The raw payload is built (and anchored) first; the callback
		// result is what the caller sees.
		raw, err := d.defaultSeq(n, depth)
		if err != nil {
			return nil, err
		}
		out, err := res.Domain(tag, raw)
		if err != nil {
			return nil, fmt.Errorf("codec: domain callback for %s: %w", tag, err)
		}
		return out, nil
	}

	pv := reflect.New(res.Type)
	d.bind(n, pv.Interface())
	if dec, ok := pv.Interface().(Decodable); ok {
		items, err := d.decodeItems(n, depth)
		if err != nil {
			return nil, err
		}
		c := &Coder{tag: tag, style: n.Style, implicit: n.Implicit, mode: ModeSequence, seq: items}
		if err := dec.DecodeWith(c); err != nil {
			return nil, fmt.Errorf("codec: decode hook for %s: %w", res.Type, err)
		}
		return pv.Interface(), nil
	}
	if res.Type.Kind() == reflect.Slice {
		items, err := d.decodeItems(n, depth)
		if err != nil {
			return nil, err
		}
		sl := reflect.MakeSlice(res.Type, len(items), len(items))
		pv.Elem().Set(sl)
		for i, item := range items {
			if err := convertValue(item, sl.Index(i)); err != nil {
				return nil, fmt.Errorf("codec: %s item %d: %w", tag, i, err)
			}
		}
		return pv.Interface(), nil
	}
	return nil, &UnknownTagError{Tag: tag}
}

// defaultSeq builds the []any shape. The slice is allocated at full
// length and anchored before items decode, so aliases back into it, and
// cycles through it, resolve against live storage.
func (d *Decoder) defaultSeq(n *stree.Node, depth int) ([]any, error) {
	out := make([]any, len(n.Items))
	d.bind(n, out)
	for i, item := range n.Items {
		v, err := d.decodeNode(item, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// decodeItems is defaultSeq without the anchor binding, for payloads
// handed to hooks whose anchor is already bound to the receiver.
func (d *Decoder) decodeItems(n *stree.Node, depth int) ([]any, error) {
	out := make([]any, len(n.Items))
	for i, item := range n.Items {
		v, err := d.decodeNode(item, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d *Decoder) decodeMapping(n *stree.Node, depth int) (any, error) {
	tag := tags.Normalize(n.Tag)
	switch tag {
	case "", "!", tags.Map:
		v, err := d.defaultMap(n, depth)
		if err != nil {
			return nil, err
		}
		return v, nil
	}

	res, ok := d.registry().ResolveDecode(tag)
	if !ok {
		return nil, &UnknownTagError{Tag: tag}
	}
	if res.Domain != nil {
		raw, err := d.defaultMap(n, depth)
		if err != nil {
			return nil, err
		}
		out, err := res.Domain(tag, raw)
		if err != nil {
			return nil, fmt.Errorf("codec: domain callback for %s: %w", tag, err)
		}
		return out, nil
	}

	pv := reflect.New(res.Type)
	d.bind(n, pv.Interface())
	if dec, ok := pv.Interface().(Decodable); ok {
		c := &Coder{tag: tag, style: n.Style, implicit: n.Implicit, mode: ModeMapping}
		for _, p := range n.Pairs {
			k, err := d.decodeNode(p.Key, depth+1)
			if err != nil {
				return nil, err
			}
			v, err := d.decodeNode(p.Value, depth+1)
			if err != nil {
				return nil, err
			}
			c.entries = append(c.entries, Entry{Key: entryKey(k), Value: v})
		}
		if err := dec.DecodeWith(c); err != nil {
			return nil, fmt.Errorf("codec: decode hook for %s: %w", res.Type, err)
		}
		return pv.Interface(), nil
	}
	switch res.Type.Kind() {
	case reflect.Struct:
		if err := d.fillStructFields(pv.Elem(), n, depth); err != nil {
			return nil, err
		}
		return pv.Interface(), nil
	case reflect.Map:
		m := reflect.MakeMapWithSize(res.Type, len(n.Pairs))
		pv.Elem().Set(m)
		for _, p := range n.Pairs {
			k, err := d.decodeNode(p.Key, depth+1)
			if err != nil {
				return nil, err
			}
			v, err := d.decodeNode(p.Value, depth+1)
			if err != nil {
				return nil, err
			}
			key := reflect.New(res.Type.Key()).Elem()
			if err := convertValue(k, key); err != nil {
				return nil, fmt.Errorf("codec: %s key: %w", tag, err)
			}
			val := reflect.New(res.Type.Elem()).Elem()
			if err := convertValue(v, val); err != nil {
				return nil, fmt.Errorf("codec: %s value: %w", tag, err)
			}
			m.SetMapIndex(key, val)
		}
		return pv.Interface(), nil
	}
	return nil, &UnknownTagError{Tag: tag}
}

// defaultMap builds the map[any]any shape, anchored before pairs decode
// so self-references resolve.
func (d *Decoder) defaultMap(n *stree.Node, depth int) (map[any]any, error) {
	out := make(map[any]any, len(n.Pairs))
	d.bind(n, out)
	for _, p := range n.Pairs {
		k, err := d.decodeNode(p.Key, depth+1)
		if err != nil {
			return nil, err
		}
		if k != nil && !reflect.TypeOf(k).Comparable() {
			return nil, &UnsupportedValueError{Type: reflect.TypeOf(k)}
		}
		v, err := d.decodeNode(p.Value, depth+1)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// fillStructFields populates exported fields from mapping pairs. Keys
// match field names exactly first, then case-insensitively. Keys that
// match nothing are dropped unless StrictFields is set.
func (d *Decoder) fillStructFields(sv reflect.Value, n *stree.Node, depth int) error {
	t := sv.Type()
	fields := reflect.VisibleFields(t)
	for _, p := range n.Pairs {
		k, err := d.decodeNode(p.Key, depth+1)
		if err != nil {
			return err
		}
		name, ok := k.(string)
		if !ok {
			if d.StrictFields {
				return fmt.Errorf("codec: %s: non-string field key %v", t, k)
			}
			continue
		}
		f, ok := matchField(fields, name)
		if !ok {
			if d.StrictFields {
				return fmt.Errorf("codec: %s has no field %q", t, name)
			}
			continue
		}
		v, err := d.decodeNode(p.Value, depth+1)
		if err != nil {
			return err
		}
		fv := fieldByIndexAlloc(sv, f.Index)
		if err := convertValue(v, fv); err != nil {
			return fmt.Errorf("codec: field %s.%s: %w", t, f.Name, err)
		}
	}
	return nil
}

func matchField(fields []reflect.StructField, name string) (reflect.StructField, bool) {
	for _, f := range fields {
		if f.Anonymous || f.PkgPath != "" {
			continue
		}
		if f.Name == name {
			return f, true
		}
	}
	for _, f := range fields {
		if f.Anonymous || f.PkgPath != "" {
			continue
		}
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// fieldByIndexAlloc walks a promoted field path, allocating nil embedded
// pointers so the leaf is settable.
func fieldByIndexAlloc(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

func entryKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// convertValue assigns a decoded value into a typed destination,
// converting the canonical shapes (int, uint64, float64, string, []any,
// map[any]any, *T) into whatever the destination declares.
func convertValue(src any, dst reflect.Value) error {
	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	sv := reflect.ValueOf(src)
	dt := dst.Type()

	if sv.Type().AssignableTo(dt) {
		dst.Set(sv)
		return nil
	}
	// A decoded *T fills a T destination by dereference.
	if sv.Kind() == reflect.Pointer && !sv.IsNil() && sv.Elem().Type().AssignableTo(dt) {
		dst.Set(sv.Elem())
		return nil
	}
	if dt.Kind() == reflect.Pointer {
		p := reflect.New(dt.Elem())
		if err := convertValue(src, p.Elem()); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}

	switch dt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := toInt64(sv)
		if err != nil {
			return err
		}
		if dst.OverflowInt(i) {
			return fmt.Errorf("value %d overflows %s", i, dt)
		}
		dst.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := toUint64(sv)
		if err != nil {
			return err
		}
		if dst.OverflowUint(u) {
			return fmt.Errorf("value %d overflows %s", u, dt)
		}
		dst.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(sv)
		if err != nil {
			return err
		}
		if dst.OverflowFloat(f) {
			return fmt.Errorf("value %g overflows %s", f, dt)
		}
		dst.SetFloat(f)
	case reflect.Bool:
		b, ok := src.(bool)
		if !ok {
			return fmt.Errorf("cannot convert %T to %s", src, dt)
		}
		dst.SetBool(b)
	case reflect.String:
		switch s := src.(type) {
		case string:
			dst.SetString(s)
		case []byte:
			dst.SetString(string(s))
		default:
			return fmt.Errorf("cannot convert %T to %s", src, dt)
		}
	case reflect.Slice:
		items, ok := src.([]any)
		if !ok {
			return fmt.Errorf("cannot convert %T to %s", src, dt)
		}
		sl := reflect.MakeSlice(dt, len(items), len(items))
		for i, item := range items {
			if err := convertValue(item, sl.Index(i)); err != nil {
				return err
			}
		}
		dst.Set(sl)
	case reflect.Map:
		entries, ok := src.(map[any]any)
		if !ok {
			return fmt.Errorf("cannot convert %T to %s", src, dt)
		}
		m := reflect.MakeMapWithSize(dt, len(entries))
		for k, v := range entries {
			key := reflect.New(dt.Key()).Elem()
			if err := convertValue(k, key); err != nil {
				return err
			}
			val := reflect.New(dt.Elem()).Elem()
			if err := convertValue(v, val); err != nil {
				return err
			}
			m.SetMapIndex(key, val)
		}
		dst.Set(m)
	case reflect.Struct:
		entries, ok := src.(map[any]any)
		if !ok {
			return fmt.Errorf("cannot convert %T to %s", src, dt)
		}
		fields := reflect.VisibleFields(dt)
		for k, v := range entries {
			name, ok := k.(string)
			if !ok {
				continue
			}
			f, ok := matchField(fields, name)
			if !ok {
				continue
			}
			if err := convertValue(v, fieldByIndexAlloc(dst, f.Index)); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("cannot convert %T to %s", src, dt)
	}
	return nil
}

func toInt64(sv reflect.Value) (int64, error) {
	switch sv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return sv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := sv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := sv.Float()
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("value %g is not an integer", f)
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("cannot convert %s to integer", sv.Type())
}

func toUint64(sv reflect.Value) (uint64, error) {
	switch sv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := sv.Int()
		if i < 0 {
			return 0, fmt.Errorf("value %d is negative", i)
		}
		return uint64(i), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return sv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		f := sv.Float()
		if f < 0 || f != math.Trunc(f) {
			return 0, fmt.Errorf("value %g is not an unsigned integer", f)
		}
		return uint64(f), nil
	}
	return 0, fmt.Errorf("cannot convert %s to unsigned integer", sv.Type())
}

func toFloat64(sv reflect.Value) (float64, error) {
	switch sv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(sv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(sv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return sv.Float(), nil
	}
	return 0, fmt.Errorf("cannot convert %s to float", sv.Type())
}
