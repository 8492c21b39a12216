package codec

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/treeline/pkg/stree"
	"github.com/matzehuels/treeline/pkg/tags"
)

var timeType = reflect.TypeOf(time.Time{})

// Encoder lowers Go values into serialization trees. The zero value is
// ready to use with the default registry and depth limit.
//
// An Encoder carries per-call state and is not safe for concurrent use;
// the package-level [Encode] creates a fresh one per call.
type Encoder struct {
	// Registry resolves type-to-tag bindings. Nil means [tags.Default].
	Registry *tags.Registry

	// MaxDepth bounds nesting. Zero means [stree.DefaultMaxDepth].
	MaxDepth int

	seen      map[ident]*stree.Node
	nextLabel int
}

// ident keys the object-identity table behind anchors: the data pointer,
// the static type (distinct types can share an address through embedding),
// and the length for slices (reslices share a base pointer).
type ident struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// NewEncoder returns an encoder with default settings.
func NewEncoder() *Encoder { return &Encoder{} }

// Encode lowers values into a stream using a fresh [Encoder].
func Encode(values ...any) (*stree.Stream, error) {
	return NewEncoder().Encode(values...)
}

// Encode lowers each value into one document of a new stream. Object
// identity is tracked per document: a value reachable twice within one
// document becomes an anchor plus aliases, while the same value in two
// documents encodes independently. Cyclic values terminate through the
// same mechanism.
func (e *Encoder) Encode(values ...any) (*stree.Stream, error) {
	s := stree.NewStream()
	e.nextLabel = 0
	for _, value := range values {
		e.seen = make(map[ident]*stree.Node)
		root, err := e.encodeValue(reflect.ValueOf(value), 1)
		if err != nil {
			return nil, err
		}
		s.Append(stree.NewDocument(root))
	}
	return s, nil
}

func (e *Encoder) registry() *tags.Registry {
	if e.Registry != nil {
		return e.Registry
	}
	return tags.Default()
}

func (e *Encoder) maxDepth() int {
	if e.MaxDepth > 0 {
		return e.MaxDepth
	}
	return stree.DefaultMaxDepth
}

func (e *Encoder) encodeValue(v reflect.Value, depth int) (*stree.Node, error) {
	n := &stree.Node{}
	if err := e.fill(n, v, depth); err != nil {
		return nil, err
	}
	return n, nil
}

func (e *Encoder) fill(n *stree.Node, v reflect.Value, depth int) error {
	if depth > e.maxDepth() {
		return &DepthExceededError{Depth: e.maxDepth()}
	}
	if !v.IsValid() {
		setNull(n)
		return nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			setNull(n)
			return nil
		}
		return e.fill(n, v.Elem(), depth)
	case reflect.Pointer:
		return e.fillPointer(n, v, depth)
	}

	// Hooks beat built-in kinds, so named slice, map, and string types
	// can take over their own representation.
	if v.CanInterface() {
		if enc, ok := v.Interface().(Encodable); ok {
			return e.fillHook(n, v.Type(), enc, depth)
		}
	}

	switch v.Kind() {
	case reflect.Bool:
		setScalar(n, tags.Bool, formatBool(v.Bool()), true)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		setScalar(n, tags.Int, strconv.FormatInt(v.Int(), 10), true)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		setScalar(n, tags.Int, strconv.FormatUint(v.Uint(), 10), true)
	case reflect.Float32:
		setScalar(n, tags.Float, formatFloat(v.Float(), 32), true)
	case reflect.Float64:
		setScalar(n, tags.Float, formatFloat(v.Float(), 64), true)
	case reflect.String:
		setString(n, v.String())
	case reflect.Slice:
		return e.fillSlice(n, v, depth)
	case reflect.Array:
		return e.fillArray(n, v, depth)
	case reflect.Map:
		return e.fillMap(n, v, depth)
	case reflect.Struct:
		return e.fillStruct(n, v, depth)
	default:
		// Func, Chan, Complex, UnsafePointer, Uintptr.
		return &UnsupportedValueError{Type: v.Type()}
	}
	return nil
}

func (e *Encoder) fillPointer(n *stree.Node, v reflect.Value, depth int) error {
	if v.IsNil() {
		setNull(n)
		return nil
	}
	id := ident{ptr: v.Pointer(), typ: v.Type()}
	if e.reuse(n, id) {
		return nil
	}
	e.seen[id] = n
	if enc, ok := v.Interface().(Encodable); ok {
		return e.fillHook(n, v.Type(), enc, depth)
	}
	return e.fill(n, v.Elem(), depth)
}

// reuse turns n into an alias when id was already encoded in this
// document. The anchor label is allocated lazily, on the first reuse,
// and stamped onto the remembered node.
func (e *Encoder) reuse(n *stree.Node, id ident) bool {
	target, ok := e.seen[id]
	if !ok {
		return false
	}
	if target.Anchor == "" {
		e.nextLabel++
		target.Anchor = "a" + strconv.Itoa(e.nextLabel)
	}
	n.Kind = stree.KindAlias
	n.Value = target.Anchor
	return true
}

func (e *Encoder) fillSlice(n *stree.Node, v reflect.Value, depth int) error {
	if v.IsNil() {
		setNull(n)
		return nil
	}
	if v.Type().Elem().Kind() == reflect.Uint8 {
		setScalar(n, tags.Binary, formatBinary(v.Bytes()), false)
		return nil
	}
	// Empty slices may share a base pointer without sharing anything,
	// so only non-empty ones join the identity table.
	if v.Len() > 0 {
		id := ident{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}
		if e.reuse(n, id) {
			return nil
		}
		e.seen[id] = n
	}
	n.Kind = stree.KindSequence
	return e.fillItems(n, v, depth)
}

func (e *Encoder) fillArray(n *stree.Node, v reflect.Value, depth int) error {
	n.Kind = stree.KindSequence
	return e.fillItems(n, v, depth)
}

func (e *Encoder) fillItems(n *stree.Node, v reflect.Value, depth int) error {
	for i := 0; i < v.Len(); i++ {
		item, err := e.encodeValue(v.Index(i), depth+1)
		if err != nil {
			return err
		}
		n.Items = append(n.Items, item)
	}
	return nil
}

func (e *Encoder) fillMap(n *stree.Node, v reflect.Value, depth int) error {
	if v.IsNil() {
		setNull(n)
		return nil
	}
	id := ident{ptr: v.Pointer(), typ: v.Type()}
	if e.reuse(n, id) {
		return nil
	}
	n.Kind = stree.KindMapping
	e.seen[id] = n

	// Keys encode first and sort before any value does, so anchor
	// labels come out in a stable order despite randomized iteration.
	type mapPair struct {
		key     *stree.Node
		val     reflect.Value
		sortKey string
	}
	pairs := make([]mapPair, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, err := e.encodeValue(iter.Key(), depth+1)
		if err != nil {
			return err
		}
		pairs = append(pairs, mapPair{key: key, val: iter.Value(), sortKey: nodeSortKey(key)})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].sortKey < pairs[j].sortKey })

	for _, p := range pairs {
		val, err := e.encodeValue(p.val, depth+1)
		if err != nil {
			return err
		}
		n.Pairs = append(n.Pairs, stree.Pair{Key: p.key, Value: val})
	}
	return nil
}

func (e *Encoder) fillStruct(n *stree.Node, v reflect.Value, depth int) error {
	t := v.Type()
	if t == timeType {
		setScalar(n, tags.Timestamp, formatTimestamp(v.Interface().(time.Time)), true)
		return nil
	}

	tag, ok := e.registry().ResolveEncodeType(t)
	if !ok {
		tag = tags.GenericTag(t)
	}
	n.Kind = stree.KindMapping
	n.Tag = tag
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || f.PkgPath != "" {
			continue
		}
		fv, err := v.FieldByIndexErr(f.Index)
		if err != nil {
			// Promoted through a nil embedded pointer.
			continue
		}
		key := &stree.Node{}
		setString(key, f.Name)
		val, err := e.encodeValue(fv, depth+1)
		if err != nil {
			return err
		}
		n.Pairs = append(n.Pairs, stree.Pair{Key: key, Value: val})
	}
	return nil
}

// fillHook runs an [Encodable] hook and lowers whatever it stored in the
// coder. Entry order is the hook's insertion order, never sorted.
func (e *Encoder) fillHook(n *stree.Node, t reflect.Type, enc Encodable, depth int) error {
	tag, ok := e.registry().ResolveEncodeType(t)
	if !ok {
		tag = tags.GenericTag(t)
	}
	c := NewCoder(tag)
	if err := enc.EncodeWith(c); err != nil {
		return fmt.Errorf("codec: encode hook for %s: %w", t, err)
	}

	n.Tag = c.tag
	n.Style = c.style
	n.Implicit = c.implicit
	switch c.mode {
	case ModeScalar:
		n.Kind = stree.KindScalar
		n.Value = c.scalar
	case ModeSequence:
		n.Kind = stree.KindSequence
		for _, item := range c.seq {
			child, err := e.encodeValue(reflect.ValueOf(item), depth+1)
			if err != nil {
				return err
			}
			n.Items = append(n.Items, child)
		}
	default:
		n.Kind = stree.KindMapping
		for _, entry := range c.entries {
			key := &stree.Node{}
			setString(key, entry.Key)
			val, err := e.encodeValue(reflect.ValueOf(entry.Value), depth+1)
			if err != nil {
				return err
			}
			n.Pairs = append(n.Pairs, stree.Pair{Key: key, Value: val})
		}
	}
	return nil
}

func setNull(n *stree.Node) {
	n.Kind = stree.KindScalar
	n.Tag = tags.Null
	n.Value = "null"
	n.Implicit = true
}

func setScalar(n *stree.Node, tag, value string, implicit bool) {
	n.Kind = stree.KindScalar
	n.Tag = tag
	n.Value = value
	n.Implicit = implicit
}

// setString builds a string scalar. Text that would re-resolve as some
// other type keeps an implicit !!str tag and a quoted style, so both the
// tree and its rendered form stay unambiguous.
func setString(n *stree.Node, s string) {
	n.Kind = stree.KindScalar
	n.Value = s
	if _, tag := infer(s); tag != tags.Str {
		n.Tag = tags.Str
		n.Implicit = true
		n.Style = stree.StyleDoubleQuoted
	} else if strings.Contains(s, "\n") {
		n.Style = stree.StyleLiteral
	}
}

// nodeSortKey gives map pairs a deterministic order: scalars sort by tag
// then text, containers by their recursive content.
func nodeSortKey(n *stree.Node) string {
	var b strings.Builder
	writeSortKey(&b, n)
	return b.String()
}

func writeSortKey(b *strings.Builder, n *stree.Node) {
	switch n.Kind {
	case stree.KindScalar:
		b.WriteString(n.Tag)
		b.WriteByte(0x1f)
		b.WriteString(n.Value)
	case stree.KindAlias:
		b.WriteByte('*')
		b.WriteString(n.Value)
	case stree.KindSequence:
		b.WriteByte('[')
		for _, item := range n.Items {
			writeSortKey(b, item)
			b.WriteByte(0x1e)
		}
	case stree.KindMapping:
		b.WriteByte('{')
		for _, p := range n.Pairs {
			writeSortKey(b, p.Key)
			b.WriteByte(0x1f)
			writeSortKey(b, p.Value)
			b.WriteByte(0x1e)
		}
	}
}
