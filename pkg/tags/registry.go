package tags

import (
	"errors"
	"reflect"
	"sort"
	"sync"
)

var (
	// ErrEmptyTag is returned by [Registry.Register] and
	// [Registry.RegisterDomain] when the tag or domain is empty.
	ErrEmptyTag = errors.New("empty tag")

	// ErrNilValue is returned by [Registry.Register] when the example
	// value is nil, and by [Registry.RegisterDomain] when the callback
	// is nil.
	ErrNilValue = errors.New("nil registration value")
)

// DomainFunc constructs a value for any tag under a registered domain.
// It receives the full tag and the already-decoded payload (scalar,
// []any, or map[any]any) and returns the value to surface.
type DomainFunc func(tag string, value any) (any, error)

// Resolution is the decode-side answer for a tag: exactly one of Type
// and Domain is set. A Type resolution means the decoder allocates that
// type and populates it; a Domain resolution means the decoder builds
// the default shape and hands it to the callback.
type Resolution struct {
	Tag    string
	Type   reflect.Type
	Domain DomainFunc
}

// Registry holds tag bindings in both directions: tag to Go type for
// decoding, Go type to tag for encoding, plus domain-prefix callbacks.
//
// The zero value is not usable; use [NewRegistry]. All methods are safe
// for concurrent use, and every read observes a consistent snapshot of
// the bindings.
type Registry struct {
	mu      sync.RWMutex
	byTag   map[string]reflect.Type
	byType  map[reflect.Type]string
	domains []domainEntry // sorted by prefix length, longest first
}

type domainEntry struct {
	prefix string
	fn     DomainFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byTag:  make(map[string]reflect.Type),
		byType: make(map[reflect.Type]string),
	}
}

// Register binds tag to the type of v in both directions. v is only
// inspected for its type; pointers are unwrapped so registering (*T)(nil)
// and T{} is equivalent. The newest registration wins in each direction:
// re-binding a tag changes what it decodes to, and registering a type
// under another tag changes what it encodes as. There is no removal.
func (r *Registry) Register(tag string, v any) error {
	if tag == "" {
		return ErrEmptyTag
	}
	if v == nil {
		return ErrNilValue
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	tag = Normalize(tag)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTag[tag] = t
	r.byType[t] = tag
	return nil
}

// RegisterDomain binds a callback for every tag of the form
// "!<domain>/<name>". When several domains match a tag, the longest
// prefix wins. Exact [Registry.Register] bindings always take precedence
// over domain matches.
func (r *Registry) RegisterDomain(domain string, fn DomainFunc) error {
	if domain == "" {
		return ErrEmptyTag
	}
	if fn == nil {
		return ErrNilValue
	}
	prefix := "!" + domain + "/"

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.domains {
		if d.prefix == prefix {
			r.domains[i].fn = fn
			return nil
		}
	}
	r.domains = append(r.domains, domainEntry{prefix: prefix, fn: fn})
	sort.SliceStable(r.domains, func(i, j int) bool {
		return len(r.domains[i].prefix) > len(r.domains[j].prefix)
	})
	return nil
}

// ResolveDecode answers what a tag decodes into. Exact type bindings win
// over domain callbacks; unknown tags return ok=false.
func (r *Registry) ResolveDecode(tag string) (Resolution, bool) {
	tag = Normalize(tag)
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.byTag[tag]; ok {
		return Resolution{Tag: tag, Type: t}, true
	}
	for _, d := range r.domains {
		if len(tag) > len(d.prefix) && tag[:len(d.prefix)] == d.prefix {
			return Resolution{Tag: tag, Domain: d.fn}, true
		}
	}
	return Resolution{}, false
}

// ResolveEncode returns the tag registered for the type of v, unwrapping
// pointers. It reports ok=false for unregistered types; callers fall
// back to [GenericTag].
func (r *Registry) ResolveEncode(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	return r.ResolveEncodeType(reflect.TypeOf(v))
}

// ResolveEncodeType is [Registry.ResolveEncode] for an already-known
// reflect.Type.
func (r *Registry) ResolveEncodeType(t reflect.Type) (string, bool) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	tag, ok := r.byType[t]
	return tag, ok
}

// Tags returns a snapshot of all exactly-registered tags in unspecified
// order, for diagnostics.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		out = append(out, tag)
	}
	return out
}

// defaultRegistry backs the package-level registration functions.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry shared by all codecs that
// were not given an explicit one.
func Default() *Registry { return defaultRegistry }

// Register binds tag to the type of v in the default registry.
func Register(tag string, v any) error { return defaultRegistry.Register(tag, v) }

// RegisterDomain binds a domain callback in the default registry.
func RegisterDomain(domain string, fn DomainFunc) error {
	return defaultRegistry.RegisterDomain(domain, fn)
}
