package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful in server deployments where different users or contexts
// need separate cache namespaces.
//
// Example usage:
//
//	// User-specific keys for private documents
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
//
//	// Global keys for shared conversions
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ConvertKey generates a prefixed key for conversion output caching.
func (k *ScopedKeyer) ConvertKey(inputHash string, opts ConvertKeyOpts) string {
	return k.prefix + k.inner.ConvertKey(inputHash, opts)
}

// RenderKey generates a prefixed key for render output caching.
func (k *ScopedKeyer) RenderKey(treeHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(treeHash, opts)
}
