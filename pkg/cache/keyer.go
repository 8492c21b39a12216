package cache

// Keyer builds cache keys for the artifact families treeline caches.
// Implementations must be deterministic: equal inputs produce equal keys.
type Keyer interface {
	// ConvertKey identifies a conversion output by the hash of the input
	// text and the options that shaped the output.
	ConvertKey(inputHash string, opts ConvertKeyOpts) string

	// RenderKey identifies a rendered graph by the hash of the
	// serialized tree and the render options.
	RenderKey(treeHash string, opts RenderKeyOpts) string
}

// ConvertKeyOpts are the knobs that change conversion output. Anything
// that alters the bytes written must appear here, or stale entries leak
// across option changes.
type ConvertKeyOpts struct {
	From     string
	To       string
	MaxDepth int
	Expand   bool
}

// RenderKeyOpts are the knobs that change a graph render.
type RenderKeyOpts struct {
	Format string
	Layout string
}

// DefaultKeyer hashes option structs into stable keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ConvertKey generates a key for conversion output caching.
func (k *DefaultKeyer) ConvertKey(inputHash string, opts ConvertKeyOpts) string {
	return hashKey("convert", inputHash, opts)
}

// RenderKey generates a key for render output caching.
func (k *DefaultKeyer) RenderKey(treeHash string, opts RenderKeyOpts) string {
	return hashKey("render", treeHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
