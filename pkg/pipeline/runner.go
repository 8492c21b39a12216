package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treeline/pkg/cache"
	"github.com/matzehuels/treeline/pkg/codec"
	"github.com/matzehuels/treeline/pkg/observability"
	"github.com/matzehuels/treeline/pkg/render"
	"github.com/matzehuels/treeline/pkg/stree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → transform → emit pipeline with caching.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	s, err := r.Parse(ctx, input, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Stream = s
	result.Stats = CollectStats(s)
	result.Stats.ParseTime = time.Since(parseStart)

	// Compute tree hash for cache keys and API responses
	if hash, err := TreeHash(s); err == nil {
		result.TreeHash = hash
	}

	r.Logger.Info("parsed stream",
		"documents", result.Stats.DocCount,
		"nodes", result.Stats.NodeCount,
		"duration", result.Stats.ParseTime)

	// Stage 2: Transform
	work := s
	if opts.NeedsTransform() {
		transformStart := time.Now()
		work, err = r.Transform(ctx, s, opts)
		if err != nil {
			return nil, fmt.Errorf("transform: %w", err)
		}
		result.Stats.TransformTime = time.Since(transformStart)

		r.Logger.Info("transformed stream",
			"op", "expand",
			"duration", result.Stats.TransformTime)
	}

	// Stage 3: Emit, cached by input content and options
	emitStart := time.Now()
	cacheKey := r.Keyer.ConvertKey(cache.Hash(input), opts.ConvertKeyOpts())

	var out []byte
	hit := false
	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
			out, hit = data, true
			observability.Cache().OnCacheHit(ctx, "convert")
		} else {
			observability.Cache().OnCacheMiss(ctx, "convert")
		}
	}
	if !hit {
		out, err = r.Emit(ctx, work, opts)
		if err != nil {
			return nil, fmt.Errorf("emit: %w", err)
		}
		if err := r.Cache.Set(ctx, cacheKey, out, cache.TTLConvert); err == nil {
			observability.Cache().OnCacheSet(ctx, "convert", len(out))
		}
	}
	result.Output = out
	result.Stats.EmitTime = time.Since(emitStart)
	result.CacheInfo.ConvertHit = hit

	r.Logger.Info("emitted output",
		"format", opts.To,
		"bytes", len(out),
		"cached", hit,
		"duration", result.Stats.EmitTime)

	return result, nil
}

// Parse reads input in the From format into a tree stream. Nesting
// deeper than MaxDepth is rejected.
func (r *Runner) Parse(ctx context.Context, input []byte, opts Options) (*stree.Stream, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, opts.From)
	start := time.Now()
	s, err := parseStream(input, opts.From)
	docs := 0
	if s != nil {
		docs = s.Len()
	}
	hooks.OnParseComplete(ctx, opts.From, docs, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if st := CollectStats(s); st.MaxDepth > opts.MaxDepth {
		return nil, &codec.DepthExceededError{Depth: opts.MaxDepth}
	}
	return s, nil
}

// Transform applies the rewrites the options ask for. With none
// requested the stream is returned unchanged.
func (r *Runner) Transform(ctx context.Context, s *stree.Stream, opts Options) (*stree.Stream, error) {
	if !opts.NeedsTransform() {
		return s, nil
	}

	hooks := observability.Pipeline()
	docs := 0
	if s != nil {
		docs = s.Len()
	}
	hooks.OnTransformStart(ctx, "expand", docs)
	start := time.Now()
	out, err := ExpandAliases(s)
	hooks.OnTransformComplete(ctx, "expand", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Emit renders a stream as text in the To format.
func (r *Runner) Emit(ctx context.Context, s *stree.Stream, opts Options) ([]byte, error) {
	if err := opts.ValidateForEmit(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.To)
	start := time.Now()
	out, err := emitStream(s, opts.To)
	hooks.OnRenderComplete(ctx, opts.To, len(out), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ConvertWithCacheInfo runs the full pipeline and returns the emitted
// output along with cache hit info.
func (r *Runner) ConvertWithCacheInfo(ctx context.Context, input []byte, opts Options) ([]byte, bool, error) {
	result, err := r.Execute(ctx, input, opts)
	if err != nil {
		return nil, false, err
	}
	return result.Output, result.CacheInfo.ConvertHit, nil
}

// Convert is a convenience wrapper that calls ConvertWithCacheInfo and discards the cache hit info.
func (r *Runner) Convert(ctx context.Context, input []byte, opts Options) ([]byte, error) {
	out, _, err := r.ConvertWithCacheInfo(ctx, input, opts)
	return out, err
}

// GraphWithCacheInfo renders a stream as a graph with caching and returns cache hit info.
func (r *Runner) GraphWithCacheInfo(ctx context.Context, s *stree.Stream, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateForGraph(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from tree content
	treeHash, err := TreeHash(s)
	if err != nil {
		return nil, false, fmt.Errorf("serialize stream for cache key: %w", err)
	}
	cacheKey := r.Keyer.RenderKey(treeHash, opts.RenderKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "render")
			return data, true, nil // Cache hit
		}
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	// Render
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.GraphFormat)
	start := time.Now()
	data, err := render.Render(ctx, s, render.Options{
		Format:  opts.GraphFormat,
		Rankdir: opts.Rankdir,
	})
	hooks.OnRenderComplete(ctx, opts.GraphFormat, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLRender); err == nil {
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}

	return data, false, nil // Cache miss
}

// Graph is a convenience wrapper that calls GraphWithCacheInfo and discards the cache hit info.
func (r *Runner) Graph(ctx context.Context, s *stree.Stream, opts Options) ([]byte, error) {
	data, _, err := r.GraphWithCacheInfo(ctx, s, opts)
	return data, err
}

// Validate parses input and decodes every document against the tag
// registry. Syntax errors, dangling aliases, unknown or malformed tags,
// and depth violations all surface as errors; on success the result
// carries the parsed stream and its statistics.
func (r *Runner) Validate(ctx context.Context, input []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	parseStart := time.Now()
	s, err := r.Parse(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	result.Stream = s
	result.Stats = CollectStats(s)
	result.Stats.ParseTime = time.Since(parseStart)
	if hash, err := TreeHash(s); err == nil {
		result.TreeHash = hash
	}

	dec := &codec.Decoder{Registry: opts.Registry, MaxDepth: opts.MaxDepth}
	if _, err := dec.DecodeAll(s); err != nil {
		return nil, err
	}

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
