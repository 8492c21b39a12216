// Package pipeline provides the core conversion pipeline for treeline.
//
// This package implements the complete parse → transform → emit pipeline
// that can be used by CLI and API components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read YAML or JSON text into a tree stream
//  2. Transform: Apply tree rewrites (currently alias expansion)
//  3. Emit: Render the stream as YAML or JSON text
//
// Graph rendering (DOT, SVG, PNG) runs as an alternative third stage.
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    From: "yaml",
//	    To:   "json",
//	}
//	result, err := runner.Execute(ctx, input, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out := result.Output
//
// Run individual stages:
//
//	// Parse only
//	s, err := runner.Parse(ctx, input, opts)
//
//	// Emit an existing stream
//	out, err := runner.Emit(ctx, s, opts)
//
//	// Render an existing stream as a graph
//	svg, err := runner.Graph(ctx, s, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treeline/pkg/cache"
	"github.com/matzehuels/treeline/pkg/render"
	"github.com/matzehuels/treeline/pkg/stree"
	"github.com/matzehuels/treeline/pkg/tags"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxDepth is the maximum tree nesting depth for the pipeline.
	// This is intentionally more conservative than stree.DefaultMaxDepth
	// (10000) so untrusted CLI and API input cannot build pathological
	// trees. Callers can override this by setting MaxDepth explicitly.
	DefaultMaxDepth = 1000

	// DefaultRankdir is the default graph layout direction.
	DefaultRankdir = "TB"
)

// Format constants for text formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// DefaultFormat is the format assumed when From or To is unset.
const DefaultFormat = FormatYAML

// ValidFormats is the set of supported text formats.
var ValidFormats = map[string]bool{
	FormatYAML: true,
	FormatJSON: true,
}

// ValidRankdirs is the set of supported graph layout directions.
var ValidRankdirs = map[string]bool{
	"TB": true,
	"LR": true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the conversion pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	From     string `json:"from,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"`

	// Transform options
	ExpandAliases bool `json:"expand_aliases,omitempty"` // Replace aliases with copies of their targets

	// Emit options
	To string `json:"to,omitempty"`

	// Graph options
	GraphFormat string `json:"graph_format,omitempty"` // dot, svg, or png
	Rankdir     string `json:"rankdir,omitempty"`      // TB or LR

	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger    `json:"-"`
	Registry *tags.Registry `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Stream is the parsed tree stream.
	Stream *stree.Stream

	// TreeHash is the content hash of the parsed stream.
	TreeHash string

	// Output contains the emitted text in the To format.
	Output []byte

	// Stats contains counts, timing, and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	DocCount    int
	NodeCount   int
	AnchorCount int
	AliasCount  int
	MaxDepth    int

	ParseTime     time.Duration
	TransformTime time.Duration
	EmitTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ConvertHit bool // Whether the emitted output came from cache
	GraphHit   bool // Whether the graph artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a text format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: yaml, json)", format)
	}
	return nil
}

// ValidateGraphFormat checks that a graph output format is valid.
func ValidateGraphFormat(format string) error {
	if !render.ValidFormats[format] {
		return fmt.Errorf("invalid graph format: %q (must be one of: dot, svg, png)", format)
	}
	return nil
}

// ValidateRankdir checks that a graph layout direction is valid.
func ValidateRankdir(rankdir string) error {
	if !ValidRankdirs[rankdir] {
		return fmt.Errorf("invalid rankdir: %q (must be one of: TB, LR)", rankdir)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForEmit(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if o.From == "" {
		o.From = DefaultFormat
	}
	if err := ValidateFormat(o.From); err != nil {
		return err
	}

	if o.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", o.MaxDepth)
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetEmitDefaults sets default values for emitting.
func (o *Options) SetEmitDefaults() {
	if o.To == "" {
		o.To = DefaultFormat
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForEmit validates and sets defaults for emitting.
func (o *Options) ValidateForEmit() error {
	o.SetEmitDefaults()
	return ValidateFormat(o.To)
}

// SetGraphDefaults sets default values for graph rendering.
func (o *Options) SetGraphDefaults() {
	if o.GraphFormat == "" {
		o.GraphFormat = render.FormatDOT
	}
	if o.Rankdir == "" {
		o.Rankdir = DefaultRankdir
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForGraph validates and sets defaults for graph rendering.
func (o *Options) ValidateForGraph() error {
	o.SetGraphDefaults()
	if err := ValidateGraphFormat(o.GraphFormat); err != nil {
		return err
	}
	return ValidateRankdir(o.Rankdir)
}

// NeedsTransform returns true if the transform stage has work to do.
func (o *Options) NeedsTransform() bool {
	return o.ExpandAliases
}

// ConvertKeyOpts returns cache key options for conversion output.
func (o *Options) ConvertKeyOpts() cache.ConvertKeyOpts {
	return cache.ConvertKeyOpts{
		From:     o.From,
		To:       o.To,
		MaxDepth: o.MaxDepth,
		Expand:   o.ExpandAliases,
	}
}

// RenderKeyOpts returns cache key options for graph rendering.
func (o *Options) RenderKeyOpts() cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format: o.GraphFormat,
		Layout: o.Rankdir,
	}
}
