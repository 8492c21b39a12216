// Package render draws serialization trees as directed graphs.
//
// # Overview
//
// A rendered graph shows what the text form hides: anchored nodes appear
// once, and every alias becomes a dashed edge back to its target, so
// shared subtrees and cycles are visible as actual in-edges instead of
// textual markers. It provides:
//
//   - DOT generation from a [stree.Stream] ([ToDOT])
//   - SVG and PNG rendering via Graphviz ([RenderSVG], [RenderPNG])
//
// # Usage
//
// Generate DOT and render it:
//
//	dot := render.ToDOT(stream, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Or go straight to an output format:
//
//	data, err := render.Render(ctx, stream, render.Options{Format: render.FormatSVG})
//
// Multi-document streams render one cluster per document. Anchor labels
// are document-scoped, matching the engine's alias resolution.
package render
