// Package pkg provides the core libraries for the Treeline serialization
// engine.
//
// # Overview
//
// Treeline models tagged documents as serialization trees: ordered trees
// whose nodes carry kind, tag, anchor, and style information, so the same
// in-memory form round-trips through YAML and JSON without losing shared
// structure. The pkg directory is organized into four main areas:
//
//  1. Model - the tree itself and its tag vocabulary ([stree], [tags])
//  2. Codec - lowering Go values into trees and raising them back ([codec])
//  3. Text - reading and writing the trees as YAML or JSON ([textio], [render])
//  4. Infrastructure - orchestration, caching, persistence ([pipeline],
//     [cache], [store], [config], [errors], [observability])
//
// # Architecture
//
// The typical data flow through Treeline:
//
//	YAML/JSON text
//	         ↓
//	    [textio] package (parse into a tree stream)
//	         ↓
//	    [stree] package (tagged nodes, anchors, aliases)
//	         ↓
//	    [codec] package (decode against the tag registry)
//	         ↓
//	    Go values, or back out through [textio] and [render]
//
// # Quick Start
//
// Parse a document, resolve its tags, and emit it as JSON:
//
//	import (
//	    "github.com/matzehuels/treeline/pkg/codec"
//	    "github.com/matzehuels/treeline/pkg/textio"
//	)
//
//	// 1. Parse text into a tree stream
//	stream, _ := textio.Unmarshal(data)
//
//	// 2. Raise it into Go values
//	values, _ := codec.DecodeAll(stream)
//
//	// 3. Or re-render the stream as JSON
//	out, _ := textio.MarshalJSON(stream)
//
// # Main Packages
//
// [stree] - The serialization tree: scalar, sequence, mapping, and alias
// nodes with tags, anchors, and presentation style. Includes the event
// stream form used by builders and emitters.
//
// [tags] - The tag registry binding tags to Go types and domain prefixes
// to callbacks. Core tags (!!str, !!int, ...) are built in.
//
// [codec] - Encoding Go values into trees and decoding trees back,
// preserving identity through anchors. Custom types hook in via the
// Encodable and Decodable interfaces.
//
// [textio] - YAML and JSON text forms of a stream, plus zstd-compressed
// file import and export.
//
// [render] - Reference graphs: DOT generation and SVG/PNG rendering via
// Graphviz, drawing anchors as shared vertices and aliases as dashed
// edges.
//
// [pipeline] - The parse, transform, emit orchestration used by both the
// CLI and the HTTP API, with content-addressed caching of conversions
// and renders.
//
// [cache] - Cache backends for pipeline results: filesystem, Redis, and
// a null cache, behind one interface.
//
// [store] - Named document persistence with TTLs: in-memory and MongoDB
// backends, plus hook-based instrumentation.
//
// [config] - TOML server configuration with XDG defaults.
//
// [errors] - The coded error surface shared by the CLI and API, with
// mapping from engine errors.
//
// [observability] - Process-wide hook points for pipeline, cache, and
// store events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/codec/...      # Specific package
//	go test -run Example         # Examples only
//
// [stree]: https://pkg.go.dev/github.com/matzehuels/treeline/pkg/stree
// [tags]: https://pkg.go.dev/github.com/matzehuels/treeline/pkg/tags
// [codec]: https://pkg.go.dev/github.com/matzehuels/treeline/pkg/codec
// [textio]: https://pkg.go.dev/github.com/matzehuels/treeline/pkg/textio
// [render]: https://pkg.go.dev/github.com/matzehuels/treeline/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/treeline/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/treeline/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/treeline/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/treeline/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/treeline/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/treeline/pkg/observability
package pkg
