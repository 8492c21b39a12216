// Package textio renders serialization trees as text and parses them
// back, bridging the in-memory [stree] model to files and wires.
//
// # YAML
//
// YAML is the native rendering: tags, anchors, aliases, and styles all
// have direct textual forms, so [Write] followed by [Read] preserves the
// full tree structure, including shared references and cycles. Both
// directions run through the stree event vocabulary: writing flattens
// the tree with [stree.Emit] and assembles yaml.v3 document nodes from
// the events, reading walks parsed yaml.v3 nodes and replays them into a
// [stree.Builder].
//
// Tags that the YAML resolver assigned implicitly (a plain 42 resolving
// to !!int) are dropped on read; the tree stays untagged there and the
// codec re-infers on decode. Tags written explicitly in the source are
// kept verbatim.
//
// # JSON
//
// [WriteJSON] renders each document as one line of JSON. JSON has no
// aliases, so shared references are expanded in place; a cycle cannot be
// expanded and is reported as an error. Custom tags, non-finite floats,
// and non-scalar mapping keys have no JSON form and fail the same way.
// Because JSON is a YAML subset, [Read] accepts JSON input as-is;
// [ReadJSON] additionally accepts the one-document-per-line framing that
// [WriteJSON] produces.
//
// # Files
//
// [Export] and [Import] wrap the stream functions with file handling.
// The extension picks the format: .json selects JSON, everything else is
// YAML, and a trailing .zst layers zstd compression over either.
//
// [stree]: github.com/matzehuels/treeline/pkg/stree
package textio
