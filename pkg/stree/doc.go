// Package stree defines the serialization tree: the intermediate
// representation that sits between live Go values and rendered text.
//
// Every document is modeled as a tree of tagged nodes. The codec package
// lowers Go values into this tree and raises trees back into values; the
// textio package renders trees to text and parses text back into trees.
// Keeping the tree explicit lets callers inspect, rewrite, or diff
// documents without committing to either endpoint.
//
// # Core Types
//
//   - [Node]: a single tree vertex (scalar, sequence, mapping, or alias)
//   - [Pair]: one key/value entry of a mapping, in document order
//   - [Document]: a root node plus its start/end marker flags
//   - [Stream]: an ordered list of documents
//
// # Node Kinds
//
// A node is exactly one of four kinds:
//
//	stree.Scalar("42")             // leaf text, optionally tagged
//	stree.Sequence(a, b, c)        // ordered children
//	stree.Mapping(pairs...)        // ordered key/value pairs
//	stree.Alias("a1")              // reference to an anchored node
//
// Tags carry type identity ("!!int", "!example.com,2026/widget"), anchors
// carry object identity. A node with an empty Tag leaves interpretation to
// the consumer; a node with Implicit set keeps its tag out of rendered text.
//
// # Anchors and Aliases
//
// Shared and cyclic structure is expressed by stamping an Anchor label on
// the first occurrence of a node and inserting [Alias] nodes for every
// later occurrence. An alias may only reference an anchor that appears
// earlier in the same document; [Emit] and [Builder] both enforce this
// ordering.
//
// # Events
//
// Trees flatten into a linear event stream ([Event]) and rebuild from one.
// [Emit] drives any [Handler] with the events for a stream; [Builder] is
// the inverse, consuming events and producing a [Stream]. Text endpoints
// speak this event vocabulary rather than walking trees directly, so
// alternative renderers only need to implement [Handler].
//
// # Concurrency
//
// Nodes, documents, and streams are plain data with no internal locking.
// They are safe for concurrent reads but not concurrent writes.
package stree
