package pipeline

import (
	"github.com/matzehuels/treeline/pkg/stree"
	"github.com/matzehuels/treeline/pkg/textio"
)

// parseStream reads text in the named format. YAML parsing accepts JSON
// input too (JSON is a YAML subset); the json format is still distinct
// because it also accepts the one-document-per-line framing that
// [textio.WriteJSON] produces.
func parseStream(input []byte, format string) (*stree.Stream, error) {
	if format == FormatJSON {
		return textio.UnmarshalJSON(input)
	}
	return textio.Unmarshal(input)
}
