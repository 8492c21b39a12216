package pipeline

import (
	"github.com/matzehuels/treeline/pkg/stree"
	"github.com/matzehuels/treeline/pkg/textio"
)

// emitStream renders a stream as text in the named format. JSON output
// expands aliases inline and rejects cycles and custom tags, since those
// have no JSON form.
func emitStream(s *stree.Stream, format string) ([]byte, error) {
	if format == FormatJSON {
		return textio.MarshalJSON(s)
	}
	return textio.Marshal(s)
}
