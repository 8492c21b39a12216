package textio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/treeline/pkg/stree"
)

// Format selects a textual rendering.
type Format uint8

const (
	// FormatYAML is the native rendering with full tree fidelity.
	FormatYAML Format = iota
	// FormatJSON is the flow rendering with aliases expanded.
	FormatJSON
)

// String returns the lowercase name of the format.
func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "yaml"
}

// FormatForPath picks the format a path implies: .json (before any .zst
// suffix) selects JSON, everything else YAML.
func FormatForPath(path string) Format {
	name := strings.TrimSuffix(path, ".zst")
	if filepath.Ext(name) == ".json" {
		return FormatJSON
	}
	return FormatYAML
}

// Export writes a stream to a file at path. The extension picks the
// rendering per [FormatForPath]; a trailing .zst compresses the output
// with zstd.
func Export(s *stree.Stream, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("textio: create %s: %w", path, err)
	}
	defer f.Close()

	write := func(w io.Writer) error {
		if FormatForPath(path) == FormatJSON {
			return WriteJSON(s, w)
		}
		return Write(s, w)
	}

	if !strings.HasSuffix(path, ".zst") {
		return write(f)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("textio: compress %s: %w", path, err)
	}
	if err := write(enc); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("textio: compress %s: %w", path, err)
	}
	return nil
}

// Import reads a stream from the file at path, undoing whatever [Export]
// layered on: zstd when the path ends in .zst, then the format the
// remaining extension implies.
func Import(path string) (*stree.Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("textio: open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("textio: decompress %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}
	if FormatForPath(path) == FormatJSON {
		return ReadJSON(r)
	}
	return Read(r)
}
