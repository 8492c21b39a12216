package textio

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/treeline/pkg/codec"
)

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"stream.yaml", FormatYAML},
		{"stream.yml", FormatYAML},
		{"stream", FormatYAML},
		{"stream.json", FormatJSON},
		{"stream.yaml.zst", FormatYAML},
		{"stream.json.zst", FormatJSON},
		{"dir.json/stream.yaml", FormatYAML},
	}
	for _, tt := range tests {
		if got := FormatForPath(tt.path); got != tt.want {
			t.Errorf("FormatForPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func exportImport(t *testing.T, name string, in any) any {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)

	s, err := codec.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := Export(s, path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	parsed, err := Import(path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	out, err := codec.Decode(parsed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return out
}

func TestExportImport(t *testing.T) {
	in := map[any]any{"name": "alpha", "items": []any{1, 2}, "ok": true}
	for _, name := range []string{
		"stream.yaml",
		"stream.json",
		"stream.yaml.zst",
		"stream.json.zst",
	} {
		t.Run(name, func(t *testing.T) {
			got := exportImport(t, name, in)
			if !reflect.DeepEqual(got, in) {
				t.Errorf("got %#v, want %#v", got, in)
			}
		})
	}
}

func TestExportCompressedIsNotPlaintext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.yaml.zst")
	s, err := codec.Encode(map[any]any{"secret": "plainly visible"})
	if err != nil {
		t.Fatal(err)
	}
	if err := Export(s, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("plainly visible")) {
		t.Error("compressed file contains plaintext")
	}
	// zstd frame magic.
	if len(data) < 4 || data[0] != 0x28 || data[1] != 0xb5 || data[2] != 0x2f || data[3] != 0xfd {
		t.Errorf("file does not start with a zstd frame: % x", data[:4])
	}
}

func TestImportMissingFile(t *testing.T) {
	_, err := Import(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("want error for missing file")
	}
}

func TestExportImportSharing(t *testing.T) {
	shared := []any{"x"}
	got := exportImport(t, "stream.yaml", []any{shared, shared}).([]any)
	if reflect.ValueOf(got[0]).Pointer() != reflect.ValueOf(got[1]).Pointer() {
		t.Error("sharing lost through file round trip")
	}
}
