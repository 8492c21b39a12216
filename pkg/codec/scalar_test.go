package codec

import (
	"math"
	"testing"
	"time"

	"github.com/matzehuels/treeline/pkg/tags"
)

func TestInferScalars(t *testing.T) {
	tests := []struct {
		in      string
		want    any
		wantTag string
	}{
		{"", nil, tags.Null},
		{"~", nil, tags.Null},
		{"null", nil, tags.Null},
		{"NULL", nil, tags.Null},
		{"true", true, tags.Bool},
		{"Yes", true, tags.Bool},
		{"off", false, tags.Bool},
		{"42", 42, tags.Int},
		{"-7", -7, tags.Int},
		{"+3", 3, tags.Int},
		{"1_000_000", 1000000, tags.Int},
		{"0x1F", 31, tags.Int},
		{"0o755", 493, tags.Int},
		{"0b101", 5, tags.Int},
		{"0755", 755, tags.Int}, // bare leading zero stays decimal
		{"18446744073709551615", uint64(math.MaxUint64), tags.Int},
		{"3.5", 3.5, tags.Float},
		{"-0.25", -0.25, tags.Float},
		{"5.", 5.0, tags.Float},
		{".5", 0.5, tags.Float},
		{"1e3", 1000.0, tags.Float},
		{"6.02e23", 6.02e23, tags.Float},
		{".inf", math.Inf(1), tags.Float},
		{"-.inf", math.Inf(-1), tags.Float},
		{"hello", "hello", tags.Str},
		{"v1.2.3", "v1.2.3", tags.Str},
		{"1.2.3", "1.2.3", tags.Str},
		{"0x", "0x", tags.Str},
		{"--5", "--5", tags.Str},
		{"yes!", "yes!", tags.Str},
		{"2026-08-25", time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), tags.Timestamp},
		{"2026-08-25T12:30:00Z", time.Date(2026, 8, 25, 12, 30, 0, 0, time.UTC), tags.Timestamp},
		{"2026-13-99", "2026-13-99", tags.Str}, // date-shaped but invalid
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, tag := infer(tt.in)
			if tag != tt.wantTag {
				t.Fatalf("infer(%q) tag = %s, want %s", tt.in, tag, tt.wantTag)
			}
			if wt, ok := tt.want.(time.Time); ok {
				if !got.(time.Time).Equal(wt) {
					t.Fatalf("infer(%q) = %v, want %v", tt.in, got, tt.want)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("infer(%q) = %#v (%T), want %#v (%T)", tt.in, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestInferNaN(t *testing.T) {
	got, tag := infer(".nan")
	if tag != tags.Float || !math.IsNaN(got.(float64)) {
		t.Fatalf("infer(.nan) = %v (%s), want NaN float", got, tag)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3.14, "3.14"},
		{5, "5.0"},
		{-2, "-2.0"},
		{0, "0.0"},
		{1e21, "1e+21"},
		{math.Inf(1), ".inf"},
		{math.Inf(-1), "-.inf"},
		{math.NaN(), ".nan"},
	}
	for _, tt := range tests {
		if got := formatFloat(tt.in, 64); got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFloatFormatParsesBack(t *testing.T) {
	for _, f := range []float64{3.14, 5, -0.001, 1e300, 6.02e23, 1.0 / 3.0} {
		s := formatFloat(f, 64)
		got, ok := parseFloat(s)
		if !ok || got != f {
			t.Errorf("formatFloat(%v) = %q did not parse back (got %v, ok=%v)", f, s, got, ok)
		}
	}
}

func TestParseFloatRejectsStrconvExtras(t *testing.T) {
	// strconv accepts these; the plain-scalar grammar must not.
	for _, s := range []string{"inf", "Inf", "nan", "NaN", "0x1p-2", "1e", "e5", "."} {
		if _, ok := parseFloat(s); ok {
			t.Errorf("parseFloat(%q) accepted, want reject", s)
		}
	}
}

func TestParseIntRejects(t *testing.T) {
	for _, s := range []string{"", "_1", "12a", "0x", "++1", "1.0", "9999999999999999999999999999"} {
		if _, ok := parseInt(s); ok {
			t.Errorf("parseInt(%q) accepted, want reject", s)
		}
	}
}

func TestParseBinary(t *testing.T) {
	data, ok := parseBinary("aGVsbG8=")
	if !ok || string(data) != "hello" {
		t.Fatalf("parseBinary = %q, %v", data, ok)
	}
	// Folded base64 carries embedded whitespace.
	data, ok = parseBinary("aGVs\n  bG8=")
	if !ok || string(data) != "hello" {
		t.Fatalf("parseBinary(folded) = %q, %v", data, ok)
	}
	if _, ok := parseBinary("!!!"); ok {
		t.Error("parseBinary accepted invalid base64")
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-08-25T12:30:00Z", time.Date(2026, 8, 25, 12, 30, 0, 0, time.UTC)},
		{"2026-08-25T12:30:00.5Z", time.Date(2026, 8, 25, 12, 30, 0, 500000000, time.UTC)},
		{"2026-08-25T12:30:00+02:00", time.Date(2026, 8, 25, 12, 30, 0, 0, time.FixedZone("", 7200))},
		{"2026-08-25T12:30:00", time.Date(2026, 8, 25, 12, 30, 0, 0, time.UTC)},
		{"2026-08-25 12:30:00", time.Date(2026, 8, 25, 12, 30, 0, 0, time.UTC)},
		{"2026-08-25", time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := parseTimestamp(tt.in)
		if !ok || !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %v, %v; want %v", tt.in, got, ok, tt.want)
		}
	}
	if _, ok := parseTimestamp("yesterday"); ok {
		t.Error("parseTimestamp accepted non-timestamp text")
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	data := []byte{0x00, 0xff, 0x10, 0x41}
	parsed, ok := parseBinary(formatBinary(data))
	if !ok {
		t.Fatal("formatted binary did not parse")
	}
	if string(parsed) != string(data) {
		t.Fatalf("binary round trip: got %x, want %x", parsed, data)
	}
}
