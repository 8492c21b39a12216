package codec

import (
	"encoding/base64"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/treeline/pkg/tags"
)

// Plain-scalar grammar. Untagged text resolves through these in order:
// null, bool, int, float, timestamp, then string. The same grammar backs
// explicit built-in tags, where a parse failure is an error instead of a
// fallback.

var (
	intDecimalRE  = regexp.MustCompile(`^[-+]?[0-9][0-9_]*$`)
	intPrefixedRE = regexp.MustCompile(`^[-+]?0[xXoObB][0-9a-fA-F][0-9a-fA-F_]*$`)
	floatRE       = regexp.MustCompile(`^[-+]?(\.[0-9][0-9_]*|[0-9][0-9_]*(\.[0-9_]*)?)([eE][-+]?[0-9]+)?$`)
)

func parseNull(s string) bool {
	switch s {
	case "", "~", "null", "Null", "NULL":
		return true
	}
	return false
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "true", "True", "TRUE", "yes", "Yes", "YES", "on", "On", "ON":
		return true, true
	case "false", "False", "FALSE", "no", "No", "NO", "off", "Off", "OFF":
		return false, true
	}
	return false, false
}

// parseInt returns an int, or a uint64 for values beyond MaxInt64.
// Underscore separators are accepted and stripped; a 0x/0o/0b prefix
// selects the base, while a bare leading zero stays decimal.
func parseInt(s string) (any, bool) {
	base := 0
	switch {
	case intDecimalRE.MatchString(s):
		base = 10
	case intPrefixedRE.MatchString(s):
	default:
		return nil, false
	}
	s = strings.ReplaceAll(s, "_", "")
	if v, err := strconv.ParseInt(s, base, 64); err == nil {
		return int(v), true
	}
	if v, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), base, 64); err == nil {
		return v, true
	}
	return nil, false
}

func parseFloat(s string) (float64, bool) {
	switch strings.ToLower(s) {
	case ".inf", "+.inf":
		return math.Inf(1), true
	case "-.inf":
		return math.Inf(-1), true
	case ".nan":
		return math.NaN(), true
	}
	// Gate before strconv: ParseFloat accepts hex floats and bare
	// inf/nan spellings that plain scalars must not.
	if !floatRE.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// looksLikeTimestamp is a cheap shape check (dddd-dd-...) that keeps the
// layout loop off ordinary strings during inference.
func looksLikeTimestamp(s string) bool {
	if len(s) < 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for _, c := range s[:4] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func parseBinary(s string) ([]byte, bool) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
	data, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, false
	}
	return data, true
}

// ParseScalar resolves scalar text under a built-in tag: the text must
// parse per that tag's grammar or the result is a [MalformedScalarError].
// An empty (or non-specific "!") tag goes through plain-scalar inference
// and cannot fail. Tags outside the built-in set are rejected with an
// [UnknownTagError]; resolving those needs a registry.
func ParseScalar(tag, value string) (any, error) {
	norm := tags.Normalize(tag)
	switch norm {
	case "", "!":
		v, _ := infer(value)
		return v, nil
	case tags.Null:
		return nil, nil
	case tags.Str:
		return value, nil
	case tags.Bool:
		if b, ok := parseBool(value); ok {
			return b, nil
		}
	case tags.Int:
		if v, ok := parseInt(value); ok {
			return v, nil
		}
	case tags.Float:
		if f, ok := parseFloat(value); ok {
			return f, nil
		}
	case tags.Binary:
		if data, ok := parseBinary(value); ok {
			return data, nil
		}
	case tags.Timestamp:
		if t, ok := parseTimestamp(value); ok {
			return t, nil
		}
	case tags.Seq, tags.Map:
		// Collection tags never apply to scalar text.
	default:
		return nil, &UnknownTagError{Tag: norm}
	}
	return nil, &MalformedScalarError{Tag: norm, Value: value}
}

// infer resolves untagged plain text to a value and the tag it implies.
func infer(s string) (any, string) {
	if parseNull(s) {
		return nil, tags.Null
	}
	if b, ok := parseBool(s); ok {
		return b, tags.Bool
	}
	if v, ok := parseInt(s); ok {
		return v, tags.Int
	}
	if f, ok := parseFloat(s); ok {
		return f, tags.Float
	}
	if looksLikeTimestamp(s) {
		if t, ok := parseTimestamp(s); ok {
			return t, tags.Timestamp
		}
	}
	return s, tags.Str
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatFloat produces the shortest text that parses back to the same
// value. Whole floats keep a ".0" suffix so they stay distinguishable
// from integers.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatBinary(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
