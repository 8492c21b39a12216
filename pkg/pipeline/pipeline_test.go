package pipeline

import (
	"testing"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"yaml", false},
		{"json", false},
		{"invalid", true},
		{"YAML", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateGraphFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateGraphFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateGraphFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateRankdir(t *testing.T) {
	tests := []struct {
		rankdir string
		wantErr bool
	}{
		{"TB", false},
		{"LR", false},
		{"tb", true},
		{"diagonal", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateRankdir(tt.rankdir)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRankdir(%q) error = %v, wantErr %v", tt.rankdir, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}

	if err := opts.ValidateForParse(); err != nil {
		t.Errorf("Empty options should pass: %v", err)
	}

	// Check defaults were set
	if opts.From != FormatYAML {
		t.Errorf("From should be %s, got %s", FormatYAML, opts.From)
	}
	if opts.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth should be %d, got %d", DefaultMaxDepth, opts.MaxDepth)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidateForParse(t *testing.T) {
	// Unknown input format
	opts := Options{From: "xml"}
	if err := opts.ValidateForParse(); err == nil {
		t.Error("Unknown input format should fail")
	}

	// Negative depth
	opts = Options{MaxDepth: -1}
	if err := opts.ValidateForParse(); err == nil {
		t.Error("Negative max depth should fail")
	}

	// Explicit depth survives
	opts = Options{MaxDepth: 7}
	if err := opts.ValidateForParse(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}
	if opts.MaxDepth != 7 {
		t.Errorf("Explicit MaxDepth should survive, got %d", opts.MaxDepth)
	}
}

func TestOptionsValidateForEmit(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForEmit(); err != nil {
		t.Errorf("Empty options should pass: %v", err)
	}
	if opts.To != FormatYAML {
		t.Errorf("To should be %s, got %s", FormatYAML, opts.To)
	}

	opts = Options{To: "toml"}
	if err := opts.ValidateForEmit(); err == nil {
		t.Error("Unknown output format should fail")
	}
}

func TestOptionsNeedsTransform(t *testing.T) {
	opts := Options{}
	if opts.NeedsTransform() {
		t.Error("Default options should not need transform")
	}

	opts.ExpandAliases = true
	if !opts.NeedsTransform() {
		t.Error("ExpandAliases should need transform")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalFrom := opts.From
	originalTo := opts.To
	originalMaxDepth := opts.MaxDepth

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.From != originalFrom {
		t.Error("From changed on second call")
	}
	if opts.To != originalTo {
		t.Error("To changed on second call")
	}
	if opts.MaxDepth != originalMaxDepth {
		t.Error("MaxDepth changed on second call")
	}
}

func TestSetGraphDefaults(t *testing.T) {
	opts := Options{}
	opts.SetGraphDefaults()

	if opts.GraphFormat != "dot" {
		t.Errorf("GraphFormat should be dot, got %s", opts.GraphFormat)
	}
	if opts.Rankdir != DefaultRankdir {
		t.Errorf("Rankdir should be %s, got %s", DefaultRankdir, opts.Rankdir)
	}
}

func TestConvertKeyOptsCoverOutputKnobs(t *testing.T) {
	opts := Options{From: "yaml", To: "json", MaxDepth: 5, ExpandAliases: true}
	ko := opts.ConvertKeyOpts()

	if ko.From != "yaml" || ko.To != "json" || ko.MaxDepth != 5 || !ko.Expand {
		t.Errorf("ConvertKeyOpts dropped an output knob: %+v", ko)
	}
}
