package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treeline/pkg/cache"
	"github.com/matzehuels/treeline/pkg/codec"
	"github.com/matzehuels/treeline/pkg/stree"
	"github.com/matzehuels/treeline/pkg/tags"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func fileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	return NewRunner(c, nil, quietLogger())
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	if r.Cache == nil {
		t.Error("NewRunner() should default to a null cache")
	}
	if r.Keyer == nil {
		t.Error("NewRunner() should default to the standard keyer")
	}
	if r.Logger == nil {
		t.Error("NewRunner() should default to the package logger")
	}
}

func TestExecuteYAMLToJSON(t *testing.T) {
	input := []byte("name: web\nports:\n  - 8080\n  - 9090\n")
	r := NewRunner(nil, nil, quietLogger())

	result, err := r.Execute(context.Background(), input, Options{From: "yaml", To: "json"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	out := string(result.Output)
	if !strings.Contains(out, `"name":"web"`) {
		t.Errorf("Execute() output missing name entry: %s", out)
	}
	if !strings.Contains(out, "[8080,9090]") {
		t.Errorf("Execute() output missing ports array: %s", out)
	}

	if result.Stats.DocCount != 1 {
		t.Errorf("Execute() DocCount = %d, want 1", result.Stats.DocCount)
	}
	if result.Stats.NodeCount != 7 {
		t.Errorf("Execute() NodeCount = %d, want 7", result.Stats.NodeCount)
	}
	if result.Stats.MaxDepth != 3 {
		t.Errorf("Execute() MaxDepth = %d, want 3", result.Stats.MaxDepth)
	}
	if result.TreeHash == "" {
		t.Error("Execute() should compute a tree hash")
	}
	if result.CacheInfo.ConvertHit {
		t.Error("Execute() first run should not hit the cache")
	}
}

func TestExecuteConvertCacheHit(t *testing.T) {
	input := []byte("a: 1\nb: 2\n")
	r := fileRunner(t)
	opts := Options{From: "yaml", To: "json"}

	first, err := r.Execute(context.Background(), input, opts)
	if err != nil {
		t.Fatalf("Execute() first run error: %v", err)
	}
	if first.CacheInfo.ConvertHit {
		t.Error("first run should miss the cache")
	}

	second, err := r.Execute(context.Background(), input, opts)
	if err != nil {
		t.Fatalf("Execute() second run error: %v", err)
	}
	if !second.CacheInfo.ConvertHit {
		t.Error("second run with same content and options should hit the cache")
	}
	if string(first.Output) != string(second.Output) {
		t.Error("cached output differs from computed output")
	}

	// Different options must not reuse the entry.
	third, err := r.Execute(context.Background(), input, Options{From: "yaml", To: "yaml"})
	if err != nil {
		t.Fatalf("Execute() third run error: %v", err)
	}
	if third.CacheInfo.ConvertHit {
		t.Error("run with different options should not hit the cache")
	}
}

func TestExecuteRefreshBypassesRead(t *testing.T) {
	input := []byte("a: 1\n")
	r := fileRunner(t)

	if _, err := r.Execute(context.Background(), input, Options{Refresh: true}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	// Refresh still fills the cache, so a normal run afterwards hits.
	result, err := r.Execute(context.Background(), input, Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !result.CacheInfo.ConvertHit {
		t.Error("run after refresh should hit the refreshed entry")
	}

	refreshed, err := r.Execute(context.Background(), input, Options{Refresh: true})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if refreshed.CacheInfo.ConvertHit {
		t.Error("refresh run should never report a cache hit")
	}
}

func TestParseDepthLimit(t *testing.T) {
	input := []byte("a:\n  b: 1\n") // depth 3: root, key, value
	r := NewRunner(nil, nil, quietLogger())

	_, err := r.Parse(context.Background(), input, Options{MaxDepth: 2})
	if err == nil {
		t.Fatal("Parse() should reject nesting beyond MaxDepth")
	}
	var depthErr *codec.DepthExceededError
	if !errors.As(err, &depthErr) {
		t.Fatalf("Parse() error = %v, want DepthExceededError", err)
	}
	if depthErr.Depth != 2 {
		t.Errorf("DepthExceededError.Depth = %d, want 2", depthErr.Depth)
	}

	if _, err := r.Parse(context.Background(), input, Options{MaxDepth: 3}); err != nil {
		t.Errorf("Parse() within the limit should pass: %v", err)
	}
}

func TestValidateAcceptsAnchors(t *testing.T) {
	input := []byte("defaults: &base\n  retries: 3\noverride: *base\n")
	r := NewRunner(nil, nil, quietLogger())

	result, err := r.Validate(context.Background(), input, Options{})
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if result.Stats.AnchorCount != 1 {
		t.Errorf("Validate() AnchorCount = %d, want 1", result.Stats.AnchorCount)
	}
	if result.Stats.AliasCount != 1 {
		t.Errorf("Validate() AliasCount = %d, want 1", result.Stats.AliasCount)
	}
	if result.TreeHash == "" {
		t.Error("Validate() should compute a tree hash")
	}
}

func TestValidateRejectsUnknownTag(t *testing.T) {
	input := []byte("value: !custom/thing 42\n")
	r := NewRunner(nil, nil, quietLogger())

	_, err := r.Validate(context.Background(), input, Options{Registry: tags.NewRegistry()})
	if err == nil {
		t.Fatal("Validate() should reject an unregistered tag")
	}
	var tagErr *codec.UnknownTagError
	if !errors.As(err, &tagErr) {
		t.Fatalf("Validate() error = %v, want UnknownTagError", err)
	}
	if tagErr.Tag != "!custom/thing" {
		t.Errorf("UnknownTagError.Tag = %q, want %q", tagErr.Tag, "!custom/thing")
	}
}

func TestValidateRejectsMalformedScalar(t *testing.T) {
	input := []byte("count: !!int notanumber\n")
	r := NewRunner(nil, nil, quietLogger())

	_, err := r.Validate(context.Background(), input, Options{})
	if err == nil {
		t.Fatal("Validate() should reject a scalar that cannot parse as its tag")
	}
	var scalarErr *codec.MalformedScalarError
	if !errors.As(err, &scalarErr) {
		t.Fatalf("Validate() error = %v, want MalformedScalarError", err)
	}
}

func TestExecuteExpandAliases(t *testing.T) {
	input := []byte("defaults: &base\n  retries: 3\noverride: *base\n")
	r := NewRunner(nil, nil, quietLogger())

	result, err := r.Execute(context.Background(), input, Options{ExpandAliases: true})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	out := string(result.Output)
	if strings.Contains(out, "*base") || strings.Contains(out, "&base") {
		t.Errorf("Execute() expanded output still references anchors: %s", out)
	}
	if strings.Count(out, "retries") != 2 {
		t.Errorf("Execute() expanded output should repeat the shared mapping: %s", out)
	}
}

func TestExpandAliasesSharing(t *testing.T) {
	shared := stree.Scalar("x")
	shared.Anchor = "a"
	root := stree.Sequence(shared, stree.Alias("a"), stree.Alias("a"))
	s := stree.NewStream(stree.NewDocument(root))

	expanded, err := ExpandAliases(s)
	if err != nil {
		t.Fatalf("ExpandAliases() error: %v", err)
	}

	st := CollectStats(expanded)
	if st.AliasCount != 0 {
		t.Errorf("expanded stream AliasCount = %d, want 0", st.AliasCount)
	}
	if st.AnchorCount != 0 {
		t.Errorf("expanded stream AnchorCount = %d, want 0", st.AnchorCount)
	}
	if st.NodeCount != 4 {
		t.Errorf("expanded stream NodeCount = %d, want 4", st.NodeCount)
	}

	// Source stream is untouched.
	if CollectStats(s).AliasCount != 2 {
		t.Error("ExpandAliases() must not mutate its input")
	}
}

func TestExpandAliasesCycle(t *testing.T) {
	root := stree.Mapping()
	root.Anchor = "self"
	root.Put("me", stree.Alias("self"))
	s := stree.NewStream(stree.NewDocument(root))

	_, err := ExpandAliases(s)
	if err == nil {
		t.Fatal("ExpandAliases() should reject cyclic streams")
	}
	if !strings.Contains(err.Error(), "no finite expansion") {
		t.Errorf("ExpandAliases() error = %v, want cycle explanation", err)
	}
}

func TestExpandAliasesDanglingAlias(t *testing.T) {
	s := stree.NewStream(stree.NewDocument(stree.Sequence(stree.Alias("ghost"))))

	_, err := ExpandAliases(s)
	var anchorErr *codec.UnknownAnchorError
	if !errors.As(err, &anchorErr) {
		t.Fatalf("ExpandAliases() error = %v, want UnknownAnchorError", err)
	}
	if anchorErr.Anchor != "ghost" {
		t.Errorf("UnknownAnchorError.Anchor = %q, want %q", anchorErr.Anchor, "ghost")
	}
}

func TestCollectStats(t *testing.T) {
	inner := stree.Sequence(stree.Scalar("1"), stree.Scalar("2"))
	inner.Anchor = "nums"
	root := stree.Mapping()
	root.Put("values", inner)
	root.Put("again", stree.Alias("nums"))
	s := stree.NewStream(stree.NewDocument(root))

	st := CollectStats(s)

	if st.DocCount != 1 {
		t.Errorf("DocCount = %d, want 1", st.DocCount)
	}
	if st.NodeCount != 7 {
		t.Errorf("NodeCount = %d, want 7", st.NodeCount)
	}
	if st.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", st.MaxDepth)
	}
	if st.AnchorCount != 1 {
		t.Errorf("AnchorCount = %d, want 1", st.AnchorCount)
	}
	if st.AliasCount != 1 {
		t.Errorf("AliasCount = %d, want 1", st.AliasCount)
	}
}

func TestCollectStatsNil(t *testing.T) {
	st := CollectStats(nil)
	if st.DocCount != 0 || st.NodeCount != 0 {
		t.Errorf("CollectStats(nil) = %+v, want zero stats", st)
	}
}

func TestDistinctTags(t *testing.T) {
	root := stree.Sequence(
		stree.TaggedScalar("!geo/point", "1,2"),
		stree.TaggedScalar("!!binary", "aGk="),
		stree.TaggedScalar("!geo/point", "3,4"),
	)
	s := stree.NewStream(stree.NewDocument(root))

	got := DistinctTags(s)
	want := []string{"!!binary", "!geo/point"}
	if len(got) != len(want) {
		t.Fatalf("DistinctTags() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DistinctTags()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTreeHashStable(t *testing.T) {
	build := func(value string) *stree.Stream {
		root := stree.Mapping()
		root.Put("key", stree.Scalar(value))
		return stree.NewStream(stree.NewDocument(root))
	}

	h1, err := TreeHash(build("a"))
	if err != nil {
		t.Fatalf("TreeHash() error: %v", err)
	}
	h2, err := TreeHash(build("a"))
	if err != nil {
		t.Fatalf("TreeHash() error: %v", err)
	}
	if h1 != h2 {
		t.Error("TreeHash() should be stable for equal trees")
	}

	h3, err := TreeHash(build("b"))
	if err != nil {
		t.Fatalf("TreeHash() error: %v", err)
	}
	if h1 == h3 {
		t.Error("TreeHash() should differ for different trees")
	}
}

func TestGraphWithCacheInfo(t *testing.T) {
	r := fileRunner(t)
	root := stree.Mapping()
	root.Put("name", stree.Scalar("web"))
	s := stree.NewStream(stree.NewDocument(root))

	data, hit, err := r.GraphWithCacheInfo(context.Background(), s, Options{GraphFormat: "dot"})
	if err != nil {
		t.Fatalf("GraphWithCacheInfo() error: %v", err)
	}
	if hit {
		t.Error("first render should miss the cache")
	}
	if !strings.Contains(string(data), "digraph") {
		t.Errorf("GraphWithCacheInfo() output missing digraph: %s", data)
	}

	cached, hit, err := r.GraphWithCacheInfo(context.Background(), s, Options{GraphFormat: "dot"})
	if err != nil {
		t.Fatalf("GraphWithCacheInfo() second run error: %v", err)
	}
	if !hit {
		t.Error("second render of the same tree should hit the cache")
	}
	if string(cached) != string(data) {
		t.Error("cached render differs from computed render")
	}
}
