package stree

import "testing"

func TestConstructorKinds(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want Kind
	}{
		{"scalar", Scalar("x"), KindScalar},
		{"tagged scalar", TaggedScalar("!!int", "5"), KindScalar},
		{"sequence", Sequence(Scalar("a")), KindSequence},
		{"mapping", Mapping(Pair{Key: Scalar("k"), Value: Scalar("v")}), KindMapping},
		{"alias", Alias("a1"), KindAlias},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.node.Kind != tt.want {
				t.Errorf("Kind = %s, want %s", tt.node.Kind, tt.want)
			}
		})
	}
}

func TestTaggedScalar(t *testing.T) {
	n := TaggedScalar("!!int", "42")
	if n.Tag != "!!int" || n.Value != "42" {
		t.Errorf("got tag=%q value=%q, want !!int and 42", n.Tag, n.Value)
	}
}

func TestMappingPutGet(t *testing.T) {
	m := Mapping()
	m.Put("name", Scalar("alpha"))
	m.Put("size", Scalar("3"))

	if got := m.Get("name"); got == nil || got.Value != "alpha" {
		t.Fatalf("Get(name) = %v, want alpha", got)
	}
	if got := m.Get("missing"); got != nil {
		t.Fatalf("Get(missing) = %v, want nil", got)
	}

	// Put replaces an existing entry instead of duplicating the key.
	m.Put("name", Scalar("beta"))
	if got := m.Len(); got != 2 {
		t.Fatalf("Len after replace = %d, want 2", got)
	}
	if got := m.Get("name"); got.Value != "beta" {
		t.Errorf("Get(name) after replace = %q, want beta", got.Value)
	}
}

func TestSequenceAppendLen(t *testing.T) {
	s := Sequence()
	s.Append(Scalar("a"), Scalar("b"))
	s.Append(Scalar("c"))
	if got := s.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}
	if got := Scalar("x").Len(); got != 0 {
		t.Errorf("scalar Len = %d, want 0", got)
	}
}

func TestAppendPanicsOnWrongKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Append on mapping did not panic")
		}
	}()
	Mapping().Append(Scalar("a"))
}

func TestWalkOrderAndPruning(t *testing.T) {
	tree := Mapping(
		Pair{Key: Scalar("list"), Value: Sequence(Scalar("a"), Scalar("b"))},
		Pair{Key: Scalar("ref"), Value: Alias("a1")},
	)

	var order []string
	tree.Walk(func(n *Node) bool {
		order = append(order, n.Kind.String())
		return true
	})
	want := []string{"mapping", "scalar", "sequence", "scalar", "scalar", "scalar", "alias"}
	if len(order) != len(want) {
		t.Fatalf("visited %d nodes, want %d (%v)", len(order), len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("visit %d = %s, want %s", i, order[i], want[i])
		}
	}

	// Returning false prunes children but continues with siblings.
	var pruned int
	tree.Walk(func(n *Node) bool {
		pruned++
		return !n.IsSequence()
	})
	if pruned != 5 {
		t.Errorf("pruned walk visited %d nodes, want 5", pruned)
	}
}

func TestStreamHelpers(t *testing.T) {
	s := NewStream(NewDocument(Sequence(Scalar("a"), Scalar("b"))))
	s.Append(NewDocument(Scalar("c")))

	if got := s.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}
	if got := s.First(); !got.IsSequence() {
		t.Fatalf("First = %v, want sequence root", got)
	}
	if got := s.NodeCount(); got != 4 {
		t.Errorf("NodeCount = %d, want 4", got)
	}

	var empty *Stream
	if empty.Len() != 0 || empty.First() != nil || empty.NodeCount() != 0 {
		t.Error("nil stream helpers should all report empty")
	}
}

func TestKindAndStyleStrings(t *testing.T) {
	if got := KindAlias.String(); got != "alias" {
		t.Errorf("KindAlias = %q", got)
	}
	if got := Kind(99).String(); got != "invalid" {
		t.Errorf("unknown kind = %q", got)
	}
	if got := StyleFlow.String(); got != "flow" {
		t.Errorf("StyleFlow = %q", got)
	}
	if got := StyleAny.String(); got != "any" {
		t.Errorf("StyleAny = %q", got)
	}
}
