package store

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/treeline/pkg/observability"
)

type recordingStoreHooks struct {
	observability.NoopStoreHooks
	gets    int
	puts    int
	deletes int
	errors  int
	backend string
	found   bool
}

func (h *recordingStoreHooks) OnStoreGet(ctx context.Context, backend string, found bool, d time.Duration) {
	h.gets++
	h.backend = backend
	h.found = found
}

func (h *recordingStoreHooks) OnStorePut(ctx context.Context, backend string, size int, d time.Duration) {
	h.puts++
}

func (h *recordingStoreHooks) OnStoreDelete(ctx context.Context, backend string, d time.Duration) {
	h.deletes++
}

func (h *recordingStoreHooks) OnStoreError(ctx context.Context, backend, op string, err error) {
	h.errors++
}

func TestInstrumentFiresHooks(t *testing.T) {
	defer observability.Reset()
	rec := &recordingStoreHooks{}
	observability.SetStoreHooks(rec)

	ctx := context.Background()
	st := Instrument("memory", NewMemoryStore())
	defer st.Close()

	doc := New("hooked", "yaml", []byte("a: 1\n"), 0)
	if err := st.Put(ctx, doc); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if _, err := st.Get(ctx, doc.ID); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if err := st.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if rec.puts != 1 || rec.gets != 1 || rec.deletes != 1 {
		t.Errorf("hook counts = %d/%d/%d, want 1/1/1", rec.puts, rec.gets, rec.deletes)
	}
	if rec.backend != "memory" {
		t.Errorf("backend = %q, want memory", rec.backend)
	}
	if !rec.found {
		t.Error("Get of stored document should report found")
	}
	if rec.errors != 0 {
		t.Errorf("error hook fired %d times for successful calls", rec.errors)
	}
}

func TestInstrumentReportsMisses(t *testing.T) {
	defer observability.Reset()
	rec := &recordingStoreHooks{found: true}
	observability.SetStoreHooks(rec)

	ctx := context.Background()
	st := Instrument("memory", NewMemoryStore())
	defer st.Close()

	if _, err := st.Get(ctx, "no-such-id"); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.found {
		t.Error("Get of absent document should report not found")
	}

	if err := st.Delete(ctx, "no-such-id"); err == nil {
		t.Fatal("Delete of absent document should fail")
	}
	if rec.errors == 0 {
		t.Error("failed Delete should fire the error hook")
	}
}
