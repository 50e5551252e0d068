package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	skemac "github.com/reoring/skemac"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const person = `{"type":"object","properties":{"name":{"type":"string","minLength":2}},"required":["name"]}`

func newTestRegistry(t *testing.T, loader Loader, size int) (*Registry, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewPedanticRegistry()
	r, err := New(loader, Config{Size: size}, nil, reg)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return r, reg
}

func lookups(r *Registry, result string) float64 {
	return testutil.ToFloat64(r.metrics.lookups.WithLabelValues(result))
}

func TestRegistry_HitMissStale(t *testing.T) {
	ctx := context.Background()
	mem := NewMemLoader()
	mem.Put("person", []byte(person))
	r, _ := newTestRegistry(t, mem, 4)

	first, err := r.Get(ctx, "person")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := r.Get(ctx, "person")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first != second {
		t.Fatalf("unchanged document must be served from the cache")
	}
	if lookups(r, resultMiss) != 1 || lookups(r, resultHit) != 1 {
		t.Fatalf("miss=%v hit=%v", lookups(r, resultMiss), lookups(r, resultHit))
	}

	mem.Put("person", []byte(`type: object
properties:
  name: {type: string, minLength: 5}
`))
	third, err := r.Get(ctx, "person")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if third.Digest == first.Digest || lookups(r, resultStale) != 1 {
		t.Fatalf("edited document must be recompiled")
	}
	if third.Validator.IsValid(map[string]any{"name": "abc"}) {
		t.Fatalf("recompiled validator must apply the new minLength")
	}
	if r.Len() != 1 {
		t.Fatalf("len: got %d", r.Len())
	}
}

func TestRegistry_Errors(t *testing.T) {
	ctx := context.Background()
	mem := NewMemLoader()
	mem.Put("broken", []byte(`{"type":"object","properties":{"a":{"minLength":1}}}`))
	r, _ := newTestRegistry(t, mem, 4)

	if _, err := r.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	_, err := r.Get(ctx, "broken")
	var ce *skemac.CompileError
	if !errors.As(err, &ce) || !errors.Is(err, skemac.ErrMissingType) {
		t.Fatalf("want compile error, got %v", err)
	}
	if lookups(r, resultError) != 2 || r.Len() != 0 {
		t.Fatalf("errors=%v len=%d", lookups(r, resultError), r.Len())
	}
}

func TestRegistry_Eviction(t *testing.T) {
	ctx := context.Background()
	mem := NewMemLoader()
	for _, n := range []string{"a", "b", "c"} {
		mem.Put(n, []byte(person))
	}
	r, reg := newTestRegistry(t, mem, 2)
	for _, n := range []string{"a", "b", "c"} {
		if _, err := r.Get(ctx, n); err != nil {
			t.Fatalf("get %s: %v", n, err)
		}
	}
	if got := testutil.ToFloat64(r.metrics.evictions); got != 1 {
		t.Fatalf("evictions: got %v", got)
	}
	if got := testutil.ToFloat64(r.metrics.entries); got != 2 {
		t.Fatalf("entries: got %v", got)
	}
	if n, err := testutil.GatherAndCount(reg, "skemac_registry_compile_duration_seconds"); err != nil || n != 1 {
		t.Fatalf("histogram series: %d %v", n, err)
	}
	if !r.Invalidate("c") || r.Invalidate("a") {
		t.Fatalf("a was evicted, c must still be cached")
	}
}

func TestRegistry_ConcurrentGet(t *testing.T) {
	mem := NewMemLoader()
	mem.Put("person", []byte(person))
	r, _ := newTestRegistry(t, mem, 4)

	var wg sync.WaitGroup
	entries := make([]*Entry, 16)
	for i := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := r.Get(context.Background(), "person")
			if err == nil {
				entries[i] = e
			}
		}()
	}
	wg.Wait()
	for i, e := range entries {
		if e == nil || e.Digest != entries[0].Digest {
			t.Fatalf("lookup %d: got %v", i, e)
		}
	}
	if r.Len() != 1 {
		t.Fatalf("len: got %d", r.Len())
	}
}

func TestDirLoader(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write("person.json", person)
	write("order.yaml", "type: object\n")
	write("notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "nested.json"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	d := DirLoader{Dir: dir}
	names, err := d.Names()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if diff := cmp.Diff([]string{"order", "person"}, names); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
	ctx := context.Background()
	if data, err := d.Load(ctx, "order"); err != nil || string(data) != "type: object\n" {
		t.Fatalf("load order: %q %v", data, err)
	}
	for _, bad := range []string{"../person", "a/b", "..", ""} {
		if _, err := d.Load(ctx, bad); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%q: want ErrNotFound, got %v", bad, err)
		}
	}

	r, _ := newTestRegistry(t, d, 0)
	e, err := r.Get(ctx, "person")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.Validator.IsValid(map[string]any{"name": "x"}) {
		t.Fatalf("name shorter than minLength must fail")
	}
	if got, _ := r.Names(); !cmp.Equal(got, names) {
		t.Fatalf("registry names: %v", got)
	}
}
