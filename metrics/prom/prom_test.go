package prom

import (
	"strings"
	"testing"

	"github.com/IvanBrykalov/lrucache/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Drives a real cache through the adapter and checks the exported series.
func TestAdapter_ExportsCacheSignals(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg, "lru", "test", prometheus.Labels{"app": "unit"})

	c, err := cache.NewWithOptions(cache.Options[string, int]{Capacity: 2, Metrics: m})
	if err != nil {
		t.Fatal(err)
	}
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3) // evicts a
	c.Get("a")    // miss
	c.Get("c")    // hit
	c.Get("b")    // hit

	if got := testutil.ToFloat64(m.hits); got != 2 {
		t.Fatalf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.misses); got != 1 {
		t.Fatalf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.entries); got != 2 {
		t.Fatalf("size_entries = %v, want 2", got)
	}

	want := `
# HELP lru_test_evictions_total Cache evictions by reason
# TYPE lru_test_evictions_total counter
lru_test_evictions_total{app="unit",reason="capacity"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "lru_test_evictions_total"); err != nil {
		t.Fatal(err)
	}

	c.Flush()
	if got := testutil.ToFloat64(m.entries); got != 0 {
		t.Fatalf("size_entries after Flush = %v, want 0", got)
	}
}

func TestAdapter_RegistersAllCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg, "lru", "reg", nil)
	m.Evict(cache.EvictCapacity) // materialize the labelled series

	n, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("gathered %d series, want 4", n)
	}

	// Registering the same names twice on one registry must panic.
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration must panic")
		}
	}()
	New(reg, "lru", "reg", nil)
}
