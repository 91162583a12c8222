package cache

import (
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"
)

// benchmarkLRU exercises a single-goroutine read/write mix against a warm
// core LRU. Keys are ints to keep strconv/alloc noise out of the hot path.
func benchmarkLRU(b *testing.B, readsPct int) {
	c, err := New[int, int](50_000)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 50_000; i++ {
		c.Set(i, 1)
	}

	b.ReportAllocs()
	b.ResetTimer()

	r := rand.New(rand.NewSource(1))
	keyMask := (1 << 16) - 1 // keyspace slightly above capacity to force evictions
	for i := 0; i < b.N; i++ {
		k := i & keyMask
		if r.Intn(100) < readsPct {
			c.Get(k)
		} else {
			c.Set(k, 1)
		}
	}
}

func BenchmarkLRU_90r10w(b *testing.B) { benchmarkLRU(b, 90) }
func BenchmarkLRU_50r50w(b *testing.B) { benchmarkLRU(b, 50) }

// benchmarkSynced is the same mix under RunParallel with string keys, so it
// includes lock contention on the single mutex.
func benchmarkSynced(b *testing.B, readsPct int) {
	s, err := NewSynced(Options[string, string]{Capacity: 100_000})
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 50_000; i++ {
		s.Set("k:"+strconv.Itoa(i), "v")
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1

	b.RunParallel(func(pb *testing.PB) {
		// Independent RNG stream for each worker.
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := "k:" + strconv.Itoa(i&keyMask)
			if r.Intn(100) < readsPct {
				s.Get(k)
			} else {
				s.Set(k, "v")
			}
			i++
		}
	})
}

func BenchmarkSynced_90r10w(b *testing.B) { benchmarkSynced(b, 90) }
func BenchmarkSynced_50r50w(b *testing.B) { benchmarkSynced(b, 50) }
