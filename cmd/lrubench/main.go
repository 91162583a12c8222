// Command lrubench runs a synthetic Zipf workload against a Synced LRU cache
// and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IvanBrykalov/lrucache/cache"
	pmet "github.com/IvanBrykalov/lrucache/metrics/prom"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "lrubench:", err)
		os.Exit(2)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("benchmark failed", "err", err)
		os.Exit(1)
	}
}

// report is the outcome of one benchmark run.
type report struct {
	ops, reads, writes, hits, misses uint64
	elapsed                          time.Duration
	stats                            cache.Stats
	len                              int
}

func run(ctx context.Context, cfg config, log *slog.Logger) error {
	// ---- pprof server (on DefaultServeMux) ----
	if cfg.PprofAddr != "" {
		go func() {
			log.Info("pprof: serving", "addr", cfg.PprofAddr)
			if err := http.ListenAndServe(cfg.PprofAddr, nil); err != nil {
				log.Warn("pprof server stopped", "err", err)
			}
		}()
	}

	// ---- Prometheus metrics on a dedicated registry/mux ----
	reg := prometheus.NewRegistry()
	metrics := pmet.New(reg, "lru", "bench", nil)
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			log.Info("metrics: serving", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Warn("metrics server stopped", "err", err)
			}
		}()
	}

	c, err := cache.NewSynced(cache.Options[string, string]{
		Capacity: cfg.Capacity,
		Metrics:  metrics,
	})
	if err != nil {
		return fmt.Errorf("build cache: %w", err)
	}

	log.Debug("preloading", "entries", cfg.Preload)
	for i := 0; i < cfg.Preload; i++ {
		k := "k:" + strconv.Itoa(i)
		c.Set(k, "v"+strconv.Itoa(i))
	}

	log.Info("starting workload",
		"cap", cfg.Capacity, "workers", cfg.Workers, "keys", cfg.Keys,
		"reads_pct", cfg.ReadPct, "duration", cfg.Duration, "seed", cfg.Seed)

	rep := workload(ctx, c, cfg)

	hitRate := 0.0
	if rep.reads > 0 {
		hitRate = float64(rep.hits) / float64(rep.reads) * 100
	}
	fmt.Printf("cap=%d workers=%d keys=%d dur=%v seed=%d\n",
		cfg.Capacity, cfg.Workers, cfg.Keys, rep.elapsed, cfg.Seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		rep.ops, float64(rep.ops)/rep.elapsed.Seconds(), rep.reads, rep.writes)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%  evictions=%d\n",
		rep.hits, rep.misses, hitRate, rep.stats.Evictions)
	fmt.Printf("Len()=%d\n", rep.len)
	return nil
}

// workload hammers c with cfg.Workers goroutines until cfg.Duration elapses
// or ctx is cancelled.
func workload(ctx context.Context, c *cache.Synced[string, string], cfg config) report {
	var reads, writes, hits, misses, total uint64
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	keysMax := uint64(cfg.Keys - 1)
	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(cfg.Seed + int64(id)*9973))
			localZipf := rand.NewZipf(localR, cfg.ZipfS, cfg.ZipfV, keysMax)

			keyByZipf := func() string {
				return "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				if int(localR.Int31n(100)) < cfg.ReadPct {
					atomic.AddUint64(&reads, 1)
					if _, ok := c.Get(keyByZipf()); ok {
						atomic.AddUint64(&hits, 1)
					} else {
						atomic.AddUint64(&misses, 1)
					}
				} else {
					atomic.AddUint64(&writes, 1)
					c.Set(keyByZipf(), "v"+strconv.Itoa(localR.Int()))
				}
			}
		}(w)
	}
	wg.Wait()

	return report{
		ops:     atomic.LoadUint64(&total),
		reads:   atomic.LoadUint64(&reads),
		writes:  atomic.LoadUint64(&writes),
		hits:    atomic.LoadUint64(&hits),
		misses:  atomic.LoadUint64(&misses),
		elapsed: time.Since(start),
		stats:   c.Stats(),
		len:     c.Len(),
	}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
