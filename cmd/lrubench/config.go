package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// config holds every benchmark tunable. Values come from defaults, then an
// optional TOML file, then command-line flags (flags win).
type config struct {
	ConfigPath string `toml:"-"`

	Capacity int           `toml:"capacity"`
	Workers  int           `toml:"workers"`
	Duration time.Duration `toml:"duration"`
	ReadPct  int           `toml:"reads"`

	Keys    int     `toml:"keys"`
	ZipfS   float64 `toml:"zipf_s"`
	ZipfV   float64 `toml:"zipf_v"`
	Seed    int64   `toml:"seed"`
	Preload int     `toml:"preload"`

	PprofAddr   string `toml:"pprof"`
	MetricsAddr string `toml:"http"`
	LogLevel    string `toml:"log_level"`
}

func defaultConfig() config {
	return config{
		Capacity:    100_000,
		Workers:     2 * runtime.GOMAXPROCS(0),
		Duration:    10 * time.Second,
		ReadPct:     80,
		Keys:        1_000_000,
		ZipfS:       1.1,
		ZipfV:       1.0,
		Seed:        time.Now().UnixNano(),
		MetricsAddr: ":8080",
		LogLevel:    "info",
	}
}

func newFlagSet(cfg *config, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("lrubench", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "TOML config file; flags override its values")

	fs.IntVar(&cfg.Capacity, "cap", cfg.Capacity, "cache capacity (entries)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of worker goroutines")
	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "benchmark duration")
	fs.IntVar(&cfg.ReadPct, "reads", cfg.ReadPct, "read percentage [0..100]")

	fs.IntVar(&cfg.Keys, "keys", cfg.Keys, "keyspace size")
	fs.Float64Var(&cfg.ZipfS, "zipf_s", cfg.ZipfS, "Zipf s > 1 (skew)")
	fs.Float64Var(&cfg.ZipfV, "zipf_v", cfg.ZipfV, "Zipf v >= 1")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	fs.IntVar(&cfg.Preload, "preload", cfg.Preload, "preload entries (0 = cap/2)")

	fs.StringVar(&cfg.PprofAddr, "pprof", cfg.PprofAddr, "serve pprof at addr (e.g. :6060); empty = disabled")
	fs.StringVar(&cfg.MetricsAddr, "http", cfg.MetricsAddr, "serve Prometheus metrics at addr; empty = disabled")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level: debug | info | warn | error")
	return fs
}

// parseConfig resolves the effective configuration for args.
func parseConfig(args []string, out io.Writer) (config, error) {
	cfg := defaultConfig()
	if err := newFlagSet(&cfg, out).Parse(args); err != nil {
		return cfg, err
	}

	if cfg.ConfigPath != "" {
		md, err := toml.DecodeFile(cfg.ConfigPath, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("config %s: %w", cfg.ConfigPath, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, fmt.Errorf("config %s: unknown keys: %s", cfg.ConfigPath, strings.Join(keys, ", "))
		}
		// Second pass: command-line flags take precedence over the file.
		if err := newFlagSet(&cfg, io.Discard).Parse(args); err != nil {
			return cfg, err
		}
	}

	if cfg.Preload == 0 && cfg.Capacity > 0 {
		cfg.Preload = cfg.Capacity / 2
	}
	return cfg, cfg.validate()
}

// validate checks workload parameters. Capacity is validated by the cache
// constructor so that the CLI reports the same ErrInvalidCapacity.
func (c config) validate() error {
	var errs []error
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be > 0, got %d", c.Workers))
	}
	if c.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be > 0, got %v", c.Duration))
	}
	if c.ReadPct < 0 || c.ReadPct > 100 {
		errs = append(errs, fmt.Errorf("reads must be in [0..100], got %d", c.ReadPct))
	}
	if c.Keys <= 0 {
		errs = append(errs, fmt.Errorf("keys must be > 0, got %d", c.Keys))
	}
	if c.ZipfS <= 1 {
		errs = append(errs, fmt.Errorf("zipf_s must be > 1, got %v", c.ZipfS))
	}
	if c.ZipfV < 1 {
		errs = append(errs, fmt.Errorf("zipf_v must be >= 1, got %v", c.ZipfV))
	}
	if c.Preload < 0 {
		errs = append(errs, fmt.Errorf("preload must be >= 0, got %d", c.Preload))
	}
	return errors.Join(errs...)
}
