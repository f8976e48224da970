// Reviewkit - automated code review for Home Assistant integrations
//
// Deployment modes:
//
//  1. ONE-SHOT MODE (CI/CD):
//     reviewkit -root . -coverage-file coverage.json
//
//  2. EXPLICIT FILE MODE (pre-commit):
//     reviewkit custom_components/demo/sensor.py
//
//  3. WATCH MODE (continuous):
//     reviewkit -watch 5m -metrics-addr :9104 -history runs.db
//
// Exit status: 0 review accepted, 1 blocking findings, 2 fatal error.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/reviewkitio/reviewkit/pkg/engine"
	rkerrors "github.com/reviewkitio/reviewkit/pkg/errors"
	"github.com/reviewkitio/reviewkit/pkg/history"
	"github.com/reviewkitio/reviewkit/pkg/logging"
	"github.com/reviewkitio/reviewkit/pkg/metrics"
	"github.com/reviewkitio/reviewkit/pkg/render"
	"github.com/reviewkitio/reviewkit/pkg/review"
)

const (
	appName    = "reviewkit"
	appVersion = "1.0.0"
)

const (
	exitAccepted = 0
	exitBlocking = 1
	exitFatal    = 2
)

// Config is the file/env/flag-merged runtime configuration. Precedence:
// flags over environment over config file over defaults.
type Config struct {
	Root         string        `yaml:"root"`
	Full         bool          `yaml:"full"`
	JSON         bool          `yaml:"json"`
	Coverage     float64       `yaml:"coverage"`      // negative means unset
	CoverageFile string        `yaml:"coverage_file"`
	HistoryPath  string        `yaml:"history"`
	MetricsAddr  string        `yaml:"metrics_addr"`
	Watch        time.Duration `yaml:"watch"`
	Workers      int           `yaml:"workers"`
	Verbose      bool          `yaml:"verbose"`
}

func defaultConfig() Config {
	return Config{
		Root:     ".",
		Coverage: -1,
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to YAML config file")
	root := flag.String("root", ".", "Analysis root directory")
	full := flag.Bool("full", false, "Scan the whole tree, not just custom_components/")
	outputJSON := flag.Bool("json", false, "Output the report as JSON")
	coverage := flag.Float64("coverage", -1, "Test coverage percentage (0-100)")
	coverageFile := flag.String("coverage-file", "", "Path to a pytest-cov coverage.json")
	historyPath := flag.String("history", "", "Record runs in a SQLite history database at this path")
	listRuns := flag.Int("list-runs", 0, "List the N most recent recorded runs and exit (requires -history)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (with -watch)")
	watch := flag.Duration("watch", 0, "Re-run on this interval until interrupted")
	workers := flag.Int("workers", 0, "Detector worker pool size (0 = NumCPU)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	showVersion := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", appName, appVersion)
		return exitAccepted
	}

	// .env is a convenience for local runs; absence is not an error.
	_ = godotenv.Load()

	cfg := defaultConfig()
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitFatal
		}
	}
	applyEnv(&cfg)

	// Flags explicitly set on the command line win.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			cfg.Root = *root
		case "full":
			cfg.Full = *full
		case "json":
			cfg.JSON = *outputJSON
		case "coverage":
			cfg.Coverage = *coverage
		case "coverage-file":
			cfg.CoverageFile = *coverageFile
		case "history":
			cfg.HistoryPath = *historyPath
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "watch":
			cfg.Watch = *watch
		case "workers":
			cfg.Workers = *workers
		case "verbose":
			cfg.Verbose = *verbose
		}
	})

	logger := logging.FromVerbose(appName, cfg.Verbose)

	covPct, err := resolveCoverage(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFatal
	}

	var collector metrics.Collector = metrics.Nop{}
	if cfg.MetricsAddr != "" {
		collector = metrics.NewPrometheusCollector(nil)
	}

	eng, err := engine.New(engine.Options{
		Root:          cfg.Root,
		ExplicitFiles: flag.Args(),
		FullTree:      cfg.Full,
		Coverage:      covPct,
		Workers:       cfg.Workers,
		Logger:        logger,
		Metrics:       collector,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFatal
	}

	var store *history.Store
	if cfg.HistoryPath != "" {
		store, err = history.Open(cfg.HistoryPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitFatal
		}
		defer store.Close()
	}

	if *listRuns > 0 {
		if store == nil {
			fmt.Fprintln(os.Stderr, "Error: -list-runs requires -history")
			return exitFatal
		}
		return printRuns(store, *listRuns)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "Shutting down...")
		cancel()
	}()

	if cfg.Watch > 0 {
		return runWatch(ctx, eng, store, collector, &cfg, logger)
	}
	return runOnce(ctx, eng, store, &cfg, logger)
}

func runOnce(ctx context.Context, eng *engine.Engine, store *history.Store, cfg *Config, logger logging.Logger) int {
	start := time.Now()
	report, err := eng.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFatal
	}

	if store != nil {
		if id, err := store.Record(ctx, report, time.Since(start)); err != nil {
			logger.Warn("recording run in history failed: %v", err)
		} else {
			logger.Debug("recorded run %s", id)
		}
	}

	var r render.Renderer = render.NewText()
	if cfg.JSON {
		r = render.NewJSON()
	}
	if err := r.Render(os.Stdout, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFatal
	}

	if report.Verdict == review.VerdictBlocking {
		return exitBlocking
	}
	return exitAccepted
}

// runWatch re-runs the review on a ticker. The exit status reflects the
// last completed run.
func runWatch(ctx context.Context, eng *engine.Engine, store *history.Store, collector metrics.Collector, cfg *Config, logger logging.Logger) int {
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			logger.Info("serving metrics on %s", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server: %v", err)
			}
		}()
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			_ = srv.Shutdown(shutCtx)
		}()
	}

	status := runOnce(ctx, eng, store, cfg, logger)
	ticker := time.NewTicker(cfg.Watch)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return status
		case <-ticker.C:
			if s := runOnce(ctx, eng, store, cfg, logger); s != exitFatal {
				status = s
			}
		}
	}
}

func printRuns(store *history.Store, limit int) int {
	entries, err := store.Recent(context.Background(), limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFatal
	}
	for _, e := range entries {
		coverage := "unknown"
		if e.Coverage != nil {
			coverage = fmt.Sprintf("%.1f%%", *e.Coverage)
		}
		fmt.Printf("%s  %s  verdict=%s tier=%s coverage=%s files=%d findings=%d/%d/%d (%dms)\n",
			e.CreatedAt.Format(time.RFC3339), e.ID, e.Verdict, e.Tier, coverage,
			e.FilesChecked, e.Blocking, e.Warnings, e.Nitpicks, e.DurationMs)
	}
	return exitAccepted
}

func loadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return rkerrors.Configuration("main.loadConfig", "read config", err)
	}

	// Expand environment variables in config
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return rkerrors.Configuration("main.loadConfig", "parse config", err)
	}
	return nil
}

// applyEnv overlays REVIEWKIT_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("REVIEWKIT_ROOT"); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv("REVIEWKIT_FULL"); v != "" {
		cfg.Full, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("REVIEWKIT_JSON"); v != "" {
		cfg.JSON, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("REVIEWKIT_COVERAGE"); v != "" {
		if pct, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Coverage = pct
		}
	}
	if v := os.Getenv("REVIEWKIT_COVERAGE_FILE"); v != "" {
		cfg.CoverageFile = v
	}
	if v := os.Getenv("REVIEWKIT_HISTORY"); v != "" {
		cfg.HistoryPath = v
	}
	if v := os.Getenv("REVIEWKIT_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("REVIEWKIT_WATCH"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Watch = d
		}
	}
	if v := os.Getenv("REVIEWKIT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("REVIEWKIT_VERBOSE"); v != "" {
		cfg.Verbose, _ = strconv.ParseBool(v)
	}
}

// resolveCoverage merges the flag value and the coverage file. The flag
// value wins when both are given.
func resolveCoverage(cfg *Config) (*float64, error) {
	if cfg.Coverage >= 0 {
		pct := cfg.Coverage
		return &pct, nil
	}
	if cfg.CoverageFile != "" {
		return engine.LoadCoverage(cfg.CoverageFile)
	}
	return nil, nil
}
