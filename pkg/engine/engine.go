// Package engine orchestrates a review run: resolve the file set, fan the
// (file, detector) pairs out over a worker pool, and assemble the findings
// into a finalized report.
//
// Scheduling is concurrent but assembly is not: every pair writes into its
// own slot of a result matrix, and the matrix is drained in file order x
// detector registration order. Two runs over identical inputs produce
// identical reports.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/reviewkitio/reviewkit/pkg/detectors"
	rkerrors "github.com/reviewkitio/reviewkit/pkg/errors"
	"github.com/reviewkitio/reviewkit/pkg/logging"
	"github.com/reviewkitio/reviewkit/pkg/metrics"
	"github.com/reviewkitio/reviewkit/pkg/pysrc"
	"github.com/reviewkitio/reviewkit/pkg/review"
	"github.com/reviewkitio/reviewkit/pkg/target"
)

// DefaultMaxFileSize caps how much of a single file is read.
const DefaultMaxFileSize = 1 << 20 // 1 MiB

// coverageTarget is the percentage under which an advisory is attached.
const coverageTarget = 80.0

// Options configures an Engine.
type Options struct {
	// Root is the analysis root. Defaults to the current directory.
	Root string

	// ExplicitFiles bypasses tree walking when non-empty.
	ExplicitFiles []string

	// FullTree walks Root itself even when custom_components exists.
	FullTree bool

	// Coverage is the externally supplied coverage percentage, nil when
	// unknown. The engine never runs tests itself.
	Coverage *float64

	// Workers bounds the detector pool. Zero means NumCPU.
	Workers int

	// MaxFileSize caps per-file reads. Zero means DefaultMaxFileSize.
	MaxFileSize int64

	// Registry supplies the detector catalog. Nil means the built-ins.
	Registry *detectors.Registry

	Logger  logging.Logger
	Metrics metrics.Collector
}

// Engine runs reviews. Safe for repeated Run calls (watch mode reuses one
// Engine across ticks).
type Engine struct {
	opts Options
}

// New validates options and returns an Engine.
func New(opts Options) (*Engine, error) {
	const op = "engine.New"

	if opts.Coverage != nil && (*opts.Coverage < 0 || *opts.Coverage > 100) {
		return nil, rkerrors.Configuration(op,
			fmt.Sprintf("coverage percentage out of range: %g", *opts.Coverage), nil)
	}
	if opts.Workers < 0 {
		return nil, rkerrors.Configuration(op,
			fmt.Sprintf("worker count must not be negative: %d", opts.Workers), nil)
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Registry == nil {
		opts.Registry = detectors.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	return &Engine{opts: opts}, nil
}

// Run executes one review and returns the finalized report.
func (e *Engine) Run(ctx context.Context) (*review.Report, error) {
	start := time.Now()

	sel, err := target.Select(target.Options{
		Root:          e.opts.Root,
		ExplicitFiles: e.opts.ExplicitFiles,
		FullTree:      e.opts.FullTree,
	})
	if err != nil {
		return nil, err
	}

	sources, guards := e.loadSources(sel)

	report := review.NewReport()
	for _, note := range sel.Notes {
		report.AddNote(note)
	}

	dets := e.opts.Registry.All()
	e.opts.Logger.Debug("reviewing %d files with %d detectors", len(sources), len(dets))

	matrix, scheduled := e.runDetectors(ctx, sources, dets)

	// Per-file guard findings come before that file's detector findings.
	for fi := range sources {
		report.Add(guards[fi]...)
		for di := range dets {
			report.Add(matrix[fi][di]...)
		}
	}

	report.FilesChecked = len(sources)
	report.ChecksPerformed = scheduled
	report.CoveragePercentage = e.opts.Coverage
	if adv := coverageAdvisory(e.opts.Coverage); adv != nil {
		report.Add(*adv)
	}
	report.Finalize()

	e.record(report, time.Since(start))
	return report, nil
}

// loadSources reads the selected files. Oversized files stay in the set
// with empty content plus a warning finding; unreadable ones are dropped
// with a note.
func (e *Engine) loadSources(sel *target.Selection) ([]*detectors.SourceFile, [][]review.Finding) {
	var sources []*detectors.SourceFile
	var guards [][]review.Finding

	for _, rel := range sel.Files {
		abs := filepath.Join(sel.Root, filepath.FromSlash(rel))
		var fileGuards []review.Finding

		info, err := os.Stat(abs)
		if err != nil {
			sel.Notes = append(sel.Notes, "skipped missing or unreadable file: "+rel)
			continue
		}

		var content string
		if info.Size() > e.opts.MaxFileSize {
			fileGuards = append(fileGuards, review.Finding{
				Severity:    review.SeverityWarning,
				Category:    review.CategoryQuality,
				File:        rel,
				Title:       "File too large to scan",
				Description: fmt.Sprintf("File is %d bytes, scan limit is %d", info.Size(), e.opts.MaxFileSize),
				Suggestion:  "Split the module or exclude generated files from the tree",
			})
		} else {
			raw, err := os.ReadFile(abs)
			if err != nil {
				sel.Notes = append(sel.Notes, "skipped missing or unreadable file: "+rel)
				continue
			}
			content = string(raw)
		}

		src := &detectors.SourceFile{
			Path:    rel,
			Content: content,
			Lines:   strings.Split(content, "\n"),
		}
		if src.IsPython() && content != "" {
			tree, perr := pysrc.Parse(content)
			if perr != nil {
				fileGuards = append(fileGuards, review.Finding{
					Severity:    review.SeverityBlocking,
					Category:    review.CategoryQuality,
					File:        rel,
					Title:       "Syntax error",
					Description: "Python syntax error: " + perr.Error(),
				})
			} else {
				src.Tree = tree
			}
		}

		sources = append(sources, src)
		guards = append(guards, fileGuards)
		e.opts.Metrics.CounterInc(metrics.FilesScannedTotal.Name)
	}
	return sources, guards
}

// runDetectors fans (file, detector) pairs out over the worker pool and
// returns the slot matrix plus the number of pairs actually scheduled.
// Cancellation stops scheduling; started checks run to completion, so on
// an aborted run the count can be below files x detectors.
func (e *Engine) runDetectors(ctx context.Context, sources []*detectors.SourceFile, dets []detectors.Detector) ([][][]review.Finding, int) {
	matrix := make([][][]review.Finding, len(sources))
	for fi := range matrix {
		matrix[fi] = make([][]review.Finding, len(dets))
	}

	type pair struct{ fi, di int }
	jobs := make(chan pair)

	var wg sync.WaitGroup
	workers := e.opts.Workers
	if n := len(sources) * len(dets); n < workers {
		workers = n
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				matrix[p.fi][p.di] = e.check(dets[p.di], sources[p.fi])
			}
		}()
	}

	scheduled := 0
schedule:
	for fi := range sources {
		for di := range dets {
			if ctx.Err() != nil {
				break schedule
			}
			select {
			case jobs <- pair{fi, di}:
				scheduled++
			case <-ctx.Done():
				break schedule
			}
		}
	}
	close(jobs)
	wg.Wait()
	return matrix, scheduled
}

// check invokes one detector on one file, recovering panics into a
// warning finding so a single bad detector never kills the run.
func (e *Engine) check(d detectors.Detector, src *detectors.SourceFile) (out []review.Finding) {
	defer func() {
		if r := recover(); r != nil {
			e.opts.Logger.Warn("detector %s panicked on %s: %v", d.Name(), src.Path, r)
			out = []review.Finding{{
				Severity:    review.SeverityWarning,
				Category:    review.CategoryQuality,
				File:        src.Path,
				Title:       "Detector failure",
				Description: fmt.Sprintf("Detector %q failed on this file: %v", d.Name(), r),
			}}
		}
	}()
	e.opts.Metrics.CounterInc(metrics.ChecksTotal.Name, d.Name())
	return d.Check(src)
}

// coverageAdvisory returns the below-target warning, or nil.
func coverageAdvisory(coverage *float64) *review.Finding {
	if coverage == nil || *coverage >= coverageTarget {
		return nil
	}
	return &review.Finding{
		Severity:    review.SeverityWarning,
		Category:    review.CategoryTesting,
		File:        "tests/",
		Title:       "Test coverage below target",
		Description: fmt.Sprintf("Coverage is %.1f%%, target is %.0f%%", *coverage, coverageTarget),
		Suggestion:  "Add tests for uncovered code paths",
	}
}

func (e *Engine) record(r *review.Report, elapsed time.Duration) {
	m := e.opts.Metrics
	m.CounterInc(metrics.RunsTotal.Name, string(r.Verdict))
	m.HistogramObserve(metrics.RunDuration.Name, elapsed.Seconds())
	for _, f := range r.Findings {
		m.CounterInc(metrics.FindingsTotal.Name, string(f.Severity), string(f.Category))
	}
	if r.CoveragePercentage != nil {
		m.GaugeSet(metrics.CoveragePercent.Name, *r.CoveragePercentage)
	}
	e.opts.Logger.Info("review finished: verdict=%s tier=%s findings=%d files=%d elapsed=%s",
		r.Verdict, r.QualityTier, r.TotalFindings(), r.FilesChecked, elapsed.Round(time.Millisecond))
}
