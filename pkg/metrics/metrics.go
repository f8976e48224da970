// Package metrics provides metrics collection for the reviewkit engine.
// It defines a small Collector interface with a no-op default and a
// Prometheus-backed implementation for long-running (watch) deployments.
package metrics

import "net/http"

// Collector is the interface the engine records metrics through.
// Implement it to plug in a custom backend (StatsD, OpenTelemetry, ...).
type Collector interface {
	// Counter operations
	CounterInc(name string, labels ...string)
	CounterAdd(name string, value float64, labels ...string)

	// Gauge operations
	GaugeSet(name string, value float64, labels ...string)

	// Histogram operations
	HistogramObserve(name string, value float64, labels ...string)

	// Handler returns an HTTP handler for a metrics endpoint
	Handler() http.Handler

	// Reset clears all metrics (for testing)
	Reset()
}

// MetricType represents the type of metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Definition declares a metric with its metadata.
type Definition struct {
	Name    string
	Type    MetricType
	Help    string
	Labels  []string
	Buckets []float64 // histograms only
}

// Standard engine metrics.
var (
	FilesScannedTotal = Definition{
		Name: "reviewkit_files_scanned_total",
		Type: MetricTypeCounter,
		Help: "Total number of files opened and scanned",
	}
	FindingsTotal = Definition{
		Name:   "reviewkit_findings_total",
		Type:   MetricTypeCounter,
		Help:   "Total findings emitted, by severity and category",
		Labels: []string{"severity", "category"},
	}
	ChecksTotal = Definition{
		Name:   "reviewkit_checks_total",
		Type:   MetricTypeCounter,
		Help:   "Total detector invocations, by detector",
		Labels: []string{"detector"},
	}
	RunsTotal = Definition{
		Name:   "reviewkit_runs_total",
		Type:   MetricTypeCounter,
		Help:   "Total review runs, by verdict",
		Labels: []string{"verdict"},
	}
	RunDuration = Definition{
		Name:    "reviewkit_run_duration_seconds",
		Type:    MetricTypeHistogram,
		Help:    "Wall-clock duration of a full review run",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}
	CoveragePercent = Definition{
		Name: "reviewkit_coverage_percent",
		Type: MetricTypeGauge,
		Help: "Externally supplied test coverage percentage of the last run",
	}
)

// Defaults lists the standard engine metrics for registration.
func Defaults() []Definition {
	return []Definition{
		FilesScannedTotal,
		FindingsTotal,
		ChecksTotal,
		RunsTotal,
		RunDuration,
		CoveragePercent,
	}
}

// Nop is a Collector that discards everything.
type Nop struct{}

func (Nop) CounterInc(name string, labels ...string)                  {}
func (Nop) CounterAdd(name string, value float64, labels ...string)   {}
func (Nop) GaugeSet(name string, value float64, labels ...string)     {}
func (Nop) HistogramObserve(name string, value float64, labels ...string) {}
func (Nop) Handler() http.Handler                                     { return http.NotFoundHandler() }
func (Nop) Reset()                                                    {}

var _ Collector = Nop{}
