package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestDefaultsCoverAllTypes(t *testing.T) {
	defs := Defaults()
	if len(defs) != 6 {
		t.Fatalf("got %d definitions, want 6", len(defs))
	}
	seen := map[MetricType]bool{}
	for _, def := range defs {
		if def.Name == "" || def.Help == "" {
			t.Errorf("definition %+v missing name or help", def)
		}
		if !strings.HasPrefix(def.Name, "reviewkit_") {
			t.Errorf("metric %s not namespaced", def.Name)
		}
		seen[def.Type] = true
	}
	for _, mt := range []MetricType{MetricTypeCounter, MetricTypeGauge, MetricTypeHistogram} {
		if !seen[mt] {
			t.Errorf("no default metric of type %s", mt)
		}
	}
}

func TestPrometheusCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	c.CounterInc(FilesScannedTotal.Name)
	c.CounterInc(FilesScannedTotal.Name)
	c.CounterInc(FindingsTotal.Name, "blocking", "security")
	c.GaugeSet(CoveragePercent.Name, 87.5)
	c.HistogramObserve(RunDuration.Name, 0.2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		"reviewkit_files_scanned_total 2",
		`reviewkit_findings_total{category="security",severity="blocking"} 1`,
		"reviewkit_coverage_percent 87.5",
		"reviewkit_run_duration_seconds_count 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestPrometheusCollectorIgnoresUnknownNames(t *testing.T) {
	c := NewPrometheusCollector(prometheus.NewRegistry())

	// Must not panic.
	c.CounterInc("no_such_metric")
	c.CounterAdd("no_such_metric", 3)
	c.GaugeSet("no_such_metric", 1)
	c.HistogramObserve("no_such_metric", 1)
}

func TestPrometheusCollectorReset(t *testing.T) {
	c := NewPrometheusCollector(prometheus.NewRegistry())
	c.CounterInc(FilesScannedTotal.Name)
	c.Reset()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if strings.Contains(rec.Body.String(), "reviewkit_files_scanned_total 1") {
		t.Error("Reset() did not clear counter state")
	}

	// Still usable after Reset.
	c.CounterInc(FilesScannedTotal.Name)
}

func TestNopCollector(t *testing.T) {
	var c Collector = Nop{}
	c.CounterInc("x")
	c.GaugeSet("x", 1)
	c.HistogramObserve("x", 1)
	if c.Handler() == nil {
		t.Error("Nop Handler() returned nil")
	}
}
