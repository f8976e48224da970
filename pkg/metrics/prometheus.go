package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements Collector on top of a Prometheus registry.
type PrometheusCollector struct {
	mu sync.RWMutex

	registry *prometheus.Registry

	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec

	defs map[string]Definition
}

// NewPrometheusCollector creates a collector with the standard engine
// metrics pre-registered. Passing a nil registry creates a fresh one with
// the default Go process collectors attached.
func NewPrometheusCollector(registry *prometheus.Registry) *PrometheusCollector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	c := &PrometheusCollector{
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		defs:       make(map[string]Definition),
	}
	for _, def := range Defaults() {
		c.MustRegister(def)
	}
	return c
}

// MustRegister registers a metric definition, panicking on conflicts.
// Panics here are programmer errors: definitions are package constants.
func (c *PrometheusCollector) MustRegister(def Definition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs[def.Name] = def
	switch def.Type {
	case MetricTypeCounter:
		v := prometheus.NewCounterVec(prometheus.CounterOpts{Name: def.Name, Help: def.Help}, def.Labels)
		c.registry.MustRegister(v)
		c.counters[def.Name] = v
	case MetricTypeGauge:
		v := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: def.Name, Help: def.Help}, def.Labels)
		c.registry.MustRegister(v)
		c.gauges[def.Name] = v
	case MetricTypeHistogram:
		buckets := def.Buckets
		if len(buckets) == 0 {
			buckets = prometheus.DefBuckets
		}
		v := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: def.Name, Help: def.Help, Buckets: buckets}, def.Labels)
		c.registry.MustRegister(v)
		c.histograms[def.Name] = v
	}
}

// CounterInc increments a counter by one.
func (c *PrometheusCollector) CounterInc(name string, labels ...string) {
	c.CounterAdd(name, 1, labels...)
}

// CounterAdd adds a value to a counter. Unknown names are ignored so the
// engine never crashes over an unregistered metric.
func (c *PrometheusCollector) CounterAdd(name string, value float64, labels ...string) {
	c.mu.RLock()
	v, ok := c.counters[name]
	c.mu.RUnlock()
	if ok {
		v.WithLabelValues(labels...).Add(value)
	}
}

// GaugeSet sets a gauge value.
func (c *PrometheusCollector) GaugeSet(name string, value float64, labels ...string) {
	c.mu.RLock()
	v, ok := c.gauges[name]
	c.mu.RUnlock()
	if ok {
		v.WithLabelValues(labels...).Set(value)
	}
}

// HistogramObserve records a histogram observation.
func (c *PrometheusCollector) HistogramObserve(name string, value float64, labels ...string) {
	c.mu.RLock()
	v, ok := c.histograms[name]
	c.mu.RUnlock()
	if ok {
		v.WithLabelValues(labels...).Observe(value)
	}
}

// Handler returns the /metrics HTTP handler.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Reset re-creates all registered metrics. For tests.
func (c *PrometheusCollector) Reset() {
	c.mu.Lock()
	defs := make([]Definition, 0, len(c.defs))
	for _, def := range c.defs {
		defs = append(defs, def)
	}
	for name, v := range c.counters {
		c.registry.Unregister(v)
		delete(c.counters, name)
	}
	for name, v := range c.gauges {
		c.registry.Unregister(v)
		delete(c.gauges, name)
	}
	for name, v := range c.histograms {
		c.registry.Unregister(v)
		delete(c.histograms, name)
	}
	c.mu.Unlock()
	for _, def := range defs {
		c.MustRegister(def)
	}
}

var _ Collector = (*PrometheusCollector)(nil)
