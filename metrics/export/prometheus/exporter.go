// Package prometheus exposes the engine's counters as a
// prometheus.Collector. The engine itself stays dependency-free on the
// hot path; this adapter reads snapshots at scrape time.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authvault "github.com/keplerhq/authvault"
	"github.com/keplerhq/authvault/cache"
)

type source interface {
	MetricsSnapshot() map[authvault.MetricID]uint64
	CacheStats() cache.Stats
}

// Exporter implements prometheus.Collector over an engine.
type Exporter struct {
	source source
	descs  map[authvault.MetricID]*prometheus.Desc

	cacheHits     *prometheus.Desc
	cacheMisses   *prometheus.Desc
	cacheDegraded *prometheus.Desc
}

// NewExporter builds an exporter reading from the given service.
func NewExporter(service *authvault.Service) *Exporter {
	return NewExporterFromSource(service)
}

// NewExporterFromSource builds an exporter over any snapshot source.
func NewExporterFromSource(src source) *Exporter {
	descs := make(map[authvault.MetricID]*prometheus.Desc)
	for _, id := range authvault.MetricIDs() {
		descs[id] = prometheus.NewDesc(
			"authvault_"+id.String()+"_total",
			"Engine counter "+id.String()+".",
			nil, nil,
		)
	}
	return &Exporter{
		source: src,
		descs:  descs,
		cacheHits: prometheus.NewDesc(
			"authvault_cache_hits_total", "User snapshot cache hits.", nil, nil),
		cacheMisses: prometheus.NewDesc(
			"authvault_cache_misses_total", "User snapshot cache misses.", nil, nil),
		cacheDegraded: prometheus.NewDesc(
			"authvault_cache_degraded_total", "Cache operations degraded by store outages.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range e.descs {
		ch <- desc
	}
	ch <- e.cacheHits
	ch <- e.cacheMisses
	ch <- e.cacheDegraded
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	for id, value := range e.source.MetricsSnapshot() {
		desc, ok := e.descs[id]
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(value))
	}

	stats := e.source.CacheStats()
	ch <- prometheus.MustNewConstMetric(e.cacheHits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(e.cacheMisses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(e.cacheDegraded, prometheus.CounterValue, float64(stats.Degraded))
}

// Handler returns an http.Handler serving the exporter on its own
// registry.
func (e *Exporter) Handler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(e)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
