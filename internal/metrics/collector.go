// Package metrics exposes cache counters and request timings to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidbz/ideaforge/internal/domain"
	"github.com/davidbz/ideaforge/internal/observability"
)

const (
	namespace      = "ideaforge"
	cacheSubsystem = "cache"
	scrapeTimeout  = 2 * time.Second
)

// StatsSource provides cache statistics snapshots.
type StatsSource interface {
	Stats(ctx context.Context) (domain.CacheStats, error)
}

// CacheCollector reads a fresh stats snapshot on every scrape.
type CacheCollector struct {
	source StatsSource

	lookups         *prometheus.Desc
	evictions       *prometheus.Desc
	entries         *prometheus.Desc
	buckets         *prometheus.Desc
	avgSimilarity   *prometheus.Desc
	overallHitRatio *prometheus.Desc
	ideasByType     *prometheus.Desc
}

// NewCacheCollector creates a collector over source.
func NewCacheCollector(source StatsSource) *CacheCollector {
	fqName := func(name string) string {
		return prometheus.BuildFQName(namespace, cacheSubsystem, name)
	}

	return &CacheCollector{
		source: source,
		lookups: prometheus.NewDesc(fqName("lookups_total"),
			"Cache lookups by layer and result.", []string{"layer", "result"}, nil),
		evictions: prometheus.NewDesc(fqName("evictions_total"),
			"Entries evicted from full semantic buckets.", nil, nil),
		entries: prometheus.NewDesc(fqName("entries"),
			"Entries currently held per layer.", []string{"layer"}, nil),
		buckets: prometheus.NewDesc(fqName("buckets"),
			"Semantic buckets currently allocated.", nil, nil),
		avgSimilarity: prometheus.NewDesc(fqName("semantic_similarity_average"),
			"Mean similarity of semantic hits.", nil, nil),
		overallHitRatio: prometheus.NewDesc(fqName("hit_ratio"),
			"Combined hit ratio across both layers.", nil, nil),
		ideasByType: prometheus.NewDesc(fqName("ideas_cached_total"),
			"Ideas cached by classified type.", []string{"idea_type"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.lookups
	ch <- c.evictions
	ch <- c.entries
	ch <- c.buckets
	ch <- c.avgSimilarity
	ch <- c.overallHitRatio
	ch <- c.ideasByType
}

// Collect implements prometheus.Collector. A closed cache yields no samples.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	stats, err := c.source.Stats(ctx)
	if err != nil {
		observability.FromContext(ctx).Warn("cache stats unavailable for scrape", observability.Error(err))
		return
	}
	eff := stats.Effectiveness()

	counter := func(desc *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, v, labels...)
	}
	gauge := func(desc *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v, labels...)
	}

	counter(c.lookups, float64(stats.ExactHits), "exact", "hit")
	counter(c.lookups, float64(stats.ExactMisses), "exact", "miss")
	counter(c.lookups, float64(stats.SemanticHits), "semantic", "hit")
	counter(c.lookups, float64(stats.SemanticMisses), "semantic", "miss")
	counter(c.evictions, float64(stats.Evictions))

	gauge(c.entries, float64(stats.ExactEntries), "exact")
	gauge(c.entries, float64(stats.SemanticEntries), "semantic")
	gauge(c.buckets, float64(stats.Buckets))
	gauge(c.avgSimilarity, eff.AverageSimilarity)
	gauge(c.overallHitRatio, eff.OverallHitRate)

	for ideaType, n := range stats.IdeasByType {
		counter(c.ideasByType, float64(n), string(ideaType))
	}
}

// NewRequestDuration creates the HTTP request latency histogram and registers it.
func NewRequestDuration(reg prometheus.Registerer) *prometheus.HistogramVec {
	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	reg.MustRegister(hist)
	return hist
}

// NewRegistry creates a registry holding the cache collector and the Go
// runtime collectors.
func NewRegistry(source StatsSource) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		NewCacheCollector(source),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
