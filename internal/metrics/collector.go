package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kettari/games-bot/internal/parser"
)

// Collector exports extraction diagnostics. It owns its registry so the
// console commands can dump it with the node exporter textfile collector.
type Collector struct {
	registry   *prometheus.Registry
	candidates *prometheus.GaugeVec
	kept       prometheus.Gauge
	runs       *prometheus.CounterVec
	served     *prometheus.CounterVec
	fetchedAt  prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}
	c.candidates = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "games_bot",
		Name:      "extraction_candidates",
		Help:      "Candidates seen by the last extraction, by outcome",
	}, []string{"outcome"})
	c.kept = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "games_bot",
		Name:      "extraction_sessions",
		Help:      "Sessions kept by the last extraction",
	})
	c.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "games_bot",
		Name:      "extraction_runs_total",
		Help:      "Extraction runs by the last pass used",
	}, []string{"pass"})
	c.served = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "games_bot",
		Name:      "schedule_served_total",
		Help:      "Schedules served by source",
	}, []string{"source"})
	c.fetchedAt = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "games_bot",
		Name:      "schedule_fetched_timestamp_seconds",
		Help:      "Fetch time of the last served schedule",
	})
	c.registry.MustRegister(c.candidates, c.kept, c.runs, c.served, c.fetchedAt)
	return c
}

func (c *Collector) Observe(d parser.Diagnostics) {
	c.candidates.WithLabelValues("total").Set(float64(d.Total))
	c.candidates.WithLabelValues("header").Set(float64(d.SkippedHeader))
	c.candidates.WithLabelValues("banner").Set(float64(d.SkippedBanner))
	c.candidates.WithLabelValues("no_date").Set(float64(d.NoDate))
	c.candidates.WithLabelValues("no_signals").Set(float64(d.NoSignals))
	c.candidates.WithLabelValues("strict").Set(float64(d.Strict))
	c.candidates.WithLabelValues("fallback").Set(float64(d.Fallback))
	c.kept.Set(float64(d.Kept))
	if d.Pass != "" {
		c.runs.WithLabelValues(string(d.Pass)).Inc()
	}
}

func (c *Collector) ObserveServed(source string, fetchedAt time.Time) {
	c.served.WithLabelValues(source).Inc()
	if !fetchedAt.IsZero() {
		c.fetchedAt.Set(float64(fetchedAt.Unix()))
	}
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
