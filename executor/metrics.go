package executor

import "github.com/prometheus/client_golang/prometheus"

// Collector exports a QueryStats as Prometheus metrics.
type Collector struct {
	stats *QueryStats

	queries  *prometheus.Desc
	duration *prometheus.Desc
	slow     *prometheus.Desc
	errors   *prometheus.Desc
}

// NewCollector returns a Collector for stats. Metric names are prefixed
// with namespace, e.g. "pager_queries_total".
func NewCollector(namespace string, stats *QueryStats) *Collector {
	name := func(n string) string { return prometheus.BuildFQName(namespace, "", n) }
	return &Collector{
		stats:    stats,
		queries:  prometheus.NewDesc(name("queries_total"), "Statements executed.", nil, nil),
		duration: prometheus.NewDesc(name("query_duration_seconds_total"), "Time spent executing statements.", nil, nil),
		slow:     prometheus.NewDesc(name("slow_queries_total"), "Statements slower than the slow query threshold.", nil, nil),
		errors:   prometheus.NewDesc(name("query_errors_total"), "Statements that failed.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.queries
	ch <- c.duration
	ch <- c.slow
	ch <- c.errors
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats.Stats()
	ch <- prometheus.MustNewConstMetric(c.queries, prometheus.CounterValue, float64(s.TotalQueries))
	ch <- prometheus.MustNewConstMetric(c.duration, prometheus.CounterValue, s.TotalDuration.Seconds())
	ch <- prometheus.MustNewConstMetric(c.slow, prometheus.CounterValue, float64(s.SlowQueries))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(s.Errors))
}

var _ prometheus.Collector = (*Collector)(nil)
