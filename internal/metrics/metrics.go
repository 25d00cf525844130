// Package metrics exposes Prometheus instrumentation for the rank tracker.
package metrics

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scrapesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serptrack_scrapes_total",
			Help: "Total keyword scrape attempts by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	refreshBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "serptrack_refresh_batches_total",
			Help: "Total refresh batch invocations",
		},
	)

	queueDepthDesc = prometheus.NewDesc(
		"serptrack_retry_queue_depth",
		"Number of keyword identifiers in the retry queue",
		nil, nil,
	)

	keywordsTrackedDesc = prometheus.NewDesc(
		"serptrack_keywords_tracked",
		"Number of keywords being tracked",
		nil, nil,
	)
)

// RecordScrape counts a single scrape attempt.
func RecordScrape(backend string, failed bool) {
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	scrapesTotal.WithLabelValues(backend, outcome).Inc()
}

// RecordBatch counts one refresh batch invocation.
func RecordBatch() {
	refreshBatchesTotal.Inc()
}

// StatsSource provides the gauges the store-backed collector reads on each
// scrape of the /metrics endpoint.
type StatsSource interface {
	RetryQueueDepth(ctx context.Context) (int, error)
	KeywordCount(ctx context.Context) (int, error)
}

// StoreCollector is a custom collector that reads queue depth and keyword
// counts from persistence on demand, so the exported values always match
// durable state.
type StoreCollector struct {
	source StatsSource
}

// Describe sends the metric descriptors to the channel.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- queueDepthDesc
	ch <- keywordsTrackedDesc
}

// Collect queries the store and emits current gauge values.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()

	depth, err := c.source.RetryQueueDepth(ctx)
	if err != nil {
		slog.Error("Failed to collect retry queue depth", "error", err)
	} else {
		ch <- prometheus.MustNewConstMetric(queueDepthDesc, prometheus.GaugeValue, float64(depth))
	}

	count, err := c.source.KeywordCount(ctx)
	if err != nil {
		slog.Error("Failed to collect keyword count", "error", err)
	} else {
		ch <- prometheus.MustNewConstMetric(keywordsTrackedDesc, prometheus.GaugeValue, float64(count))
	}
}

// RegisterStoreCollector registers the store-backed collector. Call once
// at startup after the store is open.
func RegisterStoreCollector(source StatsSource) {
	prometheus.MustRegister(&StoreCollector{source: source})
}
