// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhooksReceived counts inbound webhooks by topic and outcome
	// (processed, ignored, unauthorized, malformed, failed).
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopsync_webhooks_received_total",
		Help: "Inbound webhooks by topic and outcome.",
	}, []string{"topic", "status"})

	SyncedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopsync_synced_records_total",
		Help: "Records upserted by the bulk synchronizer, by resource kind.",
	}, []string{"resource"})

	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopsync_sync_runs_total",
		Help: "Bulk sync invocations by terminal outcome.",
	}, []string{"status"})

	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopsync_sync_duration_seconds",
		Help:    "Wall time of full bulk sync invocations.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	EventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopsync_events_published_total",
		Help: "Realtime events emitted to the subscription channel.",
	})
)
