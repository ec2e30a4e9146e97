// Package metrics exposes the aggregation counters scraped at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gigmap",
		Subsystem: "aggregate",
		Name:      "provider_fetch_failures_total",
		Help:      "Provider fetches that failed after retries, by provider and record kind.",
	}, []string{"provider", "kind"})

	RawRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gigmap",
		Subsystem: "aggregate",
		Name:      "raw_records_total",
		Help:      "Raw records successfully fetched, by provider and record kind.",
	}, []string{"provider", "kind"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gigmap",
		Subsystem: "aggregate",
		Name:      "provider_fetch_duration_seconds",
		Help:      "Wall time of one provider's venue+event fetch.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})

	InvalidRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gigmap",
		Subsystem: "dedup",
		Name:      "invalid_records_total",
		Help:      "Raw records filtered out before clustering, by record kind.",
	}, []string{"kind"})

	Merges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gigmap",
		Subsystem: "dedup",
		Name:      "merges_total",
		Help:      "Raw records folded into an existing canonical entity, by record kind.",
	}, []string{"kind"})

	EventsDroppedNoVenue = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gigmap",
		Subsystem: "dedup",
		Name:      "events_dropped_no_venue_total",
		Help:      "Events dropped because their provider venue reference resolved to no canonical venue.",
	})
)
