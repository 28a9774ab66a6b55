// Package metrics provides Prometheus collectors for the wird bot backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CheckInsRecorded counts completed check-ins, including duplicates that were
// rejected by the anti-spam guard.
var CheckInsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wird",
	Name:      "check_ins_total",
	Help:      "Total check-in events by outcome.",
}, []string{"outcome"})

// StreakLength observes the streak value after each successful advance.
var StreakLength = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "wird",
	Name:      "streak_length_days",
	Help:      "Distribution of streak lengths at check-in time.",
	Buckets:   []float64{1, 3, 5, 7, 14, 30, 60, 90, 180, 365},
})

// RemindersSent counts dispatched reminders by kind.
var RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wird",
	Name:      "reminders_sent_total",
	Help:      "Total reminders dispatched.",
}, []string{"kind"})

// DispatchFailures counts notification deliveries that errored.
var DispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wird",
	Name:      "dispatch_failures_total",
	Help:      "Total notification dispatch failures.",
}, []string{"kind"})

// TickDuration observes how long each scheduler scan takes.
var TickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "wird",
	Name:      "scheduler_tick_seconds",
	Help:      "Scheduler scan duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"scan"})

// ActiveUsers tracks users with a check-in inside the timeframe.
var ActiveUsers = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "wird",
	Name:      "active_users",
	Help:      "Users with a check-in within the timeframe.",
}, []string{"timeframe"})

// StoreLatency observes repository round-trip time per operation.
var StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "wird",
	Name:      "store_latency_seconds",
	Help:      "Store operation latency in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
}, []string{"operation"})

// TafsirLookups counts AI lookup requests by input type and outcome.
var TafsirLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wird",
	Name:      "tafsir_lookups_total",
	Help:      "Total tafsir lookups by input and outcome.",
}, []string{"input", "outcome"})
