package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyline_bookings_total",
		Help: "Booking attempts by outcome",
	}, []string{"kind", "result"})

	SeatsDecrementedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyline_seats_decremented_total",
		Help: "Seats taken from flight inventory",
	})

	SeatsReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyline_seats_released_total",
		Help: "Seats returned to inventory by compensation",
	})

	BookingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "skyline_booking_latency_seconds",
		Help:    "Latency of booking operations",
		Buckets: prometheus.DefBuckets,
	})

	SyncEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyline_sync_entries_total",
		Help: "Sync queue entries pushed to the remote store",
	}, []string{"collection", "result"})

	SyncQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skyline_sync_queue_depth",
		Help: "Entries waiting in the sync queue",
	})

	SyncFlushSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyline_sync_flush_skipped_total",
		Help: "Flushes skipped because another flush was running",
	})

	RemoteRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyline_remote_refresh_total",
		Help: "Full collection refreshes from the remote store",
	}, []string{"collection", "result"})

	NotificationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyline_notification_failures_total",
		Help: "Subscriber failures during notification dispatch",
	}, []string{"subscriber"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skyline_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
