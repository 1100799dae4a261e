// Package metrics exposes the application's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	notificationDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskforge",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Total number of notification delivery attempts.",
		},
		[]string{"channel", "status"},
	)

	webhookPosts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskforge",
			Subsystem: "notify",
			Name:      "webhook_posts_total",
			Help:      "Total number of webhook post attempts.",
		},
		[]string{"status"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskforge",
			Subsystem: "queue",
			Name:      "job_runs_total",
			Help:      "Total number of fan-out job executions.",
		},
		[]string{"kind", "status"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "taskforge",
			Subsystem: "queue",
			Name:      "job_run_duration_seconds",
			Help:      "Duration of fan-out job executions.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"kind"},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "taskforge",
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Number of jobs waiting in the in-process queue.",
		},
	)

	sweepRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "taskforge",
			Subsystem: "deadlines",
			Name:      "sweep_runs_total",
			Help:      "Total number of deadline sweep runs.",
		},
	)

	sweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "taskforge",
			Subsystem: "deadlines",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of deadline sweep runs.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
	)

	sweepReminders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskforge",
			Subsystem: "deadlines",
			Name:      "reminders_total",
			Help:      "Total number of deadline reminders emitted.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		notificationDeliveries,
		webhookPosts,
		jobRuns,
		jobDuration,
		queueDepth,
		sweepRuns,
		sweepDuration,
		sweepReminders,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordDelivery records one notification delivery attempt.
func RecordDelivery(channel string, ok bool) {
	notificationDeliveries.WithLabelValues(channel, statusLabel(ok)).Inc()
}

// RecordWebhookPost records one webhook post attempt.
func RecordWebhookPost(ok bool) {
	webhookPosts.WithLabelValues(statusLabel(ok)).Inc()
}

// RecordJobRun records one fan-out job execution.
func RecordJobRun(kind string, duration time.Duration, ok bool) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	jobRuns.WithLabelValues(kind, statusLabel(ok)).Inc()
	jobDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// SetQueueDepth reports the current number of queued jobs.
func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}

// RecordSweep records one deadline sweep run.
func RecordSweep(duration time.Duration, reminders map[string]int) {
	sweepRuns.Inc()
	sweepDuration.Observe(duration.Seconds())
	for kind, n := range reminders {
		sweepReminders.WithLabelValues(kind).Add(float64(n))
	}
}

func statusLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
