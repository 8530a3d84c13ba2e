// Package metrics holds the process-wide prometheus registry and the
// scheduler's collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// JobsFired counts successful dispatches by job mode.
	JobsFired = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chrono_jobs_fired_total",
		Help: "Successful job dispatches.",
	}, []string{"mode"})

	// DispatchFailures counts failed dispatches by job mode.
	DispatchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chrono_dispatch_failures_total",
		Help: "Failed job dispatches.",
	}, []string{"mode"})

	// JobsCompleted counts one-time jobs that reached completion.
	JobsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chrono_jobs_completed_total",
		Help: "One-time jobs completed.",
	})

	// ScheduledJobs tracks the number of currently scheduled jobs.
	ScheduledJobs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chrono_scheduled_jobs",
		Help: "Jobs currently in scheduled state.",
	})
)

func init() {
	registry.MustRegister(JobsFired, DispatchFailures, JobsCompleted, ScheduledJobs)
}

func GetRegistry() *prometheus.Registry {
	return registry
}

// Handler serves the registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
