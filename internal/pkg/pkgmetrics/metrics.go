package pkgmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgpool"
)

const namespace = "bilimcp"

// Registry holds all metric instances for the application.
type Registry struct {
	// Upstream API metrics.
	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	// Fetch pool metrics.
	PoolTasksScheduled *prometheus.CounterVec
	PoolTasksCompleted *prometheus.CounterVec
	PoolTasksFailed    *prometheus.CounterVec
	PoolTaskDuration   *prometheus.HistogramVec
	PoolWaitDuration   *prometheus.HistogramVec
	PoolActive         *prometheus.GaugeVec
	PoolQueued         *prometheus.GaugeVec

	// Tool metrics.
	ToolInvocations *prometheus.CounterVec
	ToolDuration    *prometheus.HistogramVec

	// Cache metrics.
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// NewRegistry creates a metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of upstream API requests",
			},
			[]string{"endpoint", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Time spent on upstream API requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),

		PoolTasksScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "tasks_scheduled_total",
				Help:      "Total number of tasks scheduled on the fetch pool",
			},
			[]string{"pool"},
		),

		PoolTasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "tasks_completed_total",
				Help:      "Total number of pool tasks that finished without error",
			},
			[]string{"pool"},
		),

		PoolTasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "tasks_failed_total",
				Help:      "Total number of pool tasks that finished with an error",
			},
			[]string{"pool"},
		),

		PoolTaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "task_duration_seconds",
				Help:      "Time spent executing pool tasks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool"},
		),

		PoolWaitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "wait_duration_seconds",
				Help:      "Time tasks spent queued before starting",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool"},
		),

		PoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "active_tasks",
				Help:      "Number of pool tasks currently executing",
			},
			[]string{"pool"},
		),

		PoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "queued_tasks",
				Help:      "Number of pool tasks waiting for a slot",
			},
			[]string{"pool"},
		),

		ToolInvocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tool",
				Name:      "invocations_total",
				Help:      "Total number of MCP tool invocations",
			},
			[]string{"tool", "outcome"},
		),

		ToolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "tool",
				Name:      "invocation_duration_seconds",
				Help:      "Time spent handling MCP tool invocations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),

		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"backend"},
		),

		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"backend"},
		),
	}
}

// PoolHooks adapts the registry into pkgpool lifecycle hooks for the named
// pool. Gauges are driven off the hook sequence: scheduled tasks sit in
// queued until OnStart moves them to active, OnSettle drops them.
func PoolHooks(r *Registry, pool string) pkgpool.Hooks {
	return pkgpool.Hooks{
		OnSchedule: func() {
			r.PoolTasksScheduled.WithLabelValues(pool).Inc()
			r.PoolQueued.WithLabelValues(pool).Inc()
		},
		OnStart: func(wait time.Duration) {
			r.PoolQueued.WithLabelValues(pool).Dec()
			r.PoolActive.WithLabelValues(pool).Inc()
			r.PoolWaitDuration.WithLabelValues(pool).Observe(wait.Seconds())
		},
		OnSettle: func(d time.Duration, err error) {
			r.PoolActive.WithLabelValues(pool).Dec()
			r.PoolTaskDuration.WithLabelValues(pool).Observe(d.Seconds())
			if err != nil {
				r.PoolTasksFailed.WithLabelValues(pool).Inc()
				return
			}
			r.PoolTasksCompleted.WithLabelValues(pool).Inc()
		},
	}
}
