package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boincctl",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total GUI RPC operations.",
		},
		[]string{"op", "outcome"},
	)
	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "boincctl",
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "GUI RPC operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op", "outcome"},
	)
	daemonUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "boincctl",
			Subsystem: "daemon",
			Name:      "up",
			Help:      "Whether the last daemon poll succeeded.",
		},
		[]string{"endpoint"},
	)
	daemonTasks = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "boincctl",
			Subsystem: "daemon",
			Name:      "tasks",
			Help:      "Task results reported by the daemon, by lifecycle state.",
		},
		[]string{"endpoint", "state"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(rpcRequests, rpcDuration, daemonUp, daemonTasks)
	})
}

// RecordRPC counts one GUI RPC operation. outcome is "ok" or the
// failure kind label.
func RecordRPC(op, outcome string, duration time.Duration) {
	RegisterMetrics()
	rpcRequests.WithLabelValues(op, outcome).Inc()
	rpcDuration.WithLabelValues(op, outcome).Observe(duration.Seconds())
}

func SetDaemonUp(endpoint string, up bool) {
	RegisterMetrics()
	v := 0.0
	if up {
		v = 1.0
	}
	daemonUp.WithLabelValues(endpoint).Set(v)
}

func SetDaemonTasks(endpoint string, byState map[string]int) {
	RegisterMetrics()
	daemonTasks.DeletePartialMatch(prometheus.Labels{"endpoint": endpoint})
	for state, count := range byState {
		daemonTasks.WithLabelValues(endpoint, state).Set(float64(count))
	}
}
