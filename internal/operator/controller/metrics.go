package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Reconcile actions reported through reconcileTotal.
const (
	actionCreated   = "created"
	actionScaleUp   = "scaled_up"
	actionScaleDown = "scaled_down"
	actionUnchanged = "unchanged"
	actionDeleted   = "deleted"
	actionError     = "error"
)

var (
	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helloworld",
			Subsystem: "controller",
			Name:      "reconcile_total",
			Help:      "Total number of reconciliations by resulting action",
		},
		[]string{"resource", "action"},
	)

	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "helloworld",
			Subsystem: "controller",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliation in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"resource"},
	)
)

func init() {
	// Register metrics with controller-runtime's registry
	metrics.Registry.MustRegister(
		reconcileTotal,
		reconcileDuration,
	)
}

// recordReconcileMetric records a reconciliation outcome.
func recordReconcileMetric(resource, action string) {
	reconcileTotal.WithLabelValues(resource, action).Inc()
}

// recordReconcileDurationMetric records how long a reconciliation took.
func recordReconcileDurationMetric(resource string, duration float64) {
	reconcileDuration.WithLabelValues(resource).Observe(duration)
}

func (r *HelloWorldReconciler) recordReconcile(resource, action string) {
	if r.enableMetrics {
		recordReconcileMetric(resource, action)
	}
}

func (r *HelloWorldReconciler) recordReconcileDuration(resource string, duration float64) {
	if r.enableMetrics {
		recordReconcileDurationMetric(resource, duration)
	}
}
