package bootstrap

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Scale results reported through bootstrapScaleTotal.
const (
	scaleResultScaled  = "scaled"
	scaleResultSkipped = "skipped"
	scaleResultFailed  = "failed"
)

var (
	bootstrapTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helloworld",
			Subsystem: "bootstrap",
			Name:      "total",
			Help:      "Total number of bootstrap sequences by final state",
		},
		[]string{"resource", "state"},
	)

	bootstrapScaleTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helloworld",
			Subsystem: "bootstrap",
			Name:      "scale_total",
			Help:      "Total number of scale decisions after a verified bootstrap by result",
		},
		[]string{"resource", "result"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		bootstrapTotal,
		bootstrapScaleTotal,
	)
}

func (w *Watcher) recordState(resource string, state State) {
	if w.enableMetrics {
		bootstrapTotal.WithLabelValues(resource, string(state)).Inc()
	}
}

func (w *Watcher) recordScale(resource, result string) {
	if w.enableMetrics {
		bootstrapScaleTotal.WithLabelValues(resource, result).Inc()
	}
}
