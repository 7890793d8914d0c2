package podexec

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	sessionResultClosed  = "closed"
	sessionResultNonZero = "non_zero_exit"
	sessionResultFailed  = "failed"
)

var execSessionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "helloworld",
		Subsystem: "exec",
		Name:      "sessions_total",
		Help:      "Total number of pod exec sessions by result",
	},
	[]string{"result"},
)

func init() {
	metrics.Registry.MustRegister(execSessionsTotal)
}

func (c *Channel) recordSession(result string) {
	if c.enableMetrics {
		execSessionsTotal.WithLabelValues(result).Inc()
	}
}
