package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mimic"

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initPhaseMetrics()
	r.initTopologyMetrics()
	r.initSpreadMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
