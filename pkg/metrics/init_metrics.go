package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPhaseMetrics() {
	r.PhasesStartedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phases_started_total",
			Help:      "Phases started, by phase",
		},
		[]string{"phase"},
	)

	r.PhasesFinishedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phases_finished_total",
			Help:      "Phases finished, by phase and outcome",
		},
		[]string{"phase", "outcome"},
	)

	r.PhaseDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall-clock duration of each phase",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"phase"},
	)

	r.PhaseRefusalsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_refusals_total",
			Help:      "Actions refused because a phase was running or out of order",
		},
		[]string{"action", "reason"},
	)

	r.PhaseRunning = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase_running",
			Help:      "1 while a phase job is running",
		},
	)
}

func (r *Registry) initTopologyMetrics() {
	r.TopologyNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "topology_nodes",
			Help:      "Nodes in the current topology",
		},
	)

	r.TopologyEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "topology_edges",
			Help:      "Edges in the current topology",
		},
	)

	r.TopologyGeneratedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "topology_generated_total",
			Help:      "Topologies generated this session",
		},
	)
}

func (r *Registry) initSpreadMetrics() {
	r.NodesActivatedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_activated_total",
			Help:      "Nodes newly marked active by scans",
		},
	)

	r.NodesInfectedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_infected_total",
			Help:      "Nodes newly infected, by node type",
		},
		[]string{"type"},
	)

	r.DetectionEventsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detection_events_total",
			Help:      "Times the detection risk indicator was raised",
		},
	)

	r.InfiltrationAttempts = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "infiltration_attempts",
			Help:      "Spread attempts used per completed infiltration",
			Buckets:   []float64{1, 2, 3, 5, 8, 12, 16, 20},
		},
	)

	r.ScanTicks = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_ticks",
			Help:      "Ticks used per completed scan",
			Buckets:   []float64{10, 12, 14, 16, 18, 20},
		},
	)

	r.NarrativesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narratives_total",
			Help:      "Operation log lines, by severity",
		},
		[]string{"severity"},
	)

	r.DiscoveriesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discoveries_total",
			Help:      "Discovery records collected by analysis",
		},
	)

	r.ItemsExfiltratedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_exfiltrated_total",
			Help:      "Collected records reported as exfiltrated",
		},
	)
}
