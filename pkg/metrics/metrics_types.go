package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for one simulator process
type Registry struct {
	// Phase Metrics
	PhasesStartedTotal  *prometheus.CounterVec
	PhasesFinishedTotal *prometheus.CounterVec
	PhaseDuration       *prometheus.HistogramVec
	PhaseRefusalsTotal  *prometheus.CounterVec
	PhaseRunning        prometheus.Gauge

	// Topology Metrics
	TopologyNodes          prometheus.Gauge
	TopologyEdges          prometheus.Gauge
	TopologyGeneratedTotal prometheus.Counter

	// Spread Metrics
	NodesActivatedTotal   prometheus.Counter
	NodesInfectedTotal    *prometheus.CounterVec
	DetectionEventsTotal  prometheus.Counter
	InfiltrationAttempts  prometheus.Histogram
	ScanTicks             prometheus.Histogram
	NarrativesTotal       *prometheus.CounterVec
	DiscoveriesTotal      prometheus.Counter
	ItemsExfiltratedTotal prometheus.Counter

	registry *prometheus.Registry
	mu       sync.Mutex
}

// Sample is one gathered metric value, flattened for display.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
	// Count is set for histograms, where Value holds the sum.
	Count uint64
}
