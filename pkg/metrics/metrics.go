package metrics

import (
	"sort"
	"time"

	dto "github.com/prometheus/client_model/go"
)

// RecordPhaseStart records that a phase began running
func (r *Registry) RecordPhaseStart(phase string) {
	r.PhasesStartedTotal.WithLabelValues(phase).Inc()
	r.PhaseRunning.Set(1)
}

// RecordPhaseEnd records how a phase finished and how long it ran
func (r *Registry) RecordPhaseEnd(phase, outcome string, duration time.Duration) {
	r.PhasesFinishedTotal.WithLabelValues(phase, outcome).Inc()
	r.PhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
	r.PhaseRunning.Set(0)
}

// RecordRefusal records an action the controller declined
func (r *Registry) RecordRefusal(action, reason string) {
	r.PhaseRefusalsTotal.WithLabelValues(action, reason).Inc()
}

// RecordTopology records a freshly generated topology
func (r *Registry) RecordTopology(nodes, edges int) {
	r.TopologyGeneratedTotal.Inc()
	r.TopologyNodes.Set(float64(nodes))
	r.TopologyEdges.Set(float64(edges))
}

// RecordNarrative counts one operation log line
func (r *Registry) RecordNarrative(severity string) {
	r.NarrativesTotal.WithLabelValues(severity).Inc()
}

// RecordInfection counts a newly infected node
func (r *Registry) RecordInfection(nodeType string) {
	r.NodesInfectedTotal.WithLabelValues(nodeType).Inc()
}

// Snapshot gathers every metric and flattens it into samples sorted by
// name, then labels. Histograms report their sum and count.
func (r *Registry) Snapshot() ([]Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Labels: labelMap(m.GetLabel())}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				s.Value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				s.Value = m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				s.Value = m.GetHistogram().GetSampleSum()
				s.Count = m.GetHistogram().GetSampleCount()
			default:
				continue
			}
			samples = append(samples, s)
		}
	}

	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].Name != samples[j].Name {
			return samples[i].Name < samples[j].Name
		}
		return labelKey(samples[i].Labels) < labelKey(samples[j].Labels)
	})
	return samples, nil
}

func labelMap(pairs []*dto.LabelPair) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		out[p.GetName()] = p.GetValue()
	}
	return out
}

func labelKey(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var s string
	for _, k := range keys {
		s += k + "=" + labels[k] + ","
	}
	return s
}
