package phase

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dd0wney/mimic/pkg/logging"
	"github.com/dd0wney/mimic/pkg/narrative"
	"github.com/dd0wney/mimic/pkg/simulation"
)

// Apply folds one job event into the session state. It is the only way
// job output reaches the state.
func (c *Controller) Apply(ev Event) {
	s := &c.state
	switch ev := ev.(type) {
	case ProgressEvent:
		if int(ev.Meter) < 0 || int(ev.Meter) >= len(s.Meters) {
			return
		}
		m := &s.Meters[ev.Meter]
		m.Value = max(m.Value, min(ev.Value, 1))
		if ev.Status != "" {
			m.Status = ev.Status
		}

	case NarrativeEvent:
		c.narrate(ev.Entry)

	case MarkEvent:
		if s.Marks == nil {
			return
		}
		switch ev.Kind {
		case MarkActive:
			if s.Marks.Activate(ev.Node) {
				c.metrics.NodesActivatedTotal.Inc()
			}
		case MarkInfected:
			if s.Marks.Infect(ev.Node) {
				if n, ok := s.Graph.Node(ev.Node); ok {
					c.metrics.RecordInfection(n.Type.String())
					c.logger.Debug("node infected", logging.Node(int(n.ID)), logging.String("type", n.Type.String()))
				}
			}
		}

	case IndicatorEvent:
		ind := ev.Indicator
		if int(ind.Key) < 0 || int(ind.Key) >= len(s.Indicators) {
			return
		}
		if ind.Key == simulation.Detection && ind.Level == simulation.Elevated {
			c.metrics.DetectionEventsTotal.Inc()
		}
		s.Indicators[ind.Key] = ind

	case DiscoveryEvent:
		s.Collected = append(s.Collected, ev.Discovery)
		c.metrics.DiscoveriesTotal.Inc()

	case FinishedEvent:
		c.finish(ev)
	}
}

func (c *Controller) finish(ev FinishedEvent) {
	s := &c.state
	if c.job == nil || c.job.action != ev.Action {
		c.logger.Warn("stale job result dropped", logging.Action(ev.Action.String()))
		return
	}
	c.job = nil
	elapsed := time.Since(c.started)

	var outcome Status
	switch {
	case ev.Err == nil:
		outcome = Done
	case errors.Is(ev.Err, context.Canceled):
		outcome = Cancelled
	case errors.Is(ev.Err, simulation.ErrNoData):
		outcome = NoData
	default:
		outcome = Failed
		s.Err = ev.Err
	}
	s.Status = outcome
	ended := s.Phase

	switch ev.Action {
	case Scan:
		s.Scan = ev.Scan
		if outcome == Done {
			s.EntryPoint, s.HasEntry = ev.Scan.EntryPoint, true
			s.HighValue = slices.Clone(ev.Scan.Targets)
			c.indicate(simulation.ProgressStatus, "Scan Complete", simulation.Nominal)
			c.indicate(simulation.Connection, "Established", simulation.Nominal)
			c.metrics.ScanTicks.Observe(float64(ev.Scan.Ticks))
		}
	case Infiltrate:
		s.Infiltration = ev.Infiltration
		if outcome == Done {
			c.indicate(simulation.ProgressStatus, "Infiltrated", simulation.Nominal)
			c.metrics.InfiltrationAttempts.Observe(float64(ev.Infiltration.Attempts))
		}
	case Analyze:
		if outcome == Done {
			c.indicate(simulation.ProgressStatus, "Analysis Complete", simulation.Nominal)
		}
	case Exfiltrate:
		switch outcome {
		case Done:
			s.Phase = Complete
			c.indicate(simulation.ProgressStatus, "Exfiltration Complete", simulation.Nominal)
			c.metrics.ItemsExfiltratedTotal.Add(float64(len(s.Collected)))
		case NoData:
			s.Phase = Analyzing
			c.indicate(simulation.ProgressStatus, "Exfiltration N/A", simulation.Elevated)
		}
	}

	switch outcome {
	case Cancelled:
		c.indicate(simulation.ProgressStatus, "Cancelled", simulation.Elevated)
		c.narrate(narrative.Newf(narrative.Warning, "Operation aborted during %s", ended))
	case Failed:
		c.indicate(simulation.ProgressStatus, "Failed", simulation.Elevated)
		c.narrate(narrative.Newf(narrative.Error, "Operation failed: %v", ev.Err))
	}

	c.metrics.RecordPhaseEnd(ended.String(), outcome.String(), elapsed)

	fields := []logging.Field{
		logging.Action(ev.Action.String()),
		logging.Phase(ended.String()),
		logging.Outcome(outcome.String()),
		logging.Latency(elapsed),
	}
	switch outcome {
	case Failed:
		c.logger.Error("phase finished", append(fields, logging.Error(ev.Err))...)
	case Cancelled, NoData:
		c.logger.Warn("phase finished", fields...)
	default:
		c.logger.Info("phase finished", fields...)
	}
}
