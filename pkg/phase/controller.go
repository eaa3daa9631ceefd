// Package phase sequences an operation through scan, infiltration,
// analysis and exfiltration. A Controller owns the session state and is
// its only writer; each phase runs as a background Job whose events the
// owner feeds back through Apply, in order.
package phase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/mimic/pkg/logging"
	"github.com/dd0wney/mimic/pkg/metrics"
	"github.com/dd0wney/mimic/pkg/narrative"
	"github.com/dd0wney/mimic/pkg/simulation"
	"github.com/dd0wney/mimic/pkg/topology"
)

// Options configures a Controller. Zero values fall back to defaults.
type Options struct {
	Nodes  int
	Bounds topology.Bounds
	Params simulation.Params
	// Seed drives every random choice of the session. 0 picks one from
	// the clock.
	Seed uint64
	// Targets are the systems SetTarget accepts. Params.Target is always
	// included.
	Targets  []string
	Pacer    simulation.Pacer
	Logger   logging.Logger
	Metrics  *metrics.Registry
	LogLimit int
}

// Controller runs the phase state machine. It is not safe for concurrent
// use: Start, Apply, Cancel and Reset must all be called from one
// goroutine.
type Controller struct {
	nodes   int
	bounds  topology.Bounds
	params  simulation.Params
	pacer   simulation.Pacer
	logger  logging.Logger
	metrics *metrics.Registry

	rng     *rand.Rand
	state   State
	job     *Job
	started time.Time
}

// NewController creates a controller in the idle phase.
func NewController(opts Options) *Controller {
	if opts.Nodes <= 0 {
		opts.Nodes = topology.DefaultNodeCount
	}
	if opts.Bounds.Width <= 0 || opts.Bounds.Height <= 0 {
		opts.Bounds = topology.DefaultBounds
	}
	if opts.Params.MaxAttempts == 0 {
		opts.Params = simulation.DefaultParams()
	}
	if opts.Params.Target == "" {
		opts.Params.Target = simulation.DefaultTarget
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}
	if opts.Pacer == nil {
		opts.Pacer = simulation.RealPacer{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRegistry()
	}

	targets := slices.Clone(opts.Targets)
	if !slices.Contains(targets, opts.Params.Target) {
		targets = append([]string{opts.Params.Target}, targets...)
	}

	session := uuid.NewString()
	c := &Controller{
		nodes:   opts.Nodes,
		bounds:  opts.Bounds,
		params:  opts.Params,
		pacer:   opts.Pacer,
		logger:  opts.Logger.With(logging.Component("controller"), logging.Session(session)),
		metrics: opts.Metrics,
		rng:     rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		state: State{
			Session: session,
			Seed:    opts.Seed,
			Target:  opts.Params.Target,
			Targets: targets,
			Log:     narrative.NewLog(opts.LogLimit),
		},
	}
	c.clear()

	c.narrate(narrative.New(narrative.Success, "MIMIC Infiltration System v3.7.4 initialized"))
	c.narrate(narrative.New(narrative.Info, "Connect to a target system to begin infiltration sequence"))
	c.logger.Info("session started", logging.Seed(opts.Seed), logging.String("target", c.state.Target))
	return c
}

// State returns the session state. Callers must treat it as read-only.
func (c *Controller) State() *State {
	return &c.state
}

// Metrics returns the registry the controller records into.
func (c *Controller) Metrics() *metrics.Registry {
	return c.metrics
}

// Enabled reports whether Start(action) would currently succeed.
func (c *Controller) Enabled(action Action) bool {
	return c.check(action) == nil
}

func (c *Controller) check(action Action) error {
	s := &c.state
	if s.Busy() {
		return ErrBusy
	}
	if !allowed(action, s.Phase, s.Status) {
		return fmt.Errorf("%w: %s while %s is %s", ErrInvalidTransition, action, s.Phase, s.Status)
	}
	return nil
}

// Start launches the job for action. It returns ErrBusy while another job
// runs and ErrInvalidTransition when the action is out of order; in both
// cases the state is unchanged.
func (c *Controller) Start(action Action) (*Job, error) {
	if err := c.check(action); err != nil {
		reason := "invalid"
		if errors.Is(err, ErrBusy) {
			reason = "busy"
		}
		c.metrics.RecordRefusal(action.String(), reason)
		c.logger.Debug("action refused",
			logging.Action(action.String()),
			logging.Phase(c.state.Phase.String()),
			logging.Error(err))
		return nil, err
	}

	s := &c.state
	params := c.params
	params.Target = s.Target
	rng := c.childRNG()
	pacer := c.pacer
	job, ctx := newJob(context.Background(), action)

	var fn func(r simulation.Reporter) FinishedEvent
	switch action {
	case Scan:
		g := c.generate()
		fn = func(r simulation.Reporter) FinishedEvent {
			res, err := simulation.Scan(ctx, g, rng, r, params, pacer)
			return FinishedEvent{Err: err, Scan: res}
		}
	case Infiltrate:
		g, entry, targets := s.Graph, s.EntryPoint, slices.Clone(s.HighValue)
		fn = func(r simulation.Reporter) FinishedEvent {
			res, err := simulation.Infiltrate(ctx, g, entry, targets, rng, r, params, pacer)
			return FinishedEvent{Err: err, Infiltration: res}
		}
	case Analyze:
		s.Collected = nil
		fn = func(r simulation.Reporter) FinishedEvent {
			// Collected is rebuilt from DiscoveryEvents; they are the authoritative copy.
			_, err := simulation.Analyze(ctx, rng, r, params, pacer)
			return FinishedEvent{Err: err}
		}
	case Exfiltrate:
		data := slices.Clone(s.Collected)
		fn = func(r simulation.Reporter) FinishedEvent {
			return FinishedEvent{Err: simulation.Exfiltrate(ctx, data, rng, r, params, pacer)}
		}
	}

	s.Phase = action.Phase()
	s.Status = Running
	s.Err = nil
	c.prepare(action)

	c.job = job
	c.started = time.Now()
	c.metrics.RecordPhaseStart(s.Phase.String())
	c.logger.Info("phase started",
		logging.Action(action.String()),
		logging.Phase(s.Phase.String()),
		logging.String("target", s.Target))

	job.run(fn)
	return job, nil
}

// Run starts action and applies every event of its job before returning
// the job's error. onEvent, if set, sees each event after it is applied.
func (c *Controller) Run(action Action, onEvent func(Event)) error {
	job, err := c.Start(action)
	if err != nil {
		return err
	}
	var result error
	for ev := range job.Events() {
		c.Apply(ev)
		if fin, ok := ev.(FinishedEvent); ok {
			result = fin.Err
		}
		if onEvent != nil {
			onEvent(ev)
		}
	}
	return result
}

// Cancel asks the running job to stop. It reports whether a job was
// running. The session stays busy until the job's FinishedEvent is applied.
func (c *Controller) Cancel() bool {
	if c.job == nil {
		return false
	}
	c.job.Cancel()
	progress := 0.0
	for _, m := range c.state.Meters {
		progress = max(progress, m.Value)
	}
	c.logger.Info("cancel requested", logging.Phase(c.state.Phase.String()), logging.Progress(progress))
	return true
}

// Abandon cancels the running job and stops delivering its events.
func (c *Controller) Abandon() {
	if c.job != nil {
		c.job.Abandon()
		c.job = nil
	}
}

// Reset returns an idle session, discarding the topology and everything
// derived from it. The operation log is kept.
func (c *Controller) Reset() error {
	if c.state.Busy() {
		c.metrics.RecordRefusal("reset", "busy")
		return ErrBusy
	}
	c.clear()
	c.narrate(narrative.New(narrative.System, "Session reset. Connect to a target system to begin"))
	c.logger.Info("session reset")
	return nil
}

// SetTarget selects the system named in narrative lines.
func (c *Controller) SetTarget(name string) error {
	if c.state.Busy() {
		return ErrBusy
	}
	if !slices.Contains(c.state.Targets, name) {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, name)
	}
	c.state.Target = name
	c.narrate(narrative.Newf(narrative.Info, "Target system selected: %s", name))
	return nil
}

// CycleTarget selects the next offered target system.
func (c *Controller) CycleTarget() error {
	s := &c.state
	i := slices.Index(s.Targets, s.Target)
	return c.SetTarget(s.Targets[(i+1)%len(s.Targets)])
}

func (c *Controller) childRNG() *rand.Rand {
	return rand.New(rand.NewPCG(c.rng.Uint64(), c.rng.Uint64()))
}

// generate replaces the topology and clears everything derived from the
// previous one.
func (c *Controller) generate() *topology.Graph {
	s := &c.state
	timer := logging.StartTimer(c.logger, "topology generated")
	g := topology.Generate(c.rng, c.nodes, c.bounds)
	s.Graph = g
	s.Marks = topology.NewMarks(g.Len())
	s.EntryPoint, s.HasEntry = 0, false
	s.HighValue = nil
	s.Collected = nil
	s.Scan = simulation.ScanResult{}
	s.Infiltration = simulation.InfiltrationResult{}

	stats := g.Stats()
	c.metrics.RecordTopology(stats.NodeCount, stats.EdgeCount)
	timer.EndWithLevel(logging.DebugLevel,
		logging.Count(stats.NodeCount),
		logging.Int("edges", stats.EdgeCount),
		logging.Int("min_degree", stats.MinDegree),
		logging.Int("max_degree", stats.MaxDegree))
	if err := g.Validate(); err != nil {
		c.logger.Error("generated topology is invalid", logging.Error(err))
	}
	return g
}

func (c *Controller) clear() {
	s := &c.state
	s.Phase, s.Status, s.Err = Idle, Ready, nil
	s.Graph, s.Marks = nil, nil
	s.EntryPoint, s.HasEntry = 0, false
	s.HighValue, s.Collected = nil, nil
	s.Scan = simulation.ScanResult{}
	s.Infiltration = simulation.InfiltrationResult{}
	for _, m := range meterOrder {
		s.Meters[m] = MeterState{Status: "Waiting..."}
	}
	for _, k := range indicatorOrder {
		s.Indicators[k] = simulation.Indicator{Key: k, Label: "Optimal", Level: simulation.Nominal}
	}
}

func (c *Controller) narrate(e narrative.Entry) {
	c.state.Log.Append(e)
	c.metrics.RecordNarrative(e.Severity.String())
}

func (c *Controller) indicate(key simulation.IndicatorKey, label string, level simulation.Level) {
	c.state.Indicators[key] = simulation.Indicator{Key: key, Label: label, Level: level}
}

func (c *Controller) meter(m simulation.Meter, value float64, status string) {
	c.state.Meters[m] = MeterState{Value: value, Status: status}
}

// prepare resets the meters a phase drives and logs its opening lines.
func (c *Controller) prepare(action Action) {
	switch action {
	case Scan:
		c.meter(simulation.InfiltrationMeter, 0, "Preparing scan...")
		c.meter(simulation.MimicryMeter, 0, "Waiting...")
		c.meter(simulation.IntelligenceMeter, 0, "Waiting...")
		c.indicate(simulation.Connection, "Establishing", simulation.Elevated)
		c.indicate(simulation.Detection, "Minimal", simulation.Nominal)
		c.indicate(simulation.ProgressStatus, "Scanning", simulation.Active)
		c.narrate(narrative.Newf(narrative.Info, "Initiating network scan on target: %s", c.state.Target))
	case Infiltrate:
		c.meter(simulation.InfiltrationMeter, 0, "Deploying...")
		c.meter(simulation.MimicryMeter, 0, "Initializing mimicry protocols...")
		c.meter(simulation.IntelligenceMeter, 0, "Waiting...")
		c.indicate(simulation.Detection, "Low", simulation.Elevated)
		c.indicate(simulation.ProgressStatus, "Infiltrating", simulation.Elevated)
		c.narrate(narrative.New(narrative.Info, "Deploying Mimic infiltration module..."))
		c.narrate(narrative.New(narrative.Info, "Establishing secure communication channels..."))
	case Analyze:
		c.meter(simulation.IntelligenceMeter, 0, "Initializing analysis...")
		c.indicate(simulation.ProgressStatus, "Analyzing", simulation.Active)
		c.narrate(narrative.New(narrative.Info, "Beginning environment analysis..."))
		c.narrate(narrative.New(narrative.Info, "Scanning for classified information and system vulnerabilities..."))
	case Exfiltrate:
		c.meter(simulation.IntelligenceMeter, 0, "Preparing data exfiltration...")
		c.indicate(simulation.ProgressStatus, "Exfiltrating", simulation.Active)
		c.narrate(narrative.New(narrative.Info, "Initiating intelligence gathering operation..."))
		c.narrate(narrative.New(narrative.Info, "Preparing to exfiltrate collected data..."))
	}
}
