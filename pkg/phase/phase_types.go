package phase

import (
	"errors"

	"github.com/dd0wney/mimic/pkg/narrative"
	"github.com/dd0wney/mimic/pkg/simulation"
	"github.com/dd0wney/mimic/pkg/topology"
)

var (
	// ErrBusy is returned when an action is requested while a job runs.
	ErrBusy = errors.New("operation already in progress")
	// ErrInvalidTransition is returned when an action is out of order.
	ErrInvalidTransition = errors.New("action not allowed in current phase")
	// ErrUnknownTarget is returned by SetTarget for names not on offer.
	ErrUnknownTarget = errors.New("unknown target system")
)

// Phase is the operation stage the session is in.
type Phase int

const (
	Idle Phase = iota
	Scanning
	Infiltrating
	Analyzing
	Exfiltrating
	Complete
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Infiltrating:
		return "infiltrating"
	case Analyzing:
		return "analyzing"
	case Exfiltrating:
		return "exfiltrating"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Status is how the current phase's job stands. A session is busy
// exactly when its status is Running.
type Status int

const (
	// Ready means no job has run in this phase yet.
	Ready Status = iota
	Running
	Done
	Cancelled
	NoData
	Failed
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	case NoData:
		return "no-data"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Action is a user command that starts a phase.
type Action int

const (
	Scan Action = iota
	Infiltrate
	Analyze
	Exfiltrate
)

// AllActions lists the actions in operation order.
var AllActions = []Action{Scan, Infiltrate, Analyze, Exfiltrate}

func (a Action) String() string {
	switch a {
	case Scan:
		return "scan"
	case Infiltrate:
		return "infiltrate"
	case Analyze:
		return "analyze"
	case Exfiltrate:
		return "exfiltrate"
	default:
		return "unknown"
	}
}

// Phase returns the phase an action runs in.
func (a Action) Phase() Phase {
	switch a {
	case Scan:
		return Scanning
	case Infiltrate:
		return Infiltrating
	case Analyze:
		return Analyzing
	case Exfiltrate:
		return Exfiltrating
	default:
		return Idle
	}
}

// MeterState is one progress bar: a fraction in [0,1] and a status line.
type MeterState struct {
	Value  float64
	Status string
}

// State is the session as seen by the presentation layer. It is owned by
// the Controller and must only be read from the goroutine that calls Apply.
type State struct {
	Session string
	Seed    uint64
	Target  string
	Targets []string

	Phase  Phase
	Status Status
	// Err holds the last job error that was not a cancellation.
	Err error

	Graph      *topology.Graph
	Marks      *topology.Marks
	EntryPoint topology.NodeID
	HasEntry   bool
	HighValue  []topology.NodeID
	Collected  []simulation.Discovery

	Scan         simulation.ScanResult
	Infiltration simulation.InfiltrationResult

	Meters     [len(meterOrder)]MeterState
	Indicators [len(indicatorOrder)]simulation.Indicator
	Log        *narrative.Log
}

var (
	meterOrder     = [...]simulation.Meter{simulation.InfiltrationMeter, simulation.MimicryMeter, simulation.IntelligenceMeter}
	indicatorOrder = [...]simulation.IndicatorKey{simulation.Connection, simulation.Encryption, simulation.Detection, simulation.ProgressStatus}
)

// Busy reports whether a job is running.
func (s *State) Busy() bool {
	return s.Status == Running
}

// Meter returns the state of one progress bar.
func (s *State) Meter(m simulation.Meter) MeterState {
	if int(m) < 0 || int(m) >= len(s.Meters) {
		return MeterState{}
	}
	return s.Meters[m]
}

// Indicator returns one status-bar value.
func (s *State) Indicator(k simulation.IndicatorKey) simulation.Indicator {
	if int(k) < 0 || int(k) >= len(s.Indicators) {
		return simulation.Indicator{Key: k}
	}
	return s.Indicators[k]
}

// Event is a state change produced by a job and applied by the Controller.
type Event interface {
	event()
}

// ProgressEvent moves a meter.
type ProgressEvent struct {
	Meter  simulation.Meter
	Value  float64
	Status string
}

// NarrativeEvent appends a line to the operation log.
type NarrativeEvent struct {
	Entry narrative.Entry
}

// MarkKind says which node set a MarkEvent adds to.
type MarkKind int

const (
	MarkActive MarkKind = iota
	MarkInfected
)

// MarkEvent marks a node active or infected.
type MarkEvent struct {
	Kind MarkKind
	Node topology.NodeID
}

// IndicatorEvent updates a status-bar value.
type IndicatorEvent struct {
	Indicator simulation.Indicator
}

// DiscoveryEvent adds a record to the collected intelligence.
type DiscoveryEvent struct {
	Discovery simulation.Discovery
}

// FinishedEvent is the last event of every job.
type FinishedEvent struct {
	Action Action
	Err    error

	Scan         simulation.ScanResult
	Infiltration simulation.InfiltrationResult
}

func (ProgressEvent) event()  {}
func (NarrativeEvent) event() {}
func (MarkEvent) event()      {}
func (IndicatorEvent) event() {}
func (DiscoveryEvent) event() {}
func (FinishedEvent) event()  {}
