package simulation

import (
	"context"
	"errors"
	"time"

	"github.com/dd0wney/mimic/pkg/narrative"
	"github.com/dd0wney/mimic/pkg/topology"
)

var (
	// ErrEmptyGraph is returned when a procedure is given a graph with no nodes.
	ErrEmptyGraph = errors.New("graph has no nodes")
	// ErrNoEntryPoint is returned when infiltration starts without a valid entry point.
	ErrNoEntryPoint = errors.New("no entry point established")
	// ErrNoData is returned by Exfiltrate when nothing was collected.
	ErrNoData = errors.New("no intelligence data collected")
)

// Meter names one of the progress bars a procedure drives.
type Meter int

const (
	// InfiltrationMeter tracks scan and infiltration progress.
	InfiltrationMeter Meter = iota
	// MimicryMeter tracks protocol mimicry during infiltration.
	MimicryMeter
	// IntelligenceMeter tracks analysis and exfiltration.
	IntelligenceMeter
)

// AllMeters lists the meters in display order.
var AllMeters = []Meter{InfiltrationMeter, MimicryMeter, IntelligenceMeter}

// String returns the meter's display title
func (m Meter) String() string {
	switch m {
	case InfiltrationMeter:
		return "System Infiltration"
	case MimicryMeter:
		return "Protocol Mimicry"
	case IntelligenceMeter:
		return "Intelligence Collection"
	default:
		return "Unknown"
	}
}

// IndicatorKey names a status-bar indicator.
type IndicatorKey int

const (
	Connection IndicatorKey = iota
	Encryption
	Detection
	ProgressStatus
)

// AllIndicators lists the status-bar indicators in display order.
var AllIndicators = []IndicatorKey{Connection, Encryption, Detection, ProgressStatus}

// String returns the indicator's display title
func (k IndicatorKey) String() string {
	switch k {
	case Connection:
		return "Connection"
	case Encryption:
		return "Encryption"
	case Detection:
		return "Detection Risk"
	case ProgressStatus:
		return "Progress"
	default:
		return "Unknown"
	}
}

// Level grades an indicator for colouring.
type Level int

const (
	Nominal Level = iota
	Elevated
	Active
)

// Indicator is a status-bar value.
type Indicator struct {
	Key   IndicatorKey
	Label string
	Level Level
}

// Discovery is one canned finding produced by environment analysis.
type Discovery struct {
	Kind     string
	Message  string
	Severity narrative.Severity
}

// Reporter receives everything a procedure produces. Implementations get
// values only; nothing passed to a Reporter is shared with the caller.
type Reporter interface {
	Progress(meter Meter, value float64, status string)
	Narrate(entry narrative.Entry)
	Activate(id topology.NodeID)
	Infect(id topology.NodeID)
	Indicate(ind Indicator)
	Discovered(d Discovery)
}

// ReporterFuncs adapts plain callbacks to Reporter. Nil fields are skipped.
type ReporterFuncs struct {
	OnProgress   func(meter Meter, value float64, status string)
	OnNarrative  func(entry narrative.Entry)
	OnActivate   func(id topology.NodeID)
	OnInfect     func(id topology.NodeID)
	OnIndicator  func(ind Indicator)
	OnDiscovered func(d Discovery)
}

func (f ReporterFuncs) Progress(meter Meter, value float64, status string) {
	if f.OnProgress != nil {
		f.OnProgress(meter, value, status)
	}
}

func (f ReporterFuncs) Narrate(entry narrative.Entry) {
	if f.OnNarrative != nil {
		f.OnNarrative(entry)
	}
}

func (f ReporterFuncs) Activate(id topology.NodeID) {
	if f.OnActivate != nil {
		f.OnActivate(id)
	}
}

func (f ReporterFuncs) Infect(id topology.NodeID) {
	if f.OnInfect != nil {
		f.OnInfect(id)
	}
}

func (f ReporterFuncs) Indicate(ind Indicator) {
	if f.OnIndicator != nil {
		f.OnIndicator(ind)
	}
}

func (f ReporterFuncs) Discovered(d Discovery) {
	if f.OnDiscovered != nil {
		f.OnDiscovered(d)
	}
}

// Pacer spaces out simulation steps in time.
type Pacer interface {
	// Pause waits for d or until ctx is done, whichever comes first.
	Pause(ctx context.Context, d time.Duration)
}

// ScanResult is what a scan establishes for infiltration.
type ScanResult struct {
	EntryPoint topology.NodeID
	Targets    []topology.NodeID
	Ticks      int
	Completed  bool
}

// InfiltrationResult summarizes an infiltration run.
type InfiltrationResult struct {
	Attempts    int
	Infected    []topology.NodeID
	Goal        int
	GoalReached bool
	Detections  int
}
