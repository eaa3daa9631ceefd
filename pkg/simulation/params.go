package simulation

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/dd0wney/mimic/pkg/validation"
)

// Timing holds the real-time pacing of each procedure.
type Timing struct {
	ScanWarmup       time.Duration
	ScanTick         time.Duration
	InfiltrationTick time.Duration
	DetectionHold    time.Duration
	AnalysisWarmup   time.Duration
	AnalysisMin      time.Duration
	AnalysisMax      time.Duration
	ExfiltrationMin  time.Duration
	ExfiltrationMax  time.Duration
}

// DefaultTiming returns the standard pacing.
func DefaultTiming() Timing {
	return Timing{
		ScanWarmup:       time.Second,
		ScanTick:         500 * time.Millisecond,
		InfiltrationTick: 800 * time.Millisecond,
		DetectionHold:    500 * time.Millisecond,
		AnalysisWarmup:   time.Second,
		AnalysisMin:      time.Second,
		AnalysisMax:      2 * time.Second,
		ExfiltrationMin:  300 * time.Millisecond,
		ExfiltrationMax:  700 * time.Millisecond,
	}
}

// Scaled returns t with every duration divided by speed. speed <= 0 leaves
// t unchanged.
func (t Timing) Scaled(speed float64) Timing {
	if speed <= 0 || speed == 1 {
		return t
	}
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) / speed)
	}
	return Timing{
		ScanWarmup:       scale(t.ScanWarmup),
		ScanTick:         scale(t.ScanTick),
		InfiltrationTick: scale(t.InfiltrationTick),
		DetectionHold:    scale(t.DetectionHold),
		AnalysisWarmup:   scale(t.AnalysisWarmup),
		AnalysisMin:      scale(t.AnalysisMin),
		AnalysisMax:      scale(t.AnalysisMax),
		ExfiltrationMin:  scale(t.ExfiltrationMin),
		ExfiltrationMax:  scale(t.ExfiltrationMax),
	}
}

// Params tunes the probabilistic model.
type Params struct {
	// Target is the system name used in narrative lines.
	Target string

	ScanStepMin      float64
	ScanStepMax      float64
	ActivationCutoff float64
	DiscoveryChance  float64

	// MaxTargets caps the number of high-value targets picked after a scan.
	MaxTargets int
	// TargetSlack is added to the target count to form the infection goal.
	TargetSlack int
	// MaxAttempts bounds infiltration regardless of spread luck.
	MaxAttempts int

	InfectionChance float64
	MimicryStepMin  float64
	MimicryStepMax  float64
	DetectionChance float64

	Timing Timing
}

// DefaultTarget is the system name used when none is configured.
const DefaultTarget = "GOV-SECLAB-MAINFRAME"

// DefaultParams returns the standard model.
func DefaultParams() Params {
	return Params{
		Target:           DefaultTarget,
		ScanStepMin:      0.05,
		ScanStepMax:      0.10,
		ActivationCutoff: 0.9,
		DiscoveryChance:  0.3,
		MaxTargets:       3,
		TargetSlack:      3,
		MaxAttempts:      20,
		InfectionChance:  0.4,
		MimicryStepMin:   0.10,
		MimicryStepMax:   0.20,
		DetectionChance:  0.2,
		Timing:           DefaultTiming(),
	}
}

// Validate reports every parameter outside the range the procedures can
// run with.
func (p Params) Validate() error {
	t := p.Timing
	return validation.NewConfigValidator("params").
		Required("target", p.Target).
		Probability("infection_chance", p.InfectionChance).
		Probability("detection_chance", p.DetectionChance).
		Probability("discovery_chance", p.DiscoveryChance).
		Probability("activation_cutoff", p.ActivationCutoff).
		OrderedFloat("scan_step", p.ScanStepMin, p.ScanStepMax).
		OrderedFloat("mimicry_step", p.MimicryStepMin, p.MimicryStepMax).
		When(p.ScanStepMin <= 0, func(cv *validation.ConfigValidator) {
			// a scan only ends once progress reaches 1
			cv.Custom("scan_step", func() error { return errors.New("minimum step must be positive") })
		}).
		RangeInt("max_targets", p.MaxTargets, 0, 50).
		Positive("target_slack", p.TargetSlack).
		Positive("max_attempts", p.MaxAttempts).
		NonNegativeDuration("scan_warmup", t.ScanWarmup).
		NonNegativeDuration("scan_tick", t.ScanTick).
		NonNegativeDuration("infiltration_tick", t.InfiltrationTick).
		NonNegativeDuration("detection_hold", t.DetectionHold).
		NonNegativeDuration("analysis_warmup", t.AnalysisWarmup).
		NonNegativeDuration("analysis_min", t.AnalysisMin).
		NonNegativeDuration("exfiltration_min", t.ExfiltrationMin).
		OrderedDuration("analysis_pause", t.AnalysisMin, t.AnalysisMax).
		OrderedDuration("exfiltration_pause", t.ExfiltrationMin, t.ExfiltrationMax).
		Validate()
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func uniformDuration(rng *rand.Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rng.Int64N(int64(hi-lo)+1))
}

func chance(rng *rand.Rand, p float64) bool {
	return rng.Float64() < p
}

// RealPacer sleeps in wall-clock time.
type RealPacer struct{}

// Pause waits for d or until ctx is done.
func (RealPacer) Pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// NoDelay is a Pacer that never waits. Used by tests and headless dry runs.
type NoDelay struct{}

func (NoDelay) Pause(context.Context, time.Duration) {}
