package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/dd0wney/mimic/pkg/narrative"
)

// Analyze reveals the canned Discoveries one by one at random intervals.
// It returns every discovery emitted, which is the full list unless ctx
// was cancelled part way.
func Analyze(ctx context.Context, rng *rand.Rand, r Reporter, p Params, pacer Pacer) ([]Discovery, error) {
	pacer.Pause(ctx, p.Timing.AnalysisWarmup)

	collected := make([]Discovery, 0, len(Discoveries))
	for i, d := range Discoveries {
		if ctx.Err() != nil {
			break
		}
		collected = append(collected, d)
		r.Discovered(d)
		r.Narrate(narrative.New(d.Severity, d.Message))
		r.Progress(IntelligenceMeter, float64(i+1)/float64(len(Discoveries)), statusAnalyzing)

		pacer.Pause(ctx, uniformDuration(rng, p.Timing.AnalysisMin, p.Timing.AnalysisMax))
	}

	if err := ctx.Err(); err != nil {
		return collected, fmt.Errorf("analysis cancelled after %d discoveries: %w", len(collected), err)
	}

	r.Narrate(narrative.New(narrative.Success, "Environment analysis complete. Ready"))
	r.Progress(IntelligenceMeter, 1.0, statusAnalysisDone)
	return collected, nil
}

// Exfiltrate walks the collected data in order, reporting one item per
// step. With nothing collected it reports a single no-data line, sets
// progress to 1 and returns ErrNoData.
func Exfiltrate(ctx context.Context, data []Discovery, rng *rand.Rand, r Reporter, p Params, pacer Pacer) error {
	if len(data) == 0 {
		r.Narrate(narrative.New(narrative.Warning, "No intelligence data collected to exfiltrate."))
		r.Progress(IntelligenceMeter, 1.0, statusNoData)
		return ErrNoData
	}

	sent := 0
	for i, item := range data {
		if ctx.Err() != nil {
			break
		}
		r.Progress(IntelligenceMeter, float64(i+1)/float64(len(data)), statusExfiltrating)
		r.Narrate(narrative.Newf(narrative.Success, "Exfiltrated data: %s", item.Kind))
		sent++

		pacer.Pause(ctx, uniformDuration(rng, p.Timing.ExfiltrationMin, p.Timing.ExfiltrationMax))
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("exfiltration cancelled after %d of %d items: %w", sent, len(data), err)
	}

	r.Narrate(narrative.New(narrative.Success, "Intelligence gathering and exfiltration complete."))
	r.Narrate(narrative.New(narrative.Success, "Operation MIMIC successfully concluded."))
	r.Progress(IntelligenceMeter, 1.0, statusExfilDone)
	return nil
}
