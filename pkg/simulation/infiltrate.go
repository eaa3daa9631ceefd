package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/dd0wney/mimic/pkg/narrative"
	"github.com/dd0wney/mimic/pkg/topology"
)

// Infiltrate spreads an infection outward from entry over g.
//
// The run ends when the infected set reaches len(targets)+TargetSlack
// nodes, when MaxAttempts spread attempts have elapsed, or when ctx is
// cancelled. Each attempt gives every non-infected neighbour of every
// infected node an independent InfectionChance of falling.
func Infiltrate(ctx context.Context, g *topology.Graph, entry topology.NodeID, targets []topology.NodeID,
	rng *rand.Rand, r Reporter, p Params, pacer Pacer) (InfiltrationResult, error) {
	if g == nil || g.Len() == 0 {
		return InfiltrationResult{}, ErrEmptyGraph
	}
	if !g.Contains(entry) {
		return InfiltrationResult{}, fmt.Errorf("%w: node %d", ErrNoEntryPoint, entry)
	}

	res := InfiltrationResult{Goal: len(targets) + p.TargetSlack}
	nodes := g.Nodes()

	r.Infect(entry)
	r.Narrate(narrative.Newf(narrative.Success, "Initial access established at node %d", entry))
	infected := map[topology.NodeID]struct{}{entry: {}}

	mimicry := 0.0
	for len(infected) < res.Goal && ctx.Err() == nil && res.Attempts < p.MaxAttempts {
		res.Attempts++

		progress := clamp(float64(len(infected))/float64(res.Goal), 0, 1.0)
		r.Progress(InfiltrationMeter, progress, statusPersistence)

		mimicry = clamp(mimicry+uniform(rng, p.MimicryStepMin, p.MimicryStepMax), 0, 1.0)
		r.Progress(MimicryMeter, mimicry, statusAdapting)

		for _, id := range sortedIDs(infected) {
			for _, next := range g.Neighbors(id) {
				if _, ok := infected[next]; ok {
					continue
				}
				if !chance(rng, p.InfectionChance) {
					continue
				}
				infected[next] = struct{}{}
				r.Infect(next)
				r.Narrate(infectionNarrative(nodes[next].Type))

				if chance(rng, p.DetectionChance) {
					res.Detections++
					r.Narrate(narrative.New(narrative.Warning,
						"Security scan detected - shifting traffic patterns to avoid detection"))
					r.Indicate(Indicator{Key: Detection, Label: "Moderate", Level: Elevated})
					pacer.Pause(ctx, p.Timing.DetectionHold)
					r.Indicate(Indicator{Key: Detection, Label: "Low", Level: Nominal})
				}
			}
		}

		pacer.Pause(ctx, p.Timing.InfiltrationTick)
	}

	res.Infected = sortedIDs(infected)
	res.GoalReached = len(infected) >= res.Goal

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("infiltration cancelled after %d attempts: %w", res.Attempts, err)
	}

	r.Narrate(narrative.New(narrative.Success, "Mimic infiltration complete - established presence in target network"))
	r.Narrate(narrative.New(narrative.Success, "System defenses successfully bypassed. No signs of detection."))
	r.Progress(InfiltrationMeter, 1.0, statusInfiltrated)
	r.Progress(MimicryMeter, 1.0, statusMimicryOn)

	return res, nil
}

func sortedIDs(set map[topology.NodeID]struct{}) []topology.NodeID {
	out := make([]topology.NodeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
