package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/dd0wney/mimic/pkg/narrative"
	"github.com/dd0wney/mimic/pkg/topology"
)

// Scan sweeps g, lighting up random nodes as they are "discovered", then
// picks an entry point and up to MaxTargets high-value targets.
//
// The entry point is chosen before the sweep begins. Each tick advances
// progress by a uniform step in [ScanStepMin, ScanStepMax]; while
// progress is below ActivationCutoff a random node is activated. When ctx
// is cancelled the sweep stops at the next tick boundary and no targets
// are chosen.
func Scan(ctx context.Context, g *topology.Graph, rng *rand.Rand, r Reporter, p Params, pacer Pacer) (ScanResult, error) {
	if g == nil || g.Len() == 0 {
		return ScanResult{}, ErrEmptyGraph
	}

	pacer.Pause(ctx, p.Timing.ScanWarmup)

	nodes := g.Nodes()
	res := ScanResult{EntryPoint: topology.NodeID(rng.IntN(len(nodes)))}
	r.Narrate(narrative.Newf(narrative.Info, "Searching for vulnerabilities in %s network...", p.Target))

	progress := 0.0
	for progress < 1.0 && ctx.Err() == nil {
		res.Ticks++
		progress = clamp(progress+uniform(rng, p.ScanStepMin, p.ScanStepMax), 0, 1.0)

		status := statusMapping
		if progress >= 0.5 {
			status = statusIdentifying
		}
		r.Progress(InfiltrationMeter, progress, status)

		if progress < p.ActivationCutoff {
			id := topology.NodeID(rng.IntN(len(nodes)))
			r.Activate(id)
			if chance(rng, p.DiscoveryChance) {
				descriptor := securityDescriptors[rng.IntN(len(securityDescriptors))]
				r.Narrate(narrative.Newf(narrative.Info, "Discovered %s node with %s security",
					nodes[id].Type.Upper(), descriptor))
			}
		}

		pacer.Pause(ctx, p.Timing.ScanTick)
	}

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("scan cancelled after %d ticks: %w", res.Ticks, err)
	}

	res.Targets = sampleTargets(rng, g.NodesOfType(topology.HighValueTypes()...), p.MaxTargets)
	res.Completed = true

	r.Activate(res.EntryPoint)
	r.Narrate(narrative.Newf(narrative.Success, "Scan complete. Entry point identified: %s",
		nodes[res.EntryPoint].Type.Upper()))
	for _, id := range res.Targets {
		r.Activate(id)
		r.Narrate(narrative.Newf(narrative.Info, "High-value target identified: %s", nodes[id].Type.Upper()))
	}
	if len(res.Targets) > 0 {
		reachable := g.Reachable(res.EntryPoint, res.Targets)
		r.Narrate(narrative.Newf(narrative.Info, "%d of %d high-value targets reachable from entry point",
			len(reachable), len(res.Targets)))
	}
	r.Progress(InfiltrationMeter, 1.0, statusScanDone)

	return res, nil
}

// sampleTargets draws up to limit ids from candidates without replacement.
func sampleTargets(rng *rand.Rand, candidates []topology.NodeID, limit int) []topology.NodeID {
	n := min(limit, len(candidates))
	if n <= 0 {
		return nil
	}
	pool := append([]topology.NodeID(nil), candidates...)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
