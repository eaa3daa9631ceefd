package simulation

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/mimic/pkg/narrative"
	"github.com/dd0wney/mimic/pkg/topology"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

type progressPoint struct {
	meter Meter
	value float64
}

// recorder is a Reporter that keeps everything it is told.
type recorder struct {
	progress    []progressPoint
	narratives  []narrative.Entry
	activated   []topology.NodeID
	infected    []topology.NodeID
	indicators  []Indicator
	discoveries []Discovery

	onProgress func(Meter, float64)
}

func (r *recorder) Progress(m Meter, v float64, _ string) {
	r.progress = append(r.progress, progressPoint{m, v})
	if r.onProgress != nil {
		r.onProgress(m, v)
	}
}
func (r *recorder) Narrate(e narrative.Entry)   { r.narratives = append(r.narratives, e) }
func (r *recorder) Activate(id topology.NodeID) { r.activated = append(r.activated, id) }
func (r *recorder) Infect(id topology.NodeID)   { r.infected = append(r.infected, id) }
func (r *recorder) Indicate(ind Indicator)      { r.indicators = append(r.indicators, ind) }
func (r *recorder) Discovered(d Discovery)      { r.discoveries = append(r.discoveries, d) }

func (r *recorder) meter(m Meter) []float64 {
	var out []float64
	for _, p := range r.progress {
		if p.meter == m {
			out = append(out, p.value)
		}
	}
	return out
}

// graphWithHighValue returns a 25 node graph holding at least want
// server/database nodes.
func graphWithHighValue(t *testing.T, want int) *topology.Graph {
	t.Helper()
	for seed := uint64(1); seed < 1000; seed++ {
		g := topology.Generate(seeded(seed), 25, topology.DefaultBounds)
		if len(g.NodesOfType(topology.Server, topology.Database)) >= want {
			return g
		}
	}
	t.Fatalf("no seed produced %d high-value nodes", want)
	return nil
}

func TestScan_CompletesWithinTwentyTicks(t *testing.T) {
	p := DefaultParams()
	for seed := uint64(0); seed < 200; seed++ {
		g := topology.Generate(seeded(seed), 25, topology.DefaultBounds)
		rec := &recorder{}

		res, err := Scan(context.Background(), g, seeded(seed), rec, p, NoDelay{})
		if err != nil {
			t.Fatalf("seed %d: Scan() error = %v", seed, err)
		}
		if !res.Completed {
			t.Fatalf("seed %d: scan not completed", seed)
		}
		if res.Ticks > 20 {
			t.Fatalf("seed %d: %d ticks, want <= 20", seed, res.Ticks)
		}

		values := rec.meter(InfiltrationMeter)
		for i := 1; i < len(values); i++ {
			if values[i] < values[i-1] {
				t.Fatalf("seed %d: progress decreased %v -> %v", seed, values[i-1], values[i])
			}
		}
		if last := values[len(values)-1]; last != 1.0 {
			t.Fatalf("seed %d: final progress = %v, want exactly 1.0", seed, last)
		}
	}
}

func TestScan_PicksHighValueTargets(t *testing.T) {
	g := graphWithHighValue(t, 4)
	rec := &recorder{}

	res, err := Scan(context.Background(), g, seeded(3), rec, DefaultParams(), NoDelay{})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Targets) != 3 {
		t.Fatalf("len(Targets) = %d, want 3", len(res.Targets))
	}

	seen := make(map[topology.NodeID]bool)
	for _, id := range res.Targets {
		node, _ := g.Node(id)
		if !node.Type.HighValue() {
			t.Errorf("target %d is a %s", id, node.Type)
		}
		if seen[id] {
			t.Errorf("target %d sampled twice", id)
		}
		seen[id] = true
		if !slices.Contains(rec.activated, id) {
			t.Errorf("target %d was not activated", id)
		}
	}
	if !slices.Contains(rec.activated, res.EntryPoint) {
		t.Error("entry point was not activated")
	}
}

func TestScan_FewerCandidatesThanLimit(t *testing.T) {
	p := DefaultParams()
	p.MaxTargets = 50
	g := topology.Generate(seeded(9), 25, topology.DefaultBounds)
	candidates := g.NodesOfType(topology.Server, topology.Database)

	res, err := Scan(context.Background(), g, seeded(9), &recorder{}, p, NoDelay{})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Targets) != len(candidates) {
		t.Errorf("len(Targets) = %d, want all %d candidates", len(res.Targets), len(candidates))
	}
}

func TestScan_Cancelled(t *testing.T) {
	g := topology.Generate(seeded(5), 25, topology.DefaultBounds)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	rec.onProgress = func(m Meter, _ float64) {
		if len(rec.progress) == 3 {
			cancel()
		}
	}

	res, err := Scan(ctx, g, seeded(5), rec, DefaultParams(), NoDelay{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Scan() error = %v, want context.Canceled", err)
	}
	if res.Completed || len(res.Targets) != 0 {
		t.Errorf("cancelled scan produced targets: %+v", res)
	}
	if res.Ticks != 3 {
		t.Errorf("Ticks = %d, want 3 (in-flight tick completes, next is skipped)", res.Ticks)
	}
	for _, e := range rec.narratives {
		if e.Severity == narrative.Success {
			t.Errorf("cancelled scan emitted completion line %q", e.Text)
		}
	}
}

func TestScan_EmptyGraph(t *testing.T) {
	if _, err := Scan(context.Background(), nil, seeded(1), &recorder{}, DefaultParams(), NoDelay{}); !errors.Is(err, ErrEmptyGraph) {
		t.Errorf("Scan(nil) error = %v, want ErrEmptyGraph", err)
	}
}

func TestInfiltrate_AlwaysTerminates(t *testing.T) {
	p := DefaultParams()
	for seed := uint64(0); seed < 200; seed++ {
		g := topology.Generate(seeded(seed), 25, topology.DefaultBounds)
		rng := seeded(seed)
		scan, err := Scan(context.Background(), g, rng, &recorder{}, p, NoDelay{})
		if err != nil {
			t.Fatalf("seed %d: Scan() error = %v", seed, err)
		}

		rec := &recorder{}
		res, err := Infiltrate(context.Background(), g, scan.EntryPoint, scan.Targets, rng, rec, p, NoDelay{})
		if err != nil {
			t.Fatalf("seed %d: Infiltrate() error = %v", seed, err)
		}
		if res.Attempts > p.MaxAttempts {
			t.Fatalf("seed %d: %d attempts, want <= %d", seed, res.Attempts, p.MaxAttempts)
		}
		if res.Goal != len(scan.Targets)+3 {
			t.Fatalf("seed %d: goal = %d, want %d", seed, res.Goal, len(scan.Targets)+3)
		}
		if !res.GoalReached && res.Attempts != p.MaxAttempts {
			t.Fatalf("seed %d: stopped after %d attempts without reaching goal", seed, res.Attempts)
		}

		values := rec.meter(InfiltrationMeter)
		for i := 1; i < len(values); i++ {
			if values[i] < values[i-1] {
				t.Fatalf("seed %d: infiltration progress decreased", seed)
			}
		}
		mimicry := rec.meter(MimicryMeter)
		if mimicry[len(mimicry)-1] != 1.0 {
			t.Fatalf("seed %d: mimicry ends at %v", seed, mimicry[len(mimicry)-1])
		}
	}
}

func TestInfiltrate_TwentyFiveNodeScenario(t *testing.T) {
	g := graphWithHighValue(t, 6)
	p := DefaultParams()
	p.InfectionChance = 1.0
	p.DetectionChance = 0

	targets := g.NodesOfType(topology.Server, topology.Database)[:3]
	entry := targets[0]

	res, err := Infiltrate(context.Background(), g, entry, targets, seeded(1), &recorder{}, p, NoDelay{})
	if err != nil {
		t.Fatalf("Infiltrate() error = %v", err)
	}
	if res.Goal != 6 {
		t.Fatalf("Goal = %d, want 6", res.Goal)
	}
	// Every node has degree >= 2 at this size, so certain infection
	// reaches six nodes well inside the attempt cap.
	if !res.GoalReached {
		t.Errorf("goal not reached after %d attempts (infected %v)", res.Attempts, res.Infected)
	}
	if res.Attempts >= p.MaxAttempts {
		t.Errorf("Attempts = %d, expected size-based termination", res.Attempts)
	}
}

func TestInfiltrate_ZeroProbabilityHitsAttemptCap(t *testing.T) {
	g := graphWithHighValue(t, 3)
	p := DefaultParams()
	p.InfectionChance = 0

	rec := &recorder{}
	res, err := Infiltrate(context.Background(), g, 0, g.NodesOfType(topology.Server, topology.Database)[:3],
		seeded(2), rec, p, NoDelay{})
	if err != nil {
		t.Fatalf("Infiltrate() error = %v", err)
	}
	if res.Attempts != 20 {
		t.Errorf("Attempts = %d, want 20", res.Attempts)
	}
	if res.GoalReached {
		t.Error("goal should not be reachable with zero infection chance")
	}
	if !slices.Equal(res.Infected, []topology.NodeID{0}) {
		t.Errorf("Infected = %v, want only the entry point", res.Infected)
	}
	if !slices.Equal(rec.infected, []topology.NodeID{0}) {
		t.Errorf("reported infections = %v", rec.infected)
	}
}

func TestInfiltrate_DetectionRaisesAndReverts(t *testing.T) {
	g := graphWithHighValue(t, 3)
	p := DefaultParams()
	p.InfectionChance = 1.0
	p.DetectionChance = 1.0

	rec := &recorder{}
	res, err := Infiltrate(context.Background(), g, 0, nil, seeded(4), rec, p, NoDelay{})
	if err != nil {
		t.Fatalf("Infiltrate() error = %v", err)
	}
	if res.Detections != len(res.Infected)-1 {
		t.Errorf("Detections = %d, want one per new infection (%d)", res.Detections, len(res.Infected)-1)
	}
	if len(rec.indicators) != 2*res.Detections {
		t.Fatalf("indicator updates = %d, want %d", len(rec.indicators), 2*res.Detections)
	}
	for i := 0; i < len(rec.indicators); i += 2 {
		if rec.indicators[i].Level != Elevated || rec.indicators[i+1].Level != Nominal {
			t.Errorf("indicator pair %d = %+v, %+v", i/2, rec.indicators[i], rec.indicators[i+1])
		}
	}
}

func TestInfiltrate_NoTargetsUsesSlackGoal(t *testing.T) {
	g := graphWithHighValue(t, 1)
	p := DefaultParams()

	res, err := Infiltrate(context.Background(), g, 0, nil, seeded(6), &recorder{}, p, NoDelay{})
	if err != nil {
		t.Fatalf("Infiltrate() error = %v", err)
	}
	if res.Goal != 3 {
		t.Errorf("Goal = %d, want 3", res.Goal)
	}
}

func TestInfiltrate_InvalidEntry(t *testing.T) {
	g := topology.Generate(seeded(1), 5, topology.DefaultBounds)
	_, err := Infiltrate(context.Background(), g, 99, nil, seeded(1), &recorder{}, DefaultParams(), NoDelay{})
	if !errors.Is(err, ErrNoEntryPoint) {
		t.Errorf("error = %v, want ErrNoEntryPoint", err)
	}
}

func TestInfiltrate_Cancelled(t *testing.T) {
	g := graphWithHighValue(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	res, err := Infiltrate(ctx, g, 0, nil, seeded(1), rec, DefaultParams(), NoDelay{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if res.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0", res.Attempts)
	}
	// The seed infection happens before the first poll.
	if !slices.Equal(rec.infected, []topology.NodeID{0}) {
		t.Errorf("infected = %v", rec.infected)
	}
}

func TestAnalyze_EmitsAllDiscoveries(t *testing.T) {
	rec := &recorder{}
	got, err := Analyze(context.Background(), seeded(1), rec, DefaultParams(), NoDelay{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !slices.Equal(got, Discoveries) {
		t.Errorf("Analyze() = %v, want the canned list in order", got)
	}
	if !slices.Equal(rec.discoveries, Discoveries) {
		t.Errorf("reported discoveries differ from the returned list")
	}
	values := rec.meter(IntelligenceMeter)
	if values[0] != 1.0/6 || values[len(values)-1] != 1.0 {
		t.Errorf("intelligence progress = %v", values)
	}
}

func TestAnalyze_CancelledKeepsPartialList(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	rec.onProgress = func(Meter, float64) {
		if len(rec.discoveries) == 2 {
			cancel()
		}
	}

	got, err := Analyze(ctx, seeded(1), rec, DefaultParams(), NoDelay{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestExfiltrate_EmptyList(t *testing.T) {
	rec := &recorder{}
	err := Exfiltrate(context.Background(), nil, seeded(1), rec, DefaultParams(), NoDelay{})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("error = %v, want ErrNoData", err)
	}
	if len(rec.narratives) != 1 || rec.narratives[0].Severity != narrative.Warning {
		t.Errorf("narratives = %v, want exactly one warning", rec.narratives)
	}
	if len(rec.progress) != 1 || rec.progress[0].value != 1.0 {
		t.Errorf("progress = %v, want a single 1.0", rec.progress)
	}
}

func TestExfiltrate_ReportsEachItem(t *testing.T) {
	data := Discoveries[:4]
	rec := &recorder{}
	if err := Exfiltrate(context.Background(), data, seeded(1), rec, DefaultParams(), NoDelay{}); err != nil {
		t.Fatalf("Exfiltrate() error = %v", err)
	}

	want := []float64{0.25, 0.5, 0.75, 1.0, 1.0}
	if got := rec.meter(IntelligenceMeter); !slices.Equal(got, want) {
		t.Errorf("progress = %v, want %v", got, want)
	}
	if rec.narratives[0].Text != "Exfiltrated data: personnel" {
		t.Errorf("first line = %q", rec.narratives[0].Text)
	}
	if len(rec.narratives) != len(data)+2 {
		t.Errorf("narratives = %d, want %d", len(rec.narratives), len(data)+2)
	}
}

func TestInfectionNarrative(t *testing.T) {
	tests := []struct {
		typ topology.NodeType
		sev narrative.Severity
	}{
		{topology.Firewall, narrative.Warning},
		{topology.Router, narrative.Info},
		{topology.Server, narrative.Success},
		{topology.Database, narrative.Success},
		{topology.Endpoint, narrative.Info},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			e := infectionNarrative(tt.typ)
			if e.Severity != tt.sev {
				t.Errorf("severity = %v, want %v", e.Severity, tt.sev)
			}
		})
	}
	if got := infectionNarrative(topology.Endpoint).Text; got != "Successfully infiltrated endpoint node" {
		t.Errorf("endpoint line = %q", got)
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("DefaultParams().Validate() = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(p *Params)
		want   string
	}{
		{"missing target", func(p *Params) { p.Target = "" }, "params.target"},
		{"infection chance", func(p *Params) { p.InfectionChance = 1.2 }, "params.infection_chance"},
		{"scan step reversed", func(p *Params) { p.ScanStepMin, p.ScanStepMax = 0.2, 0.1 }, "params.scan_step"},
		{"scan step zero", func(p *Params) { p.ScanStepMin = 0 }, "params.scan_step"},
		{"max targets", func(p *Params) { p.MaxTargets = 51 }, "params.max_targets"},
		{"no attempts", func(p *Params) { p.MaxAttempts = 0 }, "params.max_attempts"},
		{"negative tick", func(p *Params) { p.Timing.ScanTick = -time.Second }, "params.scan_tick"},
		{"exfiltration pause reversed", func(p *Params) {
			p.Timing.ExfiltrationMin, p.Timing.ExfiltrationMax = time.Second, 0
		}, "params.exfiltration_pause"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error naming %s", err, tt.want)
			}
		})
	}
}

func TestTimingScaled(t *testing.T) {
	base := DefaultTiming()
	fast := base.Scaled(4)
	if fast.ScanTick != base.ScanTick/4 {
		t.Errorf("ScanTick = %v, want %v", fast.ScanTick, base.ScanTick/4)
	}
	if base.Scaled(0) != base {
		t.Error("non-positive speed should leave timing unchanged")
	}
}

func TestUniformDuration(t *testing.T) {
	rng := seeded(1)
	p := DefaultTiming()
	for i := 0; i < 1000; i++ {
		d := uniformDuration(rng, p.AnalysisMin, p.AnalysisMax)
		if d < p.AnalysisMin || d > p.AnalysisMax {
			t.Fatalf("uniformDuration = %v outside [%v,%v]", d, p.AnalysisMin, p.AnalysisMax)
		}
	}
}
