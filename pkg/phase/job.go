package phase

import (
	"context"
	"sync"

	"github.com/dd0wney/mimic/pkg/narrative"
	"github.com/dd0wney/mimic/pkg/simulation"
	"github.com/dd0wney/mimic/pkg/topology"
)

const eventBuffer = 64

// Job is one background phase run. Its events arrive in the order the
// procedure produced them; the channel is closed after the FinishedEvent.
type Job struct {
	action Action
	events chan Event
	cancel context.CancelFunc

	stop     chan struct{}
	stopOnce sync.Once
}

func newJob(ctx context.Context, action Action) (*Job, context.Context) {
	jobCtx, cancel := context.WithCancel(ctx)
	return &Job{
		action: action,
		events: make(chan Event, eventBuffer),
		cancel: cancel,
		stop:   make(chan struct{}),
	}, jobCtx
}

// Action returns the action this job runs.
func (j *Job) Action() Action {
	return j.action
}

// Events returns the job's event stream.
func (j *Job) Events() <-chan Event {
	return j.events
}

// Cancel asks the procedure to stop at its next tick. Events already
// produced, and those of the tick in flight, are still delivered.
func (j *Job) Cancel() {
	j.cancel()
}

// Abandon cancels the job and releases its goroutine without waiting for
// the consumer to drain the remaining events. Used on program exit.
func (j *Job) Abandon() {
	j.cancel()
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *Job) send(ev Event) {
	select {
	case j.events <- ev:
	case <-j.stop:
	}
}

func (j *Job) run(fn func(r simulation.Reporter) FinishedEvent) {
	go func() {
		defer close(j.events)
		defer j.cancel()

		fin := fn(reporter{job: j})
		fin.Action = j.action
		j.send(fin)
	}()
}

// reporter turns procedure callbacks into events on the job's channel.
type reporter struct {
	job *Job
}

func (r reporter) Progress(meter simulation.Meter, value float64, status string) {
	r.job.send(ProgressEvent{Meter: meter, Value: value, Status: status})
}

func (r reporter) Narrate(entry narrative.Entry) {
	r.job.send(NarrativeEvent{Entry: entry})
}

func (r reporter) Activate(id topology.NodeID) {
	r.job.send(MarkEvent{Kind: MarkActive, Node: id})
}

func (r reporter) Infect(id topology.NodeID) {
	r.job.send(MarkEvent{Kind: MarkInfected, Node: id})
}

func (r reporter) Indicate(ind simulation.Indicator) {
	r.job.send(IndicatorEvent{Indicator: ind})
}

func (r reporter) Discovered(d simulation.Discovery) {
	r.job.send(DiscoveryEvent{Discovery: d})
}
