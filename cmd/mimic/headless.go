package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dd0wney/mimic/pkg/narrative"
	"github.com/dd0wney/mimic/pkg/phase"
)

// logPrinter writes operation log lines that have not been printed yet.
type logPrinter struct {
	out     io.Writer
	log     *narrative.Log
	printed int
}

func (p *logPrinter) flush() {
	fresh := p.log.Total() - p.printed
	if fresh <= 0 {
		return
	}
	for _, e := range p.log.Tail(fresh) {
		fmt.Fprintln(p.out, e)
	}
	p.printed = p.log.Total()
}

// runHeadless runs every phase in order, printing the operation log as it
// grows. Cancelling ctx aborts the running phase, and no later phase starts.
func runHeadless(ctx context.Context, ctrl *phase.Controller, out io.Writer) error {
	st := ctrl.State()
	printer := &logPrinter{out: out, log: st.Log}
	printer.flush()

	for _, action := range phase.AllActions {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", action, err)
		}
		job, err := ctrl.Start(action)
		if err != nil {
			return err
		}
		printer.flush()

		stop := context.AfterFunc(ctx, job.Cancel)
		for ev := range job.Events() {
			ctrl.Apply(ev)
			printer.flush()
		}
		stop()

		if st.Status != phase.Done {
			if st.Status == phase.Cancelled && ctx.Err() != nil {
				return fmt.Errorf("%s: %w", action, ctx.Err())
			}
			if st.Err != nil {
				return fmt.Errorf("%s: %w", action, st.Err)
			}
			return fmt.Errorf("%s ended %s", action, st.Status)
		}
	}

	fmt.Fprintf(out, "\nsession %s seed %d: %d of %d nodes infected in %d attempts\n",
		st.Session, st.Seed, len(st.Marks.Infected()), st.Graph.Len(), st.Infiltration.Attempts)
	return nil
}
