package swarm

import (
	"context"
	"fmt"
	"time"
)

// Phase names used in events and metrics.
const (
	PhaseProvision = "provision"
	PhaseAssemble  = "assemble"
	PhaseVerify    = "verify"
	PhaseTeardown  = "teardown"
)

// Phase is one ordered stage of a bring-up. Run records its outcomes into
// report; a returned error stops the remaining phases.
type Phase interface {
	Name() string
	Run(ctx context.Context, topo Topology, report *Report) error
}

// provisionPhase is ParallelProvision: concurrent machine creation.
type provisionPhase struct{ o *Orchestrator }

func (provisionPhase) Name() string { return PhaseProvision }

func (p provisionPhase) Run(ctx context.Context, topo Topology, report *Report) error {
	report.Merge(p.o.Provision(ctx, topo))
	return ctx.Err()
}

// assemblePhase is SequentialAssemble: swarm init followed by joins.
type assemblePhase struct{ o *Orchestrator }

func (assemblePhase) Name() string { return PhaseAssemble }

func (p assemblePhase) Run(ctx context.Context, topo Topology, report *Report) error {
	r, err := p.o.Assemble(ctx, topo)
	report.Merge(r)
	return err
}

type verifyPhase struct{ o *Orchestrator }

func (verifyPhase) Name() string { return PhaseVerify }

func (p verifyPhase) Run(ctx context.Context, topo Topology, report *Report) error {
	r, err := p.o.Verify(ctx, topo, report.Members())
	report.Merge(r)
	return err
}

func (o *Orchestrator) runPhases(ctx context.Context, topo Topology, report *Report, phases []Phase) error {
	start := time.Now()
	o.observer.Printf("Bringing up %d machines (%d managers, %d workers) in %d phases...",
		len(topo), topo.Count(RoleManager), topo.Count(RoleWorker), len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		o.observer.Event(Event{
			Type:    EventPhaseStarted,
			Phase:   phase.Name(),
			Message: fmt.Sprintf("starting (%d/%d)", i+1, len(phases)),
		})

		err := phase.Run(ctx, topo, report)
		elapsed := time.Since(phaseStart)
		o.metrics.recordPhase(phase.Name(), err, elapsed.Seconds())
		if err != nil {
			o.observer.Event(Event{Type: EventPhaseFailed, Phase: phase.Name(), Message: fmt.Sprintf("failed: %v", err)})
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		o.observer.Event(Event{
			Type:    EventPhaseCompleted,
			Phase:   phase.Name(),
			Message: fmt.Sprintf("completed in %v", elapsed.Round(time.Millisecond)),
		})
	}

	o.observer.Printf("Bring-up finished in %v: %s", time.Since(start).Round(time.Millisecond), report.Summary())
	return nil
}
