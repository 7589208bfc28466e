package swarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/swarmflow/internal/util/async"
	"github.com/imamik/swarmflow/internal/util/naming"
	"github.com/imamik/swarmflow/internal/util/retry"
)

// DefaultParallelism caps the worker pool when no limit is configured.
const DefaultParallelism = 16

// Defaults for how long Verify waits for joined nodes to report Ready.
const (
	DefaultVerifyTimeout = time.Minute
	DefaultVerifyDelay   = 2 * time.Second
)

// TokenProviderFactory builds the token source for a swarm whose initializer
// is the named machine.
type TokenProviderFactory func(exec Executor, initializer string) TokenProvider

// DefaultTokenProviders scrapes tokens from the initializer and caches them
// for the rest of the run.
func DefaultTokenProviders(exec Executor, initializer string) TokenProvider {
	return NewCachingTokenProvider(NewScrapingTokenProvider(exec, initializer))
}

// Orchestrator brings a swarm up and tears it down.
type Orchestrator struct {
	provider Provider
	exec     Executor
	observer Observer
	metrics  *Metrics
	tokens   TokenProviderFactory

	parallelism   int
	port          int
	verify        bool
	verifyTimeout time.Duration
	verifyDelay   time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver sets the observer receiving progress events.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithMetrics records step and phase metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithParallelism bounds concurrent creations and destructions. Values <= 0
// select min(machines, DefaultParallelism).
func WithParallelism(n int) Option {
	return func(o *Orchestrator) { o.parallelism = n }
}

// WithTokenProviders replaces the token source.
func WithTokenProviders(f TokenProviderFactory) Option {
	return func(o *Orchestrator) { o.tokens = f }
}

// WithAdvertisePort changes the manager port used in join commands.
func WithAdvertisePort(port int) Option {
	return func(o *Orchestrator) { o.port = port }
}

// WithVerify enables or disables the membership check after assembly.
func WithVerify(enabled bool) Option {
	return func(o *Orchestrator) { o.verify = enabled }
}

// WithVerifyWait bounds how long Verify keeps listing nodes while a member
// is missing or not Ready, starting with delay between attempts. A timeout
// <= 0 lists the nodes once.
func WithVerifyWait(timeout, delay time.Duration) Option {
	return func(o *Orchestrator) {
		o.verifyTimeout = timeout
		o.verifyDelay = delay
	}
}

// New creates an orchestrator. Verification is enabled by default.
func New(provider Provider, exec Executor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider: provider,
		exec:     exec,
		observer: discardObserver{},
		tokens:   DefaultTokenProviders,
		port:     DefaultAdvertisePort,
		verify:   true,

		verifyTimeout: DefaultVerifyTimeout,
		verifyDelay:   DefaultVerifyDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Up provisions every machine of topo, assembles the swarm and, unless
// disabled, verifies membership. The returned report is never nil.
func (o *Orchestrator) Up(ctx context.Context, topo Topology) (*Report, error) {
	report := NewReport()
	if len(topo) > 0 {
		if _, ok := topo.Initializer(); !ok {
			return report, ErrNoInitializer
		}
	}

	phases := []Phase{provisionPhase{o}, assemblePhase{o}}
	if o.verify {
		phases = append(phases, verifyPhase{o})
	}

	err := o.runPhases(ctx, topo, report, phases)
	o.metrics.recordTopology(topo, report)
	return report, err
}

// Provision creates every machine concurrently on the bounded pool. A failed
// creation never stops the others and is only recorded in the report.
func (o *Orchestrator) Provision(ctx context.Context, topo Topology) *Report {
	tasks := make([]async.Task, len(topo))
	for i, spec := range topo {
		tasks[i] = async.Task{
			Name: spec.Name(),
			Func: func(ctx context.Context) error {
				return o.create(ctx, spec)
			},
		}
	}

	report := NewReport()
	for i, res := range async.Collect(ctx, tasks, o.limit(len(tasks))) {
		o.record(report, Outcome{
			Machine:  res.Name,
			Role:     topo[i].Role,
			Step:     StepCreate,
			Err:      res.Err,
			Duration: res.Duration,
		})
	}
	return report
}

func (o *Orchestrator) create(ctx context.Context, spec MachineSpec) error {
	name := spec.Name()
	o.observer.Event(Event{Type: EventMachineCreating, Phase: PhaseProvision, Machine: name, Message: "creating " + string(spec.Role)})

	start := time.Now()
	m, err := o.provider.CreateMachine(ctx, spec)
	out := Outcome{Machine: name, Role: spec.Role, Step: StepCreate, Err: err, Duration: time.Since(start)}

	ev := outcomeEvent(PhaseProvision, out)
	if err == nil && m != nil && m.ID != "" {
		ev.Fields["id"] = m.ID
	}
	o.observer.Event(ev)
	return err
}

// Assemble initializes the swarm on the initializer and joins every other
// machine in topology order. Join failures are recorded and processing
// continues; a failed init stops assembly, marks the remaining machines
// skipped and returns ErrInitializerFailed.
func (o *Orchestrator) Assemble(ctx context.Context, topo Topology) (*Report, error) {
	report := NewReport()
	if len(topo) == 0 {
		return report, nil
	}
	initializer, ok := topo.Initializer()
	if !ok {
		return report, ErrNoInitializer
	}

	addr, err := o.initialize(ctx, report, initializer)
	if err != nil {
		o.skipRemaining(report, topo, initializer, ErrInitializerFailed)
		return report, fmt.Errorf("%w: %w", ErrInitializerFailed, err)
	}

	tokens := o.tokens(o.exec, initializer.Name())
	for _, spec := range topo {
		if spec == initializer {
			continue
		}
		if ctx.Err() != nil {
			o.skip(report, spec, ctx.Err())
			continue
		}

		start := time.Now()
		err := o.join(ctx, tokens, spec, addr)
		o.emit(report, PhaseAssemble, Outcome{
			Machine:  spec.Name(),
			Role:     spec.Role,
			Step:     StepJoin,
			Err:      err,
			Duration: time.Since(start),
		})
	}
	return report, ctx.Err()
}

func (o *Orchestrator) initialize(ctx context.Context, report *Report, spec MachineSpec) (string, error) {
	start := time.Now()
	name := spec.Name()

	addr, err := o.provider.PrivateAddress(ctx, name)
	if err != nil {
		err = fmt.Errorf("failed to resolve address of %s: %w", name, err)
	} else if _, runErr := o.exec.Run(ctx, name, InitCommand(addr)); runErr != nil {
		err = fmt.Errorf("swarm init on %s failed: %w", name, runErr)
	}

	o.emit(report, PhaseAssemble, Outcome{
		Machine:  name,
		Role:     spec.Role,
		Step:     StepInit,
		Err:      err,
		Duration: time.Since(start),
	})
	return addr, err
}

func (o *Orchestrator) join(ctx context.Context, tokens TokenProvider, spec MachineSpec, addr string) error {
	token, err := tokenFor(ctx, tokens, spec.Role)
	if err != nil {
		return fmt.Errorf("failed to get %s join token: %w", spec.Role, err)
	}
	if _, err := o.exec.Run(ctx, spec.Name(), JoinCommand(token, addr, o.port)); err != nil {
		return fmt.Errorf("swarm join failed: %w", err)
	}
	return nil
}

func (o *Orchestrator) skipRemaining(report *Report, topo Topology, initializer MachineSpec, reason error) {
	for _, spec := range topo {
		if spec != initializer {
			o.skip(report, spec, reason)
		}
	}
}

func (o *Orchestrator) skip(report *Report, spec MachineSpec, reason error) {
	o.emit(report, PhaseAssemble, Outcome{
		Machine: spec.Name(),
		Role:    spec.Role,
		Step:    StepJoin,
		Err:     reason,
		Skipped: true,
	})
}

// Teardown destroys every machine the provider lists whose name follows the
// swarm naming convention. Other machines are left alone. Destruction runs
// concurrently; failures are recorded in the report, not returned. The error
// is non-nil only when the machines could not be listed.
func (o *Orchestrator) Teardown(ctx context.Context) (*Report, error) {
	report := NewReport()

	names, err := o.provider.ListMachines(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list machines: %w", err)
	}

	var targets []string
	for _, name := range names {
		if naming.IsSwarmMachine(name) {
			targets = append(targets, name)
		}
	}
	if len(targets) == 0 {
		o.observer.Printf("[%s] no swarm machines found", PhaseTeardown)
		return report, nil
	}

	tasks := make([]async.Task, len(targets))
	for i, name := range targets {
		tasks[i] = async.Task{
			Name: name,
			Func: func(ctx context.Context) error {
				return o.destroy(ctx, name)
			},
		}
	}

	for _, res := range async.Collect(ctx, tasks, o.limit(len(tasks))) {
		var role Role
		if spec, ok := ParseMachineSpec(res.Name); ok {
			role = spec.Role
		}
		o.record(report, Outcome{
			Machine:  res.Name,
			Role:     role,
			Step:     StepDestroy,
			Err:      res.Err,
			Duration: res.Duration,
		})
	}
	return report, nil
}

func (o *Orchestrator) destroy(ctx context.Context, name string) error {
	o.observer.Event(Event{Type: EventMachineDestroying, Phase: PhaseTeardown, Machine: name, Message: "destroying"})

	start := time.Now()
	err := o.provider.DestroyMachine(ctx, name)
	o.observer.Event(outcomeEvent(PhaseTeardown, Outcome{
		Machine:  name,
		Step:     StepDestroy,
		Err:      err,
		Duration: time.Since(start),
	}))
	return err
}

// Verify lists the swarm nodes on the initializer and records a verify
// outcome for each of members. Nodes that just joined may still be missing
// or not Ready, so the list is re-read until every member is Ready or the
// verify wait runs out.
func (o *Orchestrator) Verify(ctx context.Context, topo Topology, members []string) (*Report, error) {
	report := NewReport()
	if len(members) == 0 {
		return report, nil
	}
	initializer, ok := topo.Initializer()
	if !ok {
		return report, ErrNoInitializer
	}

	start := time.Now()
	nodes, err := o.waitForNodes(ctx, initializer.Name(), members)
	if err != nil {
		err = fmt.Errorf("failed to list swarm nodes on %s: %w", initializer.Name(), err)
		for _, name := range members {
			o.emit(report, PhaseVerify, o.verifyOutcome(name, err, time.Since(start)))
		}
		return report, err
	}

	for _, name := range members {
		o.emit(report, PhaseVerify, o.verifyOutcome(name, nodes.Check(name), time.Since(start)))
	}
	return report, nil
}

// waitForNodes returns the last node list read from initializer. Only a
// failing node ls is returned as an error; members that never became Ready
// are left to the caller's checks.
func (o *Orchestrator) waitForNodes(ctx context.Context, initializer string, members []string) (NodeList, error) {
	var nodes NodeList
	var listErr error

	list := func() error {
		out, err := o.exec.Run(ctx, initializer, NodeListCommand())
		if err != nil {
			listErr = err
			return retry.Fatal(err)
		}
		nodes = ParseNodeList(out)
		return pendingMembers(nodes, members)
	}

	if o.verifyTimeout <= 0 {
		_ = list()
		return nodes, listErr
	}

	waitCtx, cancel := context.WithTimeout(ctx, o.verifyTimeout)
	defer cancel()

	// The attempt count is effectively unbounded; waitCtx ends the loop.
	_ = retry.WithExponentialBackoff(waitCtx, list,
		retry.WithMaxRetries(1000),
		retry.WithInitialDelay(o.verifyDelay),
		retry.WithMaxDelay(max(o.verifyDelay, 10*time.Second)),
		retry.WithOnRetry(func(attempt int, err error) {
			o.observer.Printf("[Swarm] Waiting for nodes on %s (attempt %d): %v", initializer, attempt, err)
		}),
	)
	return nodes, listErr
}

func pendingMembers(nodes NodeList, members []string) error {
	var errs []error
	for _, name := range members {
		if err := nodes.Check(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) verifyOutcome(name string, err error, d time.Duration) Outcome {
	var role Role
	if spec, ok := ParseMachineSpec(name); ok {
		role = spec.Role
	}
	return Outcome{Machine: name, Role: role, Step: StepVerify, Err: err, Duration: d}
}

func (o *Orchestrator) record(report *Report, out Outcome) {
	o.metrics.recordOutcome(out)
	report.Add(out)
}

func (o *Orchestrator) emit(report *Report, phase string, out Outcome) {
	o.record(report, out)
	o.observer.Event(outcomeEvent(phase, out))
}

func (o *Orchestrator) limit(n int) int {
	if o.parallelism > 0 {
		return o.parallelism
	}
	return min(n, DefaultParallelism)
}

