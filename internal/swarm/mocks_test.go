package swarm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

const (
	testManagerToken = "SWMTKN-1-abc-manager"
	testWorkerToken  = "SWMTKN-1-abc-worker"
)

// callLog records every provider and executor call in dispatch order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// matching returns the calls containing substr, in order.
func (l *callLog) matching(substr string) []string {
	var out []string
	for _, c := range l.all() {
		if strings.Contains(c, substr) {
			out = append(out, c)
		}
	}
	return out
}

// index returns the position of the first call containing substr, or -1.
func (l *callLog) index(substr string) int {
	for i, c := range l.all() {
		if strings.Contains(c, substr) {
			return i
		}
	}
	return -1
}

type mockProvider struct {
	log *callLog

	CreateMachineFunc  func(ctx context.Context, spec MachineSpec) (*Machine, error)
	PrivateAddressFunc func(ctx context.Context, name string) (string, error)
	ListMachinesFunc   func(ctx context.Context) ([]string, error)
	DestroyMachineFunc func(ctx context.Context, name string) error
}

func (m *mockProvider) CreateMachine(ctx context.Context, spec MachineSpec) (*Machine, error) {
	m.log.add("create %s", spec.Name())
	if m.CreateMachineFunc != nil {
		return m.CreateMachineFunc(ctx, spec)
	}
	return &Machine{Name: spec.Name()}, nil
}

func (m *mockProvider) PrivateAddress(ctx context.Context, name string) (string, error) {
	m.log.add("address %s", name)
	if m.PrivateAddressFunc != nil {
		return m.PrivateAddressFunc(ctx, name)
	}
	return "10.0.0.2", nil
}

func (m *mockProvider) ListMachines(ctx context.Context) ([]string, error) {
	m.log.add("list")
	if m.ListMachinesFunc != nil {
		return m.ListMachinesFunc(ctx)
	}
	return nil, nil
}

func (m *mockProvider) DestroyMachine(ctx context.Context, name string) error {
	m.log.add("destroy %s", name)
	if m.DestroyMachineFunc != nil {
		return m.DestroyMachineFunc(ctx, name)
	}
	return nil
}

// mockExecutor answers swarm commands like a healthy docker engine. RunFunc,
// when set, runs first and may return handled=false to fall through.
type mockExecutor struct {
	log *callLog

	RunFunc func(ctx context.Context, machine, command string) (out string, handled bool, err error)
	// NodeList overrides the `docker node ls` output.
	NodeList string
}

func (m *mockExecutor) Run(ctx context.Context, machine, command string) (string, error) {
	m.log.add("run %s: %s", machine, command)
	if m.RunFunc != nil {
		if out, handled, err := m.RunFunc(ctx, machine, command); handled {
			return out, err
		}
	}

	switch {
	case strings.Contains(command, "join-token manager"):
		return joinTokenOutput(testManagerToken), nil
	case strings.Contains(command, "join-token worker"):
		return joinTokenOutput(testWorkerToken), nil
	case strings.Contains(command, "node ls"):
		return m.NodeList, nil
	}
	return "", nil
}

func joinTokenOutput(token string) string {
	return "To add a node to this swarm, run the following command:\n\n" +
		"    docker swarm join --token " + token + " 10.0.0.2:2377\n\n"
}

func newMocks() (*callLog, *mockProvider, *mockExecutor) {
	log := &callLog{}
	return log, &mockProvider{log: log}, &mockExecutor{log: log}
}

// recordingObserver keeps every event for assertions.
type recordingObserver struct {
	mu     sync.Mutex
	events []Event
	lines  []string
}

func (r *recordingObserver) Printf(format string, v ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}

func (r *recordingObserver) Event(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recordingObserver) printed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}
