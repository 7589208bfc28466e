package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/swarmflow/internal/swarm"
)

// Mode selects the layout.
type Mode string

const (
	ModeUp   Mode = "up"
	ModeDown Mode = "down"
)

const maxWarnings = 5

// MachineState is the last known state of a machine row.
type MachineState string

const (
	StatePending     MachineState = "pending"
	StateCreating    MachineState = "creating"
	StateCreated     MachineState = "created"
	StateInitialized MachineState = "initialized"
	StateJoined      MachineState = "joined"
	StateReady       MachineState = "ready"
	StateFailed      MachineState = "failed"
	StateSkipped     MachineState = "skipped"
	StateMissing     MachineState = "missing"
	StateDestroying  MachineState = "destroying"
	StateDestroyed   MachineState = "destroyed"
)

// PhaseRow is one orchestration phase.
type PhaseRow struct {
	Name   string
	Active bool
	Done   bool
	Err    string
}

// MachineRow is one machine.
type MachineRow struct {
	Name   string
	Role   string
	State  MachineState
	Detail string
}

// Model is the Bubble Tea model for the swarm dashboard.
type Model struct {
	Stack    string
	Mode     Mode
	Phases   []PhaseRow
	Machines []MachineRow
	Warnings []string

	StartTime    time.Time
	SpinnerFrame int

	Width   int
	Height  int
	Err     error
	Done    bool
	Summary string

	// cancel aborts the running operation when the user quits.
	cancel context.CancelFunc
}

// NewUpModel creates a model for swarm up with one row per machine.
func NewUpModel(stack string, machines []string, verify bool) Model {
	m := Model{
		Stack:     stack,
		Mode:      ModeUp,
		StartTime: time.Now(),
		Phases:    []PhaseRow{{Name: swarm.PhaseProvision}, {Name: swarm.PhaseAssemble}},
	}
	if verify {
		m.Phases = append(m.Phases, PhaseRow{Name: swarm.PhaseVerify})
	}
	for _, name := range machines {
		m.Machines = append(m.Machines, newRow(name, StatePending))
	}
	return m
}

// NewDownModel creates a model for swarm down. Rows appear as machines are
// discovered.
func NewDownModel(stack string) Model {
	return Model{
		Stack:     stack,
		Mode:      ModeDown,
		StartTime: time.Now(),
		Phases:    []PhaseRow{{Name: swarm.PhaseTeardown}},
	}
}

func newRow(name string, state MachineState) MachineRow {
	row := MachineRow{Name: name, State: state}
	if spec, ok := swarm.ParseMachineSpec(name); ok {
		row.Role = string(spec.Role)
	}
	return row
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case EventMsg:
		m.apply(msg.Event)

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		m.Summary = msg.Summary
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) apply(ev swarm.Event) {
	switch ev.Type {
	case swarm.EventPhaseStarted:
		m.updatePhase(ev.Phase, func(p *PhaseRow) { p.Active = true })
	case swarm.EventPhaseCompleted:
		m.updatePhase(ev.Phase, func(p *PhaseRow) { p.Active, p.Done = false, true })
	case swarm.EventPhaseFailed:
		m.updatePhase(ev.Phase, func(p *PhaseRow) { p.Active, p.Err = false, ev.Message })
	case swarm.EventWarning:
		m.warn(ev.Message)
	default:
		if state, ok := eventStates[ev.Type]; ok && ev.Machine != "" {
			row := m.row(ev.Machine)
			row.State = state
			row.Detail = ""
			if ev.Type.IsFailure() || ev.Type == swarm.EventSwarmSkipped {
				row.Detail = ev.Message
				m.warn(ev.Machine + ": " + ev.Message)
			}
		}
	}
}

var eventStates = map[swarm.EventType]MachineState{
	swarm.EventMachineCreating:   StateCreating,
	swarm.EventMachineCreated:    StateCreated,
	swarm.EventMachineFailed:     StateFailed,
	swarm.EventMachineDestroying: StateDestroying,
	swarm.EventMachineDestroyed:  StateDestroyed,
	swarm.EventSwarmInitialized:  StateInitialized,
	swarm.EventSwarmJoined:       StateJoined,
	swarm.EventSwarmSkipped:      StateSkipped,
	swarm.EventNodeReady:         StateReady,
	swarm.EventNodeMissing:       StateMissing,
}

func (m *Model) updatePhase(name string, fn func(*PhaseRow)) {
	for i := range m.Phases {
		if m.Phases[i].Name == name {
			fn(&m.Phases[i])
			return
		}
	}
}

func (m *Model) row(name string) *MachineRow {
	for i := range m.Machines {
		if m.Machines[i].Name == name {
			return &m.Machines[i]
		}
	}
	m.Machines = append(m.Machines, newRow(name, StatePending))
	return &m.Machines[len(m.Machines)-1]
}

func (m *Model) warn(msg string) {
	m.Warnings = append(m.Warnings, msg)
	if len(m.Warnings) > maxWarnings {
		m.Warnings = m.Warnings[len(m.Warnings)-maxWarnings:]
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
