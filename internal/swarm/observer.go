package swarm

import (
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"
	"time"
)

// Observer receives progress of a bring-up or teardown. Implementations must
// be safe for concurrent use: provisioning and teardown emit events from
// several goroutines.
type Observer interface {
	Printf(format string, v ...any)
	Event(event Event)
}

// Event is a structured step notification.
type Event struct {
	Type      EventType
	Phase     string
	Machine   string
	Message   string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType names the kind of event.
type EventType string

const (
	EventPhaseStarted   EventType = "phase.started"
	EventPhaseCompleted EventType = "phase.completed"
	EventPhaseFailed    EventType = "phase.failed"

	EventMachineCreating   EventType = "machine.creating"
	EventMachineCreated    EventType = "machine.created"
	EventMachineFailed     EventType = "machine.failed"
	EventMachineDestroying EventType = "machine.destroying"
	EventMachineDestroyed  EventType = "machine.destroyed"

	EventSwarmInitialized EventType = "swarm.initialized"
	EventSwarmJoined      EventType = "swarm.joined"
	EventSwarmSkipped     EventType = "swarm.skipped"

	EventNodeReady   EventType = "node.ready"
	EventNodeMissing EventType = "node.missing"
	EventWarning     EventType = "warning"
)

// IsFailure reports whether the event signals a failed step.
func (t EventType) IsFailure() bool {
	switch t {
	case EventPhaseFailed, EventMachineFailed, EventNodeMissing, EventWarning:
		return true
	}
	return false
}

// ConsoleObserver writes events through the standard logger.
type ConsoleObserver struct {
	fields map[string]string
}

// NewConsoleObserver creates an observer logging to the standard logger.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{fields: map[string]string{}}
}

// WithFields returns a copy that adds fields to every event.
func (o *ConsoleObserver) WithFields(fields map[string]string) *ConsoleObserver {
	merged := maps.Clone(o.fields)
	if merged == nil {
		merged = map[string]string{}
	}
	maps.Copy(merged, fields)
	return &ConsoleObserver{fields: merged}
}

func (o *ConsoleObserver) Printf(format string, v ...any) {
	log.Printf(format, v...)
}

func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if len(o.fields) > 0 {
		fields := maps.Clone(o.fields)
		maps.Copy(fields, event.Fields)
		event.Fields = fields
	}
	log.Print(FormatEvent(event))
}

// FormatEvent renders an event as a single log line with fields in key order.
func FormatEvent(event Event) string {
	parts := []string{string(event.Type)}
	if event.Phase != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Phase))
	}
	if event.Machine != "" {
		parts = append(parts, "machine="+event.Machine)
	}
	if event.Message != "" {
		parts = append(parts, event.Message)
	}
	if len(event.Fields) > 0 {
		kv := make([]string, 0, len(event.Fields))
		for _, k := range slices.Sorted(maps.Keys(event.Fields)) {
			kv = append(kv, k+"="+event.Fields[k])
		}
		parts = append(parts, "("+strings.Join(kv, ", ")+")")
	}
	return strings.Join(parts, " ")
}

// discardObserver drops everything.
type discardObserver struct{}

func (discardObserver) Printf(string, ...any) {}
func (discardObserver) Event(Event)           {}

func outcomeEvent(phase string, o Outcome) Event {
	ev := Event{
		Phase:   phase,
		Machine: o.Machine,
		Fields:  map[string]string{"step": string(o.Step), "duration": o.Duration.Round(time.Millisecond).String()},
	}
	switch {
	case o.Skipped:
		ev.Type = EventSwarmSkipped
		ev.Message = fmt.Sprintf("skipped: %v", o.Err)
	case o.Err != nil:
		ev.Type = EventMachineFailed
		if o.Step == StepVerify {
			ev.Type = EventNodeMissing
		}
		ev.Message = fmt.Sprintf("%s failed: %v", o.Step, o.Err)
	default:
		switch o.Step {
		case StepCreate:
			ev.Type = EventMachineCreated
			ev.Message = "created"
		case StepInit:
			ev.Type = EventSwarmInitialized
			ev.Message = "swarm initialized"
		case StepJoin:
			ev.Type = EventSwarmJoined
			ev.Message = "joined as " + string(o.Role)
		case StepVerify:
			ev.Type = EventNodeReady
			ev.Message = "ready"
		case StepDestroy:
			ev.Type = EventMachineDestroyed
			ev.Message = "destroyed"
		}
	}
	return ev
}
