// Package tui provides a Bubble Tea terminal UI for swarm bring-up and
// teardown.
package tui

import "github.com/imamik/swarmflow/internal/swarm"

// EventMsg carries an orchestrator event.
type EventMsg struct{ Event swarm.Event }

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the operation is complete.
type DoneMsg struct{ Summary string }
