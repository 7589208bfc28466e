package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/imamik/swarmflow/internal/swarm"
)

// IsTerminal reports whether stdout is an interactive terminal.
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// programObserver forwards orchestrator events to a running program.
type programObserver struct {
	send func(tea.Msg)
}

// Printf is dropped: the dashboard renders events only.
func (o programObserver) Printf(string, ...any) {}

func (o programObserver) Event(ev swarm.Event) {
	o.send(EventMsg{Event: ev})
}

// NewObserver returns a swarm.Observer that sends events to p.
func NewObserver(p *tea.Program) swarm.Observer {
	return programObserver{send: p.Send}
}

// Run shows m while fn runs in the background. fn receives an observer
// wired to the dashboard and a context that is cancelled when the user
// quits. The report and error of fn are returned once the program exits.
func Run(ctx context.Context, m Model, fn func(ctx context.Context, obs swarm.Observer) (*swarm.Report, error), opts ...tea.ProgramOption) (*swarm.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.cancel = cancel

	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	type result struct {
		report *swarm.Report
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := fn(ctx, NewObserver(p))
		done <- result{report, err}
		if err != nil {
			p.Send(ErrMsg{Err: err})
			return
		}
		summary := ""
		if report != nil {
			summary = report.Summary()
		}
		p.Send(DoneMsg{Summary: summary})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("TUI error: %w", err)
	}

	// The user may quit early; wait for fn to observe the cancellation.
	res := <-done
	return res.report, res.err
}
