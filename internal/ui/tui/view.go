package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderProgressBar(&b, m)
	renderPhases(&b, m)
	renderMachines(&b, m)
	if len(m.Warnings) > 0 {
		renderWarnings(&b, m)
	}
	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	b.WriteString(titleStyle.Render(fmt.Sprintf("swarmflow %s: %s", m.Mode, m.Stack)))

	status := " "
	switch {
	case m.Err != nil:
		status += failedStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	case m.Done:
		status += readyStyle.Render("Done")
	default:
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame))
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	progress := calculateProgress(m)
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = max(m.Width-30, 10)
	}
	filled := min(int(float64(barWidth)*progress), barWidth)

	bar := progressBarFull.Render(strings.Repeat("█", filled)) +
		progressBarEmpty.Render(strings.Repeat("░", barWidth-filled))
	fmt.Fprintf(b, "  %s %d%%\n", bar, int(progress*100))
}

func renderPhases(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Phases"))
	b.WriteString("\n")

	for _, phase := range m.Phases {
		var icon string
		var style styleFunc
		switch {
		case phase.Err != "":
			icon, style = crossMark, sf(failedStyle)
		case phase.Done:
			icon, style = checkMark, sf(readyStyle)
		case phase.Active:
			icon, style = currentSpinner(m.SpinnerFrame), sf(activeStyle)
		default:
			icon, style = pending, sf(dimStyle)
		}
		fmt.Fprintf(b, "    %s %s\n", style(icon), style(phase.Name))
	}
}

func renderMachines(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Machines"))
	b.WriteString("\n")

	if len(m.Machines) == 0 {
		fmt.Fprintf(b, "    %s\n", dimStyle.Render("none"))
		return
	}
	for _, row := range m.Machines {
		icon, style := stateIcon(row.State, m.SpinnerFrame)
		fmt.Fprintf(b, "    %s %-18s %s %s %s\n",
			style(icon), row.Name, roleStyle(row.Role).Render(fmt.Sprintf("%-8s", row.Role)), style(string(row.State)), dimStyle.Render(row.Detail))
	}
}

func renderWarnings(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Warnings"))
	b.WriteString("\n")
	for _, w := range m.Warnings {
		fmt.Fprintf(b, "    %s %s\n", warningStyle.Render(warnMark), dimStyle.Render(w))
	}
}

func renderFooter(b *strings.Builder, m Model) {
	parts := []string{"elapsed: " + formatDuration(time.Since(m.StartTime))}
	if m.Summary != "" {
		parts = append(parts, m.Summary)
	}
	b.WriteString(footerStyle.Render(fmt.Sprintf("  %s  |  q: quit", strings.Join(parts, "  |  "))))
	b.WriteString("\n")
}

func stateIcon(state MachineState, frame int) (string, styleFunc) {
	switch state {
	case StateReady, StateJoined, StateInitialized, StateDestroyed:
		return checkMark, sf(readyStyle)
	case StateCreated:
		return checkMark, sf(activeStyle)
	case StateFailed:
		return crossMark, sf(failedStyle)
	case StateSkipped, StateMissing:
		return warnMark, sf(warningStyle)
	case StateCreating, StateDestroying:
		return currentSpinner(frame), sf(activeStyle)
	default:
		return pending, sf(dimStyle)
	}
}

func currentSpinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

// calculateProgress weighs finished phases and settled machines equally.
func calculateProgress(m Model) float64 {
	if m.Done {
		return 1.0
	}

	var phases float64
	for _, p := range m.Phases {
		if p.Done || p.Err != "" {
			phases++
		}
	}
	if len(m.Phases) > 0 {
		phases /= float64(len(m.Phases))
	}
	if len(m.Machines) == 0 {
		return phases
	}

	var settled float64
	for _, row := range m.Machines {
		if settledStates[row.State] {
			settled++
		}
	}
	return (phases + settled/float64(len(m.Machines))) / 2
}

var settledStates = map[MachineState]bool{
	StateReady:     true,
	StateFailed:    true,
	StateSkipped:   true,
	StateMissing:   true,
	StateDestroyed: true,
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
