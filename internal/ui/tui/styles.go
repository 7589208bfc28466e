package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/swarmflow/internal/util/naming"
)

// Palette. Blue is Docker's brand blue.
var (
	colorOK      = lipgloss.Color("#16a34a")
	colorFail    = lipgloss.Color("#dc2626")
	colorWarn    = lipgloss.Color("#d97706")
	colorDocker  = lipgloss.Color("#1d63ed")
	colorWorker  = lipgloss.Color("#0891b2")
	colorMuted   = lipgloss.Color("#71717a")
	colorPrimary = lipgloss.Color("#fafafa")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorDocker).MarginTop(1)
	footerStyle  = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)

	readyStyle   = lipgloss.NewStyle().Foreground(colorOK)
	failedStyle  = lipgloss.NewStyle().Foreground(colorFail)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarn)
	dimStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	managerStyle = lipgloss.NewStyle().Foreground(colorDocker)
	workerStyle  = lipgloss.NewStyle().Foreground(colorWorker)

	progressBarFull  = lipgloss.NewStyle().Foreground(colorDocker)
	progressBarEmpty = lipgloss.NewStyle().Foreground(colorMuted)
)

// roleStyle colors the role column of the machine table.
func roleStyle(role string) lipgloss.Style {
	switch role {
	case naming.RoleManager:
		return managerStyle
	case naming.RoleWorker:
		return workerStyle
	default:
		return dimStyle
	}
}

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	pending   = "[  ]"
	warnMark  = "[??]"
)

var spinnerFrames = []string{"[> ]", "[>>]", "[ >]", "[  ]"}
