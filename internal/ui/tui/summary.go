package tui

import (
	"fmt"
	"strings"

	"github.com/imamik/swarmflow/internal/swarm"
	"github.com/imamik/swarmflow/internal/util/prerequisites"
)

// RenderReport renders the outcome of a swarm run for plain terminal output:
// a title line with the summary counts followed by every failed or skipped
// step.
func RenderReport(title string, report *swarm.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString(" ")
	if report.Healthy() {
		b.WriteString(readyStyle.Render(report.Summary()))
	} else {
		b.WriteString(warningStyle.Render(report.Summary()))
	}
	b.WriteString("\n")

	for _, o := range report.Failed() {
		mark, style := crossMark, failedStyle
		if o.Skipped {
			mark, style = warnMark, warningStyle
		}
		fmt.Fprintf(&b, "  %s %s\n", style.Render(mark), o)
	}
	return b.String()
}

// RenderPrerequisites renders tool check results, one tool per line.
func RenderPrerequisites(provider string, results *prerequisites.CheckResults) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Tools for provider %s", provider)))
	b.WriteString("\n")

	for _, r := range results.Results {
		switch {
		case r.Found:
			version := r.Version
			if version == "" {
				version = r.Path
			}
			fmt.Fprintf(&b, "  %s %-15s %s\n", readyStyle.Render(checkMark), r.Tool.Name, dimStyle.Render(version))
		case r.Tool.Required:
			fmt.Fprintf(&b, "  %s %-15s %s\n", failedStyle.Render(crossMark), r.Tool.Name, "install: "+r.Tool.InstallURL)
		default:
			fmt.Fprintf(&b, "  %s %-15s %s\n", warningStyle.Render(warnMark), r.Tool.Name, dimStyle.Render("optional: "+r.Tool.Description))
		}
	}
	return b.String()
}
