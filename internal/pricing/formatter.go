package pricing

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Formatter formats cost estimates for display.
type Formatter struct{}

// NewFormatter creates a new formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

const boxWidth = 61

// Format returns a detailed, formatted cost estimate for terminal display.
func (f *Formatter) Format(e *Estimate) string {
	var sb strings.Builder

	sb.WriteString(boxTop(boxWidth))
	sb.WriteString(boxLine("swarmflow Cost Estimate", boxWidth))
	sb.WriteString(boxLine(fmt.Sprintf("Stack: %s", e.Stack), boxWidth))
	sb.WriteString(boxSep(boxWidth))
	sb.WriteString(boxLine(fmt.Sprintf("Server type: %s", e.ServerType), boxWidth))
	sb.WriteString(boxLine(fmt.Sprintf("Location: %s", e.Location), boxWidth))
	sb.WriteString(boxSep(boxWidth))

	sb.WriteString(boxEmpty(boxWidth))
	for _, item := range e.Items {
		line := fmt.Sprintf("%-18s %2d x %-6s %8.2f/mo",
			item.Description, item.Quantity, strings.ToUpper(item.UnitType), item.Total)
		sb.WriteString(boxLine(line, boxWidth))
	}

	sb.WriteString(boxDash(boxWidth))
	sb.WriteString(boxLine(fmt.Sprintf("%-30s %8.2f/mo", "Subtotal", e.Subtotal), boxWidth))
	sb.WriteString(boxLine(fmt.Sprintf("%-30s %8.2f/mo", "VAT (19% DE)", e.VAT), boxWidth))
	sb.WriteString(boxDash(boxWidth))
	sb.WriteString(boxLine(fmt.Sprintf("%-30s %8.2f/mo", "Total", e.Total), boxWidth))
	sb.WriteString(boxEmpty(boxWidth))
	sb.WriteString(boxLine(fmt.Sprintf("Annual estimate: %.2f", e.AnnualCost()), boxWidth))
	sb.WriteString(boxBottom(boxWidth))

	if e.Live {
		sb.WriteString("\n  Prices from Hetzner API (EUR)\n")
	} else {
		sb.WriteString("\n  Built-in prices (EUR), set HCLOUD_TOKEN for current ones\n")
	}
	if len(e.Unpriced) > 0 {
		fmt.Fprintf(&sb, "  No price known for: %s\n", strings.Join(e.Unpriced, ", "))
	}

	return sb.String()
}

// FormatCompact returns a single-line cost summary.
func (f *Formatter) FormatCompact(e *Estimate) string {
	return fmt.Sprintf("%s (%s @ %s): %.2f/mo (%.2f/yr incl. VAT)",
		e.Stack, e.ServerType, e.Location, e.Total, e.AnnualCost())
}

// FormatJSON returns the estimate as JSON.
func (f *Formatter) FormatJSON(e *Estimate) (string, error) {
	type jsonEstimate struct {
		Stack      string     `json:"stack"`
		Location   string     `json:"location"`
		ServerType string     `json:"server_type"`
		Items      []LineItem `json:"items"`
		Subtotal   float64    `json:"subtotal"`
		VAT        float64    `json:"vat"`
		Total      float64    `json:"total"`
		Annual     float64    `json:"annual"`
		Unpriced   []string   `json:"unpriced,omitempty"`
		Live       bool       `json:"live"`
	}

	data, err := json.MarshalIndent(jsonEstimate{
		Stack:      e.Stack,
		Location:   e.Location,
		ServerType: e.ServerType,
		Items:      e.Items,
		Subtotal:   e.Subtotal,
		VAT:        e.VAT,
		Total:      e.Total,
		Annual:     e.AnnualCost(),
		Unpriced:   e.Unpriced,
		Live:       e.Live,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal estimate: %w", err)
	}
	return string(data), nil
}

func boxTop(width int) string {
	return fmt.Sprintf("┌%s┐\n", strings.Repeat("─", width-2))
}

func boxBottom(width int) string {
	return fmt.Sprintf("└%s┘\n", strings.Repeat("─", width-2))
}

func boxSep(width int) string {
	return fmt.Sprintf("├%s┤\n", strings.Repeat("─", width-2))
}

func boxDash(width int) string {
	return fmt.Sprintf("│ %s │\n", strings.Repeat("─", width-4))
}

func boxLine(text string, width int) string {
	padding := width - 4 - len(text)
	if padding < 0 {
		padding = 0
		text = text[:width-4]
	}
	return fmt.Sprintf("│ %s%s │\n", text, strings.Repeat(" ", padding))
}

func boxEmpty(width int) string {
	return fmt.Sprintf("│%s│\n", strings.Repeat(" ", width-2))
}
