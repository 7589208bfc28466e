package dag

import (
	"context"

	"github.com/charmbracelet/huh"
)

// Prompter asks the user for the values missing from p. Answers left empty
// fall back to defaults afterwards.
type Prompter interface {
	Prompt(ctx context.Context, p *Params, defaults Params) error
}

// FormPrompter prompts with a huh form on the terminal.
type FormPrompter struct{}

// Prompt asks only for the empty fields of p.
func (FormPrompter) Prompt(ctx context.Context, p *Params, defaults Params) error {
	var fields []huh.Field
	add := func(title string, target *string, def string, validate func(string) error) {
		if *target != "" {
			return
		}
		in := huh.NewInput().
			Title(title).
			Description("default: " + def).
			Placeholder(def).
			Value(target)
		if validate != nil {
			in = in.Validate(optional(validate))
		}
		fields = append(fields, in)
	}

	add("DAG id", &p.DagID, defaults.DagID, ValidateDagID)
	add("Owner", &p.Owner, defaults.Owner, nil)
	add("Email", &p.Email, defaults.Email, nil)
	add("Start date", &p.StartDate, defaults.StartDate, ValidateStartDate)
	add("Schedule interval", &p.ScheduleInterval, defaults.ScheduleInterval, nil)

	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...).Title("New DAG")).RunWithContext(ctx)
}

func optional(validate func(string) error) func(string) error {
	return func(s string) error {
		if s == "" {
			return nil
		}
		return validate(s)
	}
}
