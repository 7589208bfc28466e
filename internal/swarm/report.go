package swarm

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Step is one unit of work performed on a machine.
type Step string

const (
	StepCreate  Step = "create"
	StepInit    Step = "init"
	StepJoin    Step = "join"
	StepVerify  Step = "verify"
	StepDestroy Step = "destroy"
)

// Outcome is the result of one step on one machine.
type Outcome struct {
	Machine  string
	Role     Role
	Step     Step
	Err      error
	Skipped  bool
	Duration time.Duration
}

// OK reports whether the step ran and succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil && !o.Skipped
}

func (o Outcome) String() string {
	switch {
	case o.Skipped:
		return fmt.Sprintf("%s %s: skipped (%v)", o.Step, o.Machine, o.Err)
	case o.Err != nil:
		return fmt.Sprintf("%s %s: %v", o.Step, o.Machine, o.Err)
	default:
		return fmt.Sprintf("%s %s: ok (%s)", o.Step, o.Machine, o.Duration.Round(time.Millisecond))
	}
}

// Report aggregates outcomes in the order they were recorded. It is not safe
// for concurrent use; parallel phases collect results first and record them
// from a single goroutine.
type Report struct {
	outcomes []Outcome
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add records an outcome.
func (r *Report) Add(o Outcome) {
	r.outcomes = append(r.outcomes, o)
}

// Merge appends every outcome of other.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.outcomes = append(r.outcomes, other.outcomes...)
}

// Outcomes returns a copy of all outcomes.
func (r *Report) Outcomes() []Outcome {
	out := make([]Outcome, len(r.outcomes))
	copy(out, r.outcomes)
	return out
}

// ForStep returns the outcomes of a single step.
func (r *Report) ForStep(step Step) []Outcome {
	var out []Outcome
	for _, o := range r.outcomes {
		if o.Step == step {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns every outcome that failed or was skipped.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Healthy reports whether every recorded step succeeded.
func (r *Report) Healthy() bool {
	return len(r.Failed()) == 0
}

// Members returns the machines whose init or join succeeded, in record order.
func (r *Report) Members() []string {
	var out []string
	for _, o := range r.outcomes {
		if (o.Step == StepInit || o.Step == StepJoin) && o.OK() {
			out = append(out, o.Machine)
		}
	}
	return out
}

// Err joins the errors of all failed outcomes, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s %s: %w", o.Step, o.Machine, o.Err))
	}
	return errors.Join(errs...)
}

// Summary renders counts per step, for example "create 4/5, init 1/1, join 2/3".
func (r *Report) Summary() string {
	order := []Step{StepCreate, StepInit, StepJoin, StepVerify, StepDestroy}
	var parts []string
	for _, step := range order {
		outcomes := r.ForStep(step)
		if len(outcomes) == 0 {
			continue
		}
		ok := 0
		for _, o := range outcomes {
			if o.OK() {
				ok++
			}
		}
		parts = append(parts, fmt.Sprintf("%s %d/%d", step, ok, len(outcomes)))
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}
