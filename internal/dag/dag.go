// Package dag scaffolds new Airflow DAG modules from an embedded template.
package dag

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/imamik/swarmflow/internal/config"
)

const (
	DefaultDagID = "example_dag_v1_p3"
	DateLayout   = "2006-01-02"
)

// ErrDagExists is returned when the target module exists and overwriting
// was not requested.
var ErrDagExists = errors.New("dag module already exists")

//go:embed templates/dag.py.tmpl
var dagTemplate string

var tmpl = template.Must(template.New("dag").Funcs(sprig.TxtFuncMap()).Parse(dagTemplate))

// versionSuffix matches the _v<version>_p<priority> part of a DAG id.
var versionSuffix = regexp.MustCompile(`_v[^.]+`)

var dagIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Params are the values rendered into a DAG module.
type Params struct {
	DagID            string
	Owner            string
	Email            string
	StartDate        string
	ScheduleInterval string
}

// Defaults returns the values used for anything not given. The start date
// is the day before now.
func Defaults(cfg config.DAGConfig, now time.Time) Params {
	schedule := cfg.ScheduleInterval
	if schedule == "" {
		schedule = config.DefaultSchedule
	}
	return Params{
		DagID:            DefaultDagID,
		Owner:            cfg.Owner,
		Email:            cfg.Email,
		StartDate:        now.AddDate(0, 0, -1).Format(DateLayout),
		ScheduleInterval: schedule,
	}
}

// WithDefaults returns p with every empty field taken from defaults.
func (p Params) WithDefaults(defaults Params) Params {
	fill := func(v *string, d string) {
		if strings.TrimSpace(*v) == "" {
			*v = d
		} else {
			*v = strings.TrimSpace(*v)
		}
	}
	fill(&p.DagID, defaults.DagID)
	fill(&p.Owner, defaults.Owner)
	fill(&p.Email, defaults.Email)
	fill(&p.StartDate, defaults.StartDate)
	fill(&p.ScheduleInterval, defaults.ScheduleInterval)
	return p
}

// Missing reports whether any field is empty.
func (p Params) Missing() bool {
	return p.DagID == "" || p.Owner == "" || p.Email == "" || p.StartDate == "" || p.ScheduleInterval == ""
}

// Validate checks the DAG id, the start date and the schedule.
func (p Params) Validate() error {
	if err := ValidateDagID(p.DagID); err != nil {
		return err
	}
	if err := ValidateStartDate(p.StartDate); err != nil {
		return err
	}
	if strings.TrimSpace(p.ScheduleInterval) == "" {
		return errors.New("schedule interval is required")
	}
	return nil
}

// ValidateDagID accepts the characters Airflow allows in a DAG id.
func ValidateDagID(id string) error {
	if !dagIDPattern.MatchString(id) {
		return fmt.Errorf("invalid dag id %q: use letters, digits, '_', '-' and '.'", id)
	}
	return nil
}

// ValidateStartDate accepts ISO dates (YYYY-MM-DD).
func ValidateStartDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", s)
	}
	return nil
}

// FileName derives the module file name from a DAG id by removing at most
// the first two _v... runs, so example_dag_v1_p3 becomes example_dag.py.
func FileName(dagID string) string {
	var b strings.Builder
	last := 0
	for _, m := range versionSuffix.FindAllStringIndex(dagID, 2) {
		b.WriteString(dagID[last:m[0]])
		last = m[1]
	}
	b.WriteString(dagID[last:])
	return b.String() + ".py"
}

// Render executes the DAG template.
func Render(p Params) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, p); err != nil {
		return "", fmt.Errorf("failed to render dag: %w", err)
	}
	return b.String(), nil
}

// Write validates p, renders it and writes the module into dir. It returns
// the written path.
func Write(dir string, p Params, force bool) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(p.DagID))
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%w: %s", ErrDagExists, path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	text, err := Render(p)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	// #nosec G306 -- dag modules are source files
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
