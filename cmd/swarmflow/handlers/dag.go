package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/imamik/swarmflow/internal/dag"
)

var (
	// newPrompter creates the interactive form for missing DAG values.
	newPrompter = func() dag.Prompter {
		return dag.FormPrompter{}
	}

	// now returns the current time.
	now = time.Now
)

// NewDag writes a DAG module into the configured dags directory. Values not
// given are asked for on a terminal and defaulted otherwise.
func NewDag(ctx context.Context, configPath string, params dag.Params, force bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	defaults := dag.Defaults(cfg.DAG, now())
	if params.Missing() && isTerminal() {
		if err := newPrompter().Prompt(ctx, &params, defaults); err != nil {
			return fmt.Errorf("prompt cancelled: %w", err)
		}
	}
	params = params.WithDefaults(defaults)

	path, err := dag.Write(cfg.DAG.Dir, params, force)
	if err != nil {
		return err
	}
	log.Printf("[DAG] Created %s (%s, schedule %q)", path, params.DagID, params.ScheduleInterval)
	return nil
}
