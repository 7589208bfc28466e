// Package handlers implements the business logic of the swarmflow commands.
//
// Handlers load the configuration, build the platform clients and run the
// internal packages. Clients are created through package-level factory
// variables so tests can replace them.
package handlers

import (
	"fmt"
	"io"
	"os"

	"github.com/imamik/swarmflow/internal/config"
	"github.com/imamik/swarmflow/internal/platform/shell"
	"github.com/imamik/swarmflow/internal/ui/tui"
)

var (
	// loadConfigFile reads and validates a configuration file.
	loadConfigFile = config.Load

	// newRunner creates the runner used for local subprocesses. A quiet
	// runner captures output instead of streaming it to the terminal.
	newRunner = func(quiet bool) shell.Runner {
		r := shell.NewExecRunner()
		if quiet {
			r.Stdin, r.Stdout, r.Stderr = nil, io.Discard, io.Discard
		}
		return r
	}

	// isTerminal reports whether stdout is an interactive terminal.
	isTerminal = tui.IsTerminal

	// stdout receives command output.
	stdout io.Writer = os.Stdout
)

func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		if configPath == "" {
			return nil, fmt.Errorf("failed to load config: %w\nCreate %s or pass --config", err, config.DefaultConfigFilename)
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
