package handlers

import (
	"fmt"
	"log"

	"github.com/imamik/swarmflow/internal/config"
	"github.com/imamik/swarmflow/internal/ui/tui"
	"github.com/imamik/swarmflow/internal/util/prerequisites"
)

// checkPrerequisites looks up the client tools of a provider.
var checkPrerequisites = prerequisites.CheckFor

// Doctor checks that the tools needed by the configured provider are
// installed. Without a config file the gcp toolchain is checked.
func Doctor(configPath string) error {
	provider := config.ProviderGCP

	cfg, err := loadConfigFile(configPath)
	switch {
	case err == nil:
		provider = cfg.Swarm.Provider
	case configPath != "":
		return fmt.Errorf("failed to load config: %w", err)
	default:
		log.Printf("[Doctor] No %s found, checking tools for %s", config.DefaultConfigFilename, provider)
	}

	results := checkPrerequisites(provider)
	fmt.Fprint(stdout, tui.RenderPrerequisites(provider, results))
	return results.Error()
}
