package config

import (
	"errors"
	"fmt"
	"regexp"
)

// stackNameRegex matches names accepted by docker stack deploy and usable as
// a firewall rule prefix.
var stackNameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_-]{0,61}[a-z0-9])?$`)

// Validate checks the parts of the configuration every command relies on.
// Provider-specific fields are checked by ValidateProvider.
func (c *Config) Validate() error {
	if !stackNameRegex.MatchString(c.StackName) {
		return fmt.Errorf("stack_name %q must be lowercase alphanumeric with hyphens or underscores", c.StackName)
	}

	switch c.Swarm.Provider {
	case ProviderGCP, ProviderHCloud:
	default:
		return fmt.Errorf("swarm.provider %q is not supported (use %q or %q)", c.Swarm.Provider, ProviderGCP, ProviderHCloud)
	}

	if c.Swarm.Managers < 0 {
		return fmt.Errorf("swarm.managers must not be negative, got %d", c.Swarm.Managers)
	}
	if c.Swarm.Workers < 0 {
		return fmt.Errorf("swarm.workers must not be negative, got %d", c.Swarm.Workers)
	}
	if c.Swarm.Parallelism < 0 {
		return fmt.Errorf("swarm.parallelism must not be negative, got %d", c.Swarm.Parallelism)
	}

	if c.TLS.Days < 1 {
		return fmt.Errorf("tls.days must be at least 1, got %d", c.TLS.Days)
	}

	if c.Backup.Enabled() && c.Backup.Endpoint == "" {
		return errors.New("backup.endpoint is required when backup.bucket is set")
	}

	return nil
}

// ValidateProvider checks the fields needed to talk to the configured
// machine provider.
func (c *Config) ValidateProvider() error {
	var missing []string

	switch c.Swarm.Provider {
	case ProviderGCP:
		if c.GCP.Project == "" {
			missing = append(missing, "gcp.project")
		}
		if c.GCP.Zone == "" {
			missing = append(missing, "gcp.zone")
		}
		if c.GCP.MachineType == "" {
			missing = append(missing, "gcp.machine_type")
		}
	case ProviderHCloud:
		if c.HCloud.Token == "" {
			missing = append(missing, "HCLOUD_TOKEN")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%s provider requires: %v", c.Swarm.Provider, missing)
	}
	return nil
}

// ValidateKMS checks that a KMS key is fully configured.
func (c *Config) ValidateKMS() error {
	k := c.GCP.KMS
	if k.Location == "" || k.Keyring == "" || k.Key == "" {
		return errors.New("gcp.kms.location, gcp.kms.keyring and gcp.kms.key are required")
	}
	return nil
}

// Parallelism returns the worker pool size for n machines.
func (c *Config) Parallelism(n int) int {
	if c.Swarm.Parallelism > 0 {
		return c.Swarm.Parallelism
	}
	return max(1, min(n, DefaultMaxParallelism))
}
