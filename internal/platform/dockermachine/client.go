package dockermachine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/imamik/swarmflow/internal/config"
	"github.com/imamik/swarmflow/internal/platform/gcloud"
	"github.com/imamik/swarmflow/internal/platform/shell"
	"github.com/imamik/swarmflow/internal/swarm"
)

// Client drives docker-machine for one GCP project.
type Client struct {
	runner shell.Runner
	gcp    config.GCPConfig
	gcloud *gcloud.Client
}

// New creates a client. runner executes every docker-machine and gcloud call.
func New(runner shell.Runner, gcp config.GCPConfig) *Client {
	return &Client{
		runner: runner,
		gcp:    gcp,
		gcloud: gcloud.New(runner, gcp.Project, gcp.Zone),
	}
}

// CreateCommand returns the docker-machine create invocation for name.
func (c *Client) CreateCommand(name string) string {
	return shell.Join("docker-machine", "create",
		"--driver", "google",
		"--google-project", c.gcp.Project,
		"--google-zone", c.gcp.Zone,
		"--google-machine-type", c.gcp.MachineType,
		"--google-tags", "docker",
		name)
}

// CreateMachine creates the instance for spec.
func (c *Client) CreateMachine(ctx context.Context, spec swarm.MachineSpec) (*swarm.Machine, error) {
	name := spec.Name()
	if _, err := c.runner.Run(ctx, c.CreateCommand(name), shell.Hide()); err != nil {
		return nil, fmt.Errorf("docker-machine create %s: %w", name, err)
	}
	return &swarm.Machine{Name: name}, nil
}

// PrivateAddress returns the instance's internal IP.
func (c *Client) PrivateAddress(ctx context.Context, name string) (string, error) {
	return c.gcloud.InstanceAddress(ctx, name)
}

// ListMachines returns every machine docker-machine knows about.
func (c *Client) ListMachines(ctx context.Context) ([]string, error) {
	res, err := c.runner.Run(ctx, "docker-machine ls", shell.Hide())
	if err != nil {
		return nil, fmt.Errorf("docker-machine ls: %w", err)
	}
	return ParseList(res.Stdout), nil
}

// DestroyMachine force-removes name.
func (c *Client) DestroyMachine(ctx context.Context, name string) error {
	if _, err := c.runner.Run(ctx, shell.Join("docker-machine", "rm", "-f", name), shell.Hide()); err != nil {
		return fmt.Errorf("docker-machine rm %s: %w", name, err)
	}
	return nil
}

// Run executes command on machine over docker-machine ssh and returns stdout.
//
// docker-machine ssh joins its arguments with spaces before handing them to
// the remote shell, so command is passed as a single quoted argument to
// keep its own quoting intact.
func (c *Client) Run(ctx context.Context, machine, command string) (string, error) {
	res, err := c.runner.Run(ctx, shell.Join("docker-machine", "ssh", machine, command), shell.Hide())
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Env returns the Docker client environment for machine.
func (c *Client) Env(ctx context.Context, machine string) (map[string]string, error) {
	res, err := c.runner.Run(ctx, shell.Join("docker-machine", "env", machine), shell.Hide())
	if err != nil {
		return nil, fmt.Errorf("docker-machine env %s: %w", machine, err)
	}
	env := ParseEnv(res.Stdout)
	if len(env) == 0 {
		return nil, fmt.Errorf("docker-machine env %s printed no variables", machine)
	}
	return env, nil
}

// PublicAddress returns the external IP of machine.
func (c *Client) PublicAddress(ctx context.Context, machine string) (string, error) {
	res, err := c.runner.Run(ctx, shell.Join("docker-machine", "ip", machine), shell.Hide())
	if err != nil {
		return "", fmt.Errorf("docker-machine ip %s: %w", machine, err)
	}
	ip := strings.TrimSpace(res.Stdout)
	if ip == "" {
		return "", errors.New("docker-machine ip returned nothing for " + machine)
	}
	return ip, nil
}

// ParseList returns the first column of `docker-machine ls` output, without
// the header row.
func ParseList(output string) []string {
	var names []string
	first := true
	for line := range strings.Lines(output) {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[0])
	}
	return names
}

// ParseEnv reads `export KEY="VALUE"` lines as printed by docker-machine env.
// Comments and other lines are ignored.
func ParseEnv(output string) map[string]string {
	env := map[string]string{}
	for line := range strings.Lines(output) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields := strings.Fields(key)
		if len(fields) == 0 {
			continue
		}
		env[fields[len(fields)-1]] = strings.Trim(value, `"`)
	}
	return env
}
