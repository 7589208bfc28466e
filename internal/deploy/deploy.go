// Package deploy builds, deploys and inspects the compose stack either on
// the local Docker engine or on the swarm.
//
// Production commands run against the Docker environment of the swarm's
// initial manager. Local commands run with the docker-machine variables
// removed from the child environment so they always reach the local
// engine. The process environment itself is never modified.
package deploy

import (
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/imamik/swarmflow/internal/platform/shell"
	"github.com/imamik/swarmflow/internal/util/naming"
)

// NgrokPort is the local port exposed through ngrok.
const NgrokPort = 8080

// DockerEnvVars are the variables docker-machine sets to point the Docker
// client at a remote engine.
var DockerEnvVars = []string{
	"DOCKER_TLS_VERIFY",
	"DOCKER_HOST",
	"DOCKER_CERT_PATH",
	"DOCKER_MACHINE_NAME",
}

// EnvSource returns the Docker client environment for a machine.
type EnvSource interface {
	Env(ctx context.Context, machine string) (map[string]string, error)
}

// Options select how Deploy runs.
type Options struct {
	// Rebuild builds and pushes images first.
	Rebuild bool
	// Stack deploys with docker stack deploy instead of docker-compose.
	Stack bool
	// Prod deploys to the swarm. It implies Stack and Rebuild.
	Prod bool
	// Ngrok runs the stack locally in the background and tunnels it.
	Ngrok bool
}

// Deployer runs docker and docker-compose for one stack.
type Deployer struct {
	runner       shell.Runner
	env          EnvSource
	stack        string
	composeFiles []string
	manager      string
}

// New returns a Deployer. env may be nil when production commands are not
// needed.
func New(runner shell.Runner, env EnvSource, stack string, composeFiles []string) *Deployer {
	return &Deployer{
		runner:       runner,
		env:          env,
		stack:        stack,
		composeFiles: slices.Clone(composeFiles),
		manager:      naming.Machine(naming.RoleManager, 0),
	}
}

// StackDeployCommand returns the docker stack deploy command line.
func (d *Deployer) StackDeployCommand() string {
	args := []string{"docker", "stack", "deploy"}
	for _, f := range d.composeFiles {
		args = append(args, "-c", f)
	}
	return shell.Join(append(args, d.stack)...)
}

// Rebuild builds the images and pushes them to the registry.
func (d *Deployer) Rebuild(ctx context.Context, prod bool) error {
	opts, err := d.envOptions(ctx, prod)
	if err != nil {
		return err
	}
	return d.rebuild(ctx, opts)
}

func (d *Deployer) rebuild(ctx context.Context, opts []shell.Option) error {
	log.Printf("[Deploy] Building images")
	if _, err := d.runner.Run(ctx, "docker-compose build", opts...); err != nil {
		return fmt.Errorf("failed to build images: %w", err)
	}
	if _, err := d.runner.Run(ctx, "docker-compose push", append(opts, shell.Interactive())...); err != nil {
		return fmt.Errorf("failed to push images: %w", err)
	}
	return nil
}

// Deploy starts the stack as selected by o.
func (d *Deployer) Deploy(ctx context.Context, o Options) error {
	opts, err := d.envOptions(ctx, o.Prod)
	if err != nil {
		return err
	}

	switch {
	case o.Ngrok:
		return d.deployNgrok(ctx, o, opts)
	case o.Prod || o.Stack:
		if o.Prod || o.Rebuild {
			if err := d.rebuild(ctx, opts); err != nil {
				return err
			}
		}
		log.Printf("[Deploy] Deploying stack %s", d.stack)
		if _, err := d.runner.Run(ctx, d.StackDeployCommand(), opts...); err != nil {
			return fmt.Errorf("failed to deploy stack %s: %w", d.stack, err)
		}
		return nil
	default:
		if o.Rebuild {
			if err := d.rebuild(ctx, opts); err != nil {
				return err
			}
		}
		if _, err := d.runner.Run(ctx, "docker-compose up", append(opts, shell.Interactive())...); err != nil {
			return fmt.Errorf("docker-compose up failed: %w", err)
		}
		return nil
	}
}

func (d *Deployer) deployNgrok(ctx context.Context, o Options, opts []shell.Option) (err error) {
	if o.Rebuild {
		if err := d.rebuild(ctx, opts); err != nil {
			return err
		}
	}

	if _, err := d.runner.Run(ctx, "docker-compose up -d", opts...); err != nil {
		return fmt.Errorf("docker-compose up failed: %w", err)
	}
	defer func() {
		// The tunnel usually ends with Ctrl-C, so tear down on a fresh context.
		if _, downErr := d.runner.Run(context.WithoutCancel(ctx), "docker-compose down", opts...); downErr != nil && err == nil {
			err = fmt.Errorf("docker-compose down failed: %w", downErr)
		}
	}()

	tunnel := fmt.Sprintf("ngrok http %d", NgrokPort)
	if _, err := d.runner.Run(ctx, tunnel, append(opts, shell.Interactive())...); err != nil && ctx.Err() == nil {
		return fmt.Errorf("ngrok failed: %w", err)
	}
	return nil
}

// Undeploy removes the stack.
func (d *Deployer) Undeploy(ctx context.Context, prod bool) error {
	opts, err := d.envOptions(ctx, prod)
	if err != nil {
		return err
	}
	log.Printf("[Deploy] Removing stack %s", d.stack)
	if _, err := d.runner.Run(ctx, shell.Join("docker", "stack", "remove", d.stack), opts...); err != nil {
		return fmt.Errorf("failed to remove stack %s: %w", d.stack, err)
	}
	return nil
}

// Status lists the services of the engine.
func (d *Deployer) Status(ctx context.Context, prod bool) error {
	opts, err := d.envOptions(ctx, prod)
	if err != nil {
		return err
	}
	if _, err := d.runner.Run(ctx, "docker service ls", opts...); err != nil {
		return fmt.Errorf("failed to list services: %w", err)
	}
	return nil
}

func (d *Deployer) envOptions(ctx context.Context, prod bool) ([]shell.Option, error) {
	if !prod {
		return []shell.Option{shell.WithoutEnv(DockerEnvVars...)}, nil
	}
	if d.env == nil {
		return nil, fmt.Errorf("no docker environment source for production")
	}
	env, err := d.env.Env(ctx, d.manager)
	if err != nil {
		return nil, fmt.Errorf("failed to get docker env of %s: %w", d.manager, err)
	}
	return []shell.Option{shell.WithEnv(env)}, nil
}
