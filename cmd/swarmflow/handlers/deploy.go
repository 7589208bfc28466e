package handlers

import (
	"context"

	"github.com/imamik/swarmflow/internal/deploy"
	"github.com/imamik/swarmflow/internal/platform/shell"
)

// Deployer runs the stack lifecycle commands.
type Deployer interface {
	Rebuild(ctx context.Context, prod bool) error
	Deploy(ctx context.Context, o deploy.Options) error
	Undeploy(ctx context.Context, prod bool) error
	Status(ctx context.Context, prod bool) error
}

// newDeployer creates a deployer for one stack.
var newDeployer = func(runner shell.Runner, env deploy.EnvSource, stack string, composeFiles []string) Deployer {
	return deploy.New(runner, env, stack, composeFiles)
}

// Deploy starts the stack locally, through ngrok or on the swarm.
func Deploy(ctx context.Context, configPath string, opts deploy.Options) error {
	d, err := deployerFor(configPath, opts.Prod)
	if err != nil {
		return err
	}
	return d.Deploy(ctx, opts)
}

// Undeploy removes the stack.
func Undeploy(ctx context.Context, configPath string, prod bool) error {
	d, err := deployerFor(configPath, prod)
	if err != nil {
		return err
	}
	return d.Undeploy(ctx, prod)
}

// Status lists the running services.
func Status(ctx context.Context, configPath string, prod bool) error {
	d, err := deployerFor(configPath, prod)
	if err != nil {
		return err
	}
	return d.Status(ctx, prod)
}

// Rebuild builds and pushes the stack images.
func Rebuild(ctx context.Context, configPath string, prod bool) error {
	d, err := deployerFor(configPath, prod)
	if err != nil {
		return err
	}
	return d.Rebuild(ctx, prod)
}

// deployerFor only contacts the provider when prod needs the manager's
// Docker environment.
func deployerFor(configPath string, prod bool) (Deployer, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	runner := newRunner(false)
	var env deploy.EnvSource
	if prod {
		backend, err := newBackend(cfg, newRunner(true))
		if err != nil {
			return nil, err
		}
		env = backend.Env
	}

	return newDeployer(runner, env, cfg.StackName, cfg.Compose.Files), nil
}
