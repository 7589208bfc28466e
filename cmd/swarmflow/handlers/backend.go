package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/imamik/swarmflow/internal/config"
	"github.com/imamik/swarmflow/internal/deploy"
	"github.com/imamik/swarmflow/internal/platform/dockermachine"
	"github.com/imamik/swarmflow/internal/platform/gcloud"
	"github.com/imamik/swarmflow/internal/platform/hcloud"
	"github.com/imamik/swarmflow/internal/platform/shell"
	"github.com/imamik/swarmflow/internal/platform/ssh"
	"github.com/imamik/swarmflow/internal/swarm"
	"github.com/imamik/swarmflow/internal/util/keygen"
)

// Ingress opens and closes the stack's public ports.
type Ingress interface {
	Open(ctx context.Context, name, service string, rules []string) error
	Close(ctx context.Context, name string) error
}

// Backend bundles the clients of the configured machine provider.
type Backend struct {
	Provider  swarm.Provider
	Executor  swarm.Executor
	Env       deploy.EnvSource
	Addresses ssh.AddressResolver
	Ingress   Ingress

	// Prepare runs before machines are created. It may be nil.
	Prepare func(ctx context.Context) error
	// Cleanup runs after the machines are destroyed. It may be nil.
	Cleanup func(ctx context.Context) error
}

// newBackend builds the clients for cfg.Swarm.Provider.
var newBackend = buildBackend

func buildBackend(cfg *config.Config, runner shell.Runner) (*Backend, error) {
	if err := cfg.ValidateProvider(); err != nil {
		return nil, err
	}

	switch cfg.Swarm.Provider {
	case config.ProviderGCP:
		dm := dockermachine.New(runner, cfg.GCP)
		return &Backend{
			Provider:  dm,
			Executor:  dm,
			Env:       dm,
			Addresses: dm,
			Ingress:   gcloudIngress{client: gcloud.New(runner, cfg.GCP.Project, cfg.GCP.Zone), network: cfg.GCP.Network},
		}, nil

	case config.ProviderHCloud:
		hc := hcloud.NewClient(cfg.HCloud, cfg.StackName)
		key, err := keygen.LoadOrGenerate(cfg.HCloud.SSHKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load ssh key: %w", err)
		}
		exec, err := ssh.NewExecutor(hc, ssh.Config{User: cfg.HCloud.SSHUser, PrivateKey: key.PrivateKey})
		if err != nil {
			return nil, fmt.Errorf("failed to create ssh executor: %w", err)
		}
		return &Backend{
			Provider:  hc,
			Executor:  exec,
			Env:       hc,
			Addresses: hc,
			Ingress:   hcloudIngress{client: hc},
			Prepare: func(ctx context.Context) error {
				_, err := hc.EnsureSSHKey(ctx, string(key.PublicKey))
				return err
			},
			Cleanup: hc.DeleteSSHKey,
		}, nil
	}

	return nil, fmt.Errorf("unsupported provider %q", cfg.Swarm.Provider)
}

type gcloudIngress struct {
	client  *gcloud.Client
	network string
}

func (g gcloudIngress) Open(ctx context.Context, name, service string, rules []string) error {
	return g.client.CreateFirewallRule(ctx, gcloud.FirewallRule{
		Name:        name,
		Network:     g.network,
		Rules:       rules,
		Description: "Allow ingress into our docker swarm for " + service,
	})
}

func (g gcloudIngress) Close(ctx context.Context, name string) error {
	return g.client.DeleteFirewallRule(ctx, name)
}

type hcloudIngress struct {
	client *hcloud.Client
}

func (h hcloudIngress) Open(ctx context.Context, name, service string, rules []string) error {
	fw, err := h.client.EnsureIngress(ctx, name, rules)
	if err != nil {
		return err
	}
	log.Printf("[Ingress] Firewall %s (id %d) allows %v for %s", fw.Name, fw.ID, rules, service)
	return nil
}

func (h hcloudIngress) Close(ctx context.Context, name string) error {
	return h.client.DeleteIngress(ctx, name)
}
