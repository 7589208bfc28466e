package ssh

import (
	"context"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// AddressResolver maps a machine name to the address sshd listens on.
type AddressResolver interface {
	PublicAddress(ctx context.Context, name string) (string, error)
}

// Executor runs commands on named machines. It satisfies swarm.Executor.
type Executor struct {
	resolver AddressResolver
	config   Config
	signer   ssh.Signer
}

// NewExecutor returns an executor that connects with cfg. cfg.Host is
// ignored; each call resolves the host from the machine name.
func NewExecutor(resolver AddressResolver, cfg Config) (*Executor, error) {
	if resolver == nil {
		return nil, fmt.Errorf("address resolver cannot be nil")
	}
	prepared, signer, err := prepare(cfg)
	if err != nil {
		return nil, err
	}
	return &Executor{resolver: resolver, config: prepared, signer: signer}, nil
}

// Run executes command on machine and returns its combined output.
func (e *Executor) Run(ctx context.Context, machine, command string) (string, error) {
	host, err := e.resolver.PublicAddress(ctx, machine)
	if err != nil {
		return "", fmt.Errorf("failed to resolve address of %s: %w", machine, err)
	}

	cfg := e.config
	cfg.Host = host
	client := &Client{config: &cfg, signer: e.signer}
	return client.Execute(ctx, command)
}
