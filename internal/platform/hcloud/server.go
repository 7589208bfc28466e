package hcloud

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/swarmflow/internal/swarm"
	"github.com/imamik/swarmflow/internal/util/retry"
)

// CreateMachine creates the server for spec and waits until it is running.
func (c *Client) CreateMachine(ctx context.Context, spec swarm.MachineSpec) (*swarm.Machine, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.ServerCreate)
	defer cancel()

	opts, err := c.buildServerCreateOpts(ctx, spec)
	if err != nil {
		return nil, err
	}

	result, err := c.createServerWithRetry(ctx, opts)
	if err != nil {
		return nil, err
	}

	m := &swarm.Machine{
		Name: result.Server.Name,
		ID:   strconv.FormatInt(result.Server.ID, 10),
	}
	if ip := result.Server.PublicNet.IPv4.IP; ip != nil {
		m.PublicAddress = ip.String()
	}
	return m, nil
}

func (c *Client) buildServerCreateOpts(ctx context.Context, spec swarm.MachineSpec) (hcloud.ServerCreateOpts, error) {
	opts := hcloud.ServerCreateOpts{
		Name:       spec.Name(),
		ServerType: &hcloud.ServerType{Name: c.cfg.ServerType},
		Image:      &hcloud.Image{Name: c.cfg.Image},
		Location:   &hcloud.Location{Name: c.cfg.Location},
		Labels:     MachineLabels(c.stack, spec.Role),
	}

	if key := c.currentSSHKey(); key != nil {
		opts.SSHKeys = []*hcloud.SSHKey{key}
	}

	if c.cfg.Network != "" {
		network, _, err := c.client.Network.Get(ctx, c.cfg.Network)
		if err != nil {
			return opts, fmt.Errorf("failed to get network: %w", err)
		}
		if network == nil {
			return opts, fmt.Errorf("network not found: %s", c.cfg.Network)
		}
		opts.Networks = []*hcloud.Network{network}
	}

	return opts, nil
}

func (c *Client) createServerWithRetry(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, error) {
	var result hcloud.ServerCreateResult

	err := retry.WithExponentialBackoff(ctx, func() error {
		res, _, err := c.client.Server.Create(ctx, opts)
		if err != nil {
			if isInvalidParameter(err) {
				return retry.Fatal(err)
			}
			return err
		}
		result = res
		return nil
	}, retry.WithMaxRetries(c.timeouts.RetryMaxAttempts), retry.WithInitialDelay(c.timeouts.RetryInitialDelay))
	if err != nil {
		return result, fmt.Errorf("failed to create server %s: %w", opts.Name, err)
	}

	var actions []*hcloud.Action
	for _, a := range append([]*hcloud.Action{result.Action}, result.NextActions...) {
		if a != nil {
			actions = append(actions, a)
		}
	}
	if err := waitForActions(ctx, c.client, actions...); err != nil {
		return result, fmt.Errorf("failed to wait for server %s: %w", opts.Name, err)
	}
	return result, nil
}

// PrivateAddress returns the server's IP on the configured private network,
// or its public IPv4 when no network is configured.
func (c *Client) PrivateAddress(ctx context.Context, name string) (string, error) {
	server, err := c.getServer(ctx, name)
	if err != nil {
		return "", err
	}
	if c.cfg.Network != "" {
		for _, pn := range server.PrivateNet {
			if pn.IP != nil {
				return pn.IP.String(), nil
			}
		}
	}
	return publicIPv4(server)
}

// PublicAddress returns the server's public IPv4.
func (c *Client) PublicAddress(ctx context.Context, name string) (string, error) {
	server, err := c.getServer(ctx, name)
	if err != nil {
		return "", err
	}
	return publicIPv4(server)
}

// ListMachines returns the names of the servers managed for this stack.
func (c *Client) ListMachines(ctx context.Context) ([]string, error) {
	servers, err := c.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: buildLabelSelector(StackLabels(c.stack))},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}

	names := make([]string, 0, len(servers))
	for _, s := range servers {
		names = append(names, s.Name)
	}
	return names, nil
}

// DestroyMachine deletes the named server. A missing server is not an error.
func (c *Client) DestroyMachine(ctx context.Context, name string) error {
	return (&DeleteOperation[*hcloud.Server]{
		Name:         name,
		ResourceType: "server",
		Get:          c.client.Server.Get,
		Delete: func(ctx context.Context, server *hcloud.Server) (*hcloud.Response, error) {
			_, resp, err := c.client.Server.DeleteWithResult(ctx, server)
			return resp, err
		},
	}).Execute(ctx, c)
}

func (c *Client) getServer(ctx context.Context, name string) (*hcloud.Server, error) {
	server, _, err := c.client.Server.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get server: %w", err)
	}
	if server == nil {
		return nil, fmt.Errorf("server not found: %s", name)
	}
	return server, nil
}

func publicIPv4(server *hcloud.Server) (string, error) {
	if server.PublicNet.IPv4.IP == nil {
		return "", fmt.Errorf("server %s has no public IPv4", server.Name)
	}
	return server.PublicNet.IPv4.IP.String(), nil
}
