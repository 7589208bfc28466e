package hcloud

import (
	"context"
	"fmt"
)

// Env returns a Docker client environment that reaches the daemon on
// machine over SSH.
func (c *Client) Env(ctx context.Context, machine string) (map[string]string, error) {
	ip, err := c.PublicAddress(ctx, machine)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"DOCKER_HOST": fmt.Sprintf("ssh://%s@%s", c.cfg.SSHUser, ip),
	}, nil
}
