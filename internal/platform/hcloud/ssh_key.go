package hcloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/swarmflow/internal/util/naming"
)

// EnsureSSHKey registers publicKey under the stack's key name, or reuses an
// existing key of that name if it holds the same public key. Servers created
// afterwards get this key.
func (c *Client) EnsureSSHKey(ctx context.Context, publicKey string) (*hcloud.SSHKey, error) {
	name := naming.SSHKey(c.stack)
	publicKey = strings.TrimSpace(publicKey)

	key, err := (&EnsureOperation[*hcloud.SSHKey, hcloud.SSHKeyCreateOpts, any]{
		Name:         name,
		ResourceType: "ssh key",
		Get:          c.client.SSHKey.Get,
		Create:       simpleCreate(c.client.SSHKey.Create),
		Validate: func(existing *hcloud.SSHKey) error {
			if strings.TrimSpace(existing.PublicKey) != publicKey {
				return fmt.Errorf("ssh key %s exists with a different public key", name)
			}
			return nil
		},
		CreateOptsMapper: func() hcloud.SSHKeyCreateOpts {
			return hcloud.SSHKeyCreateOpts{
				Name:      name,
				PublicKey: publicKey,
				Labels:    StackLabels(c.stack),
			}
		},
	}).Execute(ctx, c)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.sshKey = key
	c.mu.Unlock()
	return key, nil
}

// DeleteSSHKey removes the stack's key.
func (c *Client) DeleteSSHKey(ctx context.Context) error {
	return (&DeleteOperation[*hcloud.SSHKey]{
		Name:         naming.SSHKey(c.stack),
		ResourceType: "ssh key",
		Get:          c.client.SSHKey.Get,
		Delete:       c.client.SSHKey.Delete,
	}).Execute(ctx, c)
}

func (c *Client) currentSSHKey() *hcloud.SSHKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sshKey
}

// simpleCreate adapts create functions that return the resource directly.
func simpleCreate[T any, Opts any](
	createFn func(context.Context, Opts) (T, *hcloud.Response, error),
) func(context.Context, Opts) (*CreateResult[T], *hcloud.Response, error) {
	return func(ctx context.Context, opts Opts) (*CreateResult[T], *hcloud.Response, error) {
		resource, resp, err := createFn(ctx, opts)
		if err != nil {
			return nil, resp, err
		}
		return &CreateResult[T]{Resource: resource}, resp, nil
	}
}
