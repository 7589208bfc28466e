package hcloud

import (
	"sync"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/swarmflow/internal/config"
)

// Client manages the servers of one stack.
type Client struct {
	client   *hcloud.Client
	cfg      config.HCloudConfig
	stack    string
	timeouts *config.Timeouts

	mu     sync.Mutex
	sshKey *hcloud.SSHKey
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *Client) {
		c.timeouts = t
	}
}

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a client for stack using cfg.Token.
func NewClient(cfg config.HCloudConfig, stack string, opts ...ClientOption) *Client {
	c := &Client{
		client:   hcloud.NewClient(hcloud.WithToken(cfg.Token), hcloud.WithApplication("swarmflow", "")),
		cfg:      cfg,
		stack:    stack,
		timeouts: config.LoadTimeouts(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HCloudClient returns the underlying hcloud.Client.
func (c *Client) HCloudClient() *hcloud.Client {
	return c.client
}
