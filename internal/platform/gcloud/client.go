package gcloud

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/imamik/swarmflow/internal/platform/shell"
)

// DockerMachineTag is the network tag docker-machine's google driver puts
// on every instance.
const DockerMachineTag = "docker-machine"

// Client runs gcloud for one project and zone.
type Client struct {
	runner  shell.Runner
	project string
	zone    string
}

// New creates a client.
func New(runner shell.Runner, project, zone string) *Client {
	return &Client{runner: runner, project: project, zone: zone}
}

// InstanceAddressCommand prints the primary internal IP of an instance.
func (c *Client) InstanceAddressCommand(name string) string {
	return shell.Join("gcloud", "compute", "instances", "describe",
		"--project", c.project,
		"--zone", c.zone,
		"--format", "value(networkInterfaces[0].networkIP)",
		name)
}

// InstanceAddress returns the internal IP of the named instance.
func (c *Client) InstanceAddress(ctx context.Context, name string) (string, error) {
	res, err := c.runner.Run(ctx, c.InstanceAddressCommand(name), shell.Hide())
	if err != nil {
		return "", fmt.Errorf("failed to describe instance %s: %w", name, err)
	}
	addr := strings.TrimSpace(res.Stdout)
	if addr == "" {
		return "", fmt.Errorf("instance %s has no internal address", name)
	}
	return addr, nil
}

// FirewallRule is an ingress allow rule for tagged instances.
type FirewallRule struct {
	Name       string
	Network    string
	Rules      []string
	TargetTags []string
	Priority   int
	// Description is omitted from the command when empty.
	Description string
}

// CreateFirewallRuleCommand builds the firewall-rules create invocation.
func (c *Client) CreateFirewallRuleCommand(rule FirewallRule) string {
	network := rule.Network
	if network == "" {
		network = "default"
	}
	priority := rule.Priority
	if priority == 0 {
		priority = 1000
	}
	tags := rule.TargetTags
	if len(tags) == 0 {
		tags = []string{DockerMachineTag}
	}

	args := []string{"gcloud", "compute", "firewall-rules", "create", rule.Name,
		"--project", c.project,
		"--direction", "INGRESS",
		"--priority", strconv.Itoa(priority),
		"--network", network,
		"--action", "ALLOW",
		"--rules", strings.Join(rule.Rules, ","),
		"--target-tags", strings.Join(tags, ","),
	}
	if rule.Description != "" {
		args = append(args, "--description", rule.Description)
	}
	return shell.Join(args...)
}

// CreateFirewallRule creates rule.
func (c *Client) CreateFirewallRule(ctx context.Context, rule FirewallRule) error {
	if rule.Name == "" {
		return errors.New("firewall rule name is required")
	}
	if len(rule.Rules) == 0 {
		return errors.New("firewall rule needs at least one protocol:port")
	}
	if _, err := c.runner.Run(ctx, c.CreateFirewallRuleCommand(rule)); err != nil {
		return fmt.Errorf("failed to create firewall rule %s: %w", rule.Name, err)
	}
	return nil
}

// DeleteFirewallRuleCommand builds the non-interactive delete invocation.
func (c *Client) DeleteFirewallRuleCommand(name string) string {
	return shell.Join("gcloud", "compute", "firewall-rules", "delete", name,
		"--project", c.project, "--quiet")
}

// DeleteFirewallRule deletes the named rule.
func (c *Client) DeleteFirewallRule(ctx context.Context, name string) error {
	if _, err := c.runner.Run(ctx, c.DeleteFirewallRuleCommand(name)); err != nil {
		return fmt.Errorf("failed to delete firewall rule %s: %w", name, err)
	}
	return nil
}

// EncryptRequest names a Cloud KMS key and the files to encrypt.
type EncryptRequest struct {
	Source      string
	Destination string
	Location    string
	Keyring     string
	Key         string
}

// EncryptCommand builds the kms encrypt invocation.
func EncryptCommand(req EncryptRequest) string {
	return shell.Join("gcloud", "kms", "encrypt",
		"--key="+req.Key,
		"--location="+req.Location,
		"--keyring="+req.Keyring,
		"--plaintext-file="+req.Source,
		"--ciphertext-file="+req.Destination)
}

// Encrypt encrypts req.Source into req.Destination.
func (c *Client) Encrypt(ctx context.Context, req EncryptRequest) error {
	if req.Source == "" || req.Destination == "" {
		return errors.New("encrypt needs a source and a destination")
	}
	if _, err := c.runner.Run(ctx, EncryptCommand(req)); err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", req.Source, err)
	}
	return nil
}
