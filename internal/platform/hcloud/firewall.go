package hcloud

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

var anywhere = []net.IPNet{
	{IP: net.IPv4zero, Mask: net.CIDRMask(0, 32)},
	{IP: net.IPv6zero, Mask: net.CIDRMask(0, 128)},
}

// ParseRules converts protocol:port specs such as "tcp:80" or "udp:7946"
// into inbound firewall rules open to any source. "icmp" takes no port.
func ParseRules(specs []string) ([]hcloud.FirewallRule, error) {
	rules := make([]hcloud.FirewallRule, 0, len(specs))
	for _, spec := range specs {
		proto, port, _ := strings.Cut(strings.ToLower(strings.TrimSpace(spec)), ":")

		rule := hcloud.FirewallRule{
			Direction:   hcloud.FirewallRuleDirectionIn,
			SourceIPs:   anywhere,
			Description: hcloud.Ptr(spec),
		}
		switch proto {
		case "tcp":
			rule.Protocol = hcloud.FirewallRuleProtocolTCP
		case "udp":
			rule.Protocol = hcloud.FirewallRuleProtocolUDP
		case "icmp":
			if port != "" {
				return nil, fmt.Errorf("icmp rule %q must not have a port", spec)
			}
			rule.Protocol = hcloud.FirewallRuleProtocolICMP
			rules = append(rules, rule)
			continue
		default:
			return nil, fmt.Errorf("unsupported protocol in rule %q", spec)
		}
		if port == "" {
			return nil, fmt.Errorf("rule %q needs a port or port range", spec)
		}
		rule.Port = hcloud.Ptr(port)
		rules = append(rules, rule)
	}
	return rules, nil
}

// EnsureIngress creates or updates the named firewall with rules and
// applies it to every server of the stack.
func (c *Client) EnsureIngress(ctx context.Context, name string, specs []string) (*hcloud.Firewall, error) {
	rules, err := ParseRules(specs)
	if err != nil {
		return nil, err
	}

	return (&EnsureOperation[*hcloud.Firewall, hcloud.FirewallCreateOpts, hcloud.FirewallSetRulesOpts]{
		Name:         name,
		ResourceType: "firewall",
		Get:          c.client.Firewall.Get,
		Create:       c.createFirewall,
		Update:       c.client.Firewall.SetRules,
		CreateOptsMapper: func() hcloud.FirewallCreateOpts {
			return hcloud.FirewallCreateOpts{
				Name:   name,
				Rules:  rules,
				Labels: StackLabels(c.stack),
				ApplyTo: []hcloud.FirewallResource{{
					Type: hcloud.FirewallResourceTypeLabelSelector,
					LabelSelector: &hcloud.FirewallResourceLabelSelector{
						Selector: buildLabelSelector(StackLabels(c.stack)),
					},
				}},
			}
		},
		UpdateOptsMapper: func(_ *hcloud.Firewall) hcloud.FirewallSetRulesOpts {
			return hcloud.FirewallSetRulesOpts{Rules: rules}
		},
	}).Execute(ctx, c)
}

func (c *Client) createFirewall(ctx context.Context, opts hcloud.FirewallCreateOpts) (*CreateResult[*hcloud.Firewall], *hcloud.Response, error) {
	res, resp, err := c.client.Firewall.Create(ctx, opts)
	if err != nil {
		return nil, resp, err
	}
	return &CreateResult[*hcloud.Firewall]{
		Resource: res.Firewall,
		Actions:  res.Actions,
	}, resp, nil
}

// DeleteIngress deletes the named firewall.
func (c *Client) DeleteIngress(ctx context.Context, name string) error {
	return (&DeleteOperation[*hcloud.Firewall]{
		Name:         name,
		ResourceType: "firewall",
		Get:          c.client.Firewall.Get,
		Delete:       c.client.Firewall.Delete,
	}).Execute(ctx, c)
}
