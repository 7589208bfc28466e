package swarm

import (
	"fmt"
	"strings"
)

// NodeStatusReady is the status docker reports for a healthy node.
const NodeStatusReady = "Ready"

// NodeList maps swarm node hostnames to their status.
type NodeList map[string]string

// ParseNodeList parses "hostname status" lines as printed by NodeListCommand.
// Blank and malformed lines are ignored.
func ParseNodeList(output string) NodeList {
	nodes := NodeList{}
	for line := range strings.Lines(output) {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		nodes[fields[0]] = fields[1]
	}
	return nodes
}

// Check returns nil when hostname is a Ready member.
func (n NodeList) Check(hostname string) error {
	status, ok := n[hostname]
	if !ok {
		return ErrNotMember
	}
	if status != NodeStatusReady {
		return fmt.Errorf("%w: status %s", ErrNodeNotReady, status)
	}
	return nil
}
