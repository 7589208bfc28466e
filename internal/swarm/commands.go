package swarm

import (
	"net"
	"strconv"

	"github.com/imamik/swarmflow/internal/platform/shell"
)

// DefaultAdvertisePort is the swarm management port.
const DefaultAdvertisePort = 2377

// InitCommand initializes a swarm advertising addr.
func InitCommand(addr string) string {
	return shell.Join("sudo", "docker", "swarm", "init", "--advertise-addr", addr)
}

// JoinTokenCommand prints the join instructions for role.
func JoinTokenCommand(role Role) string {
	return shell.Join("sudo", "docker", "swarm", "join-token", string(role))
}

// JoinCommand joins the swarm managed at addr:port.
func JoinCommand(token Token, addr string, port int) string {
	return shell.Join("sudo", "docker", "swarm", "join",
		"--token", string(token),
		net.JoinHostPort(addr, strconv.Itoa(port)))
}

// NodeListCommand lists swarm nodes as "hostname status" lines.
func NodeListCommand() string {
	return shell.Join("sudo", "docker", "node", "ls", "--format", "{{.Hostname}} {{.Status}}")
}
