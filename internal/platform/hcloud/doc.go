// Package hcloud runs swarm machines on Hetzner Cloud through hcloud-go.
//
// # Architecture
//
//   - client.go: client construction and options
//   - operations.go: generic Delete and Ensure operations
//   - server.go: the swarm.Provider implementation
//   - ssh_key.go: the SSH key servers are created with
//   - firewall.go: ingress firewall applied by label selector
//   - env.go: Docker client environment for a server
//   - errors.go: error classification for retry logic
//
// # Generic Operations
//
// DeleteOperation provides idempotent deletion: a missing resource counts as
// deleted and locked resources are retried with exponential backoff.
//
// EnsureOperation provides get-or-create semantics with optional update or
// validation of an existing resource.
//
// # Labels
//
// Every resource carries swarmflow.io/managed-by=swarmflow and
// swarmflow.io/stack=<stack>; servers also carry swarmflow.io/role. Listing
// and firewall targeting rely on these labels, never on names alone.
//
// # Retry and Timeout Configuration
//
// Timeouts and retry parameters come from config.LoadTimeouts:
//
//   - SWARMFLOW_TIMEOUT_SERVER_CREATE: server creation timeout (default: 10m)
//   - SWARMFLOW_TIMEOUT_DELETE: resource deletion timeout (default: 5m)
//   - SWARMFLOW_RETRY_MAX_ATTEMPTS: maximum retry attempts (default: 5)
//   - SWARMFLOW_RETRY_INITIAL_DELAY: initial retry delay (default: 1s)
package hcloud
