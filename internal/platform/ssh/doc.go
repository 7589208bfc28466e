// Package ssh runs commands on remote servers over SSH.
//
// [Client] talks to a single host with key-based authentication and retries
// the dial while the host boots. [Executor] resolves a swarm machine name to
// its public address first, which lets it serve as the remote command
// executor for providers that have no ssh wrapper of their own, such as
// Hetzner Cloud.
//
// Host key verification is disabled by default since the machines are
// created and destroyed by this tool. Set Config.HostKeyCallback otherwise.
package ssh
