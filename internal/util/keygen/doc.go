// Package keygen generates and persists RSA key pairs for SSH access to
// swarm machines.
//
// Keys are produced in PEM format (private) and OpenSSH authorized_keys
// format (public), suitable for uploading to Hetzner Cloud as SSH keys.
package keygen
