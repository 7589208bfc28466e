// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] is used for SSH dialing and Hetzner Cloud API
// calls. Swarm joins and machine creation are never retried.
package retry
