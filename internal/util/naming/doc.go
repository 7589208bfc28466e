// Package naming provides consistent naming functions for swarm resources.
//
// Machines follow the pattern swarm-{role}-{ordinal}. Teardown relies on
// this pattern to find the machines it owns, so every provider adapter must
// name machines through this package.
package naming
