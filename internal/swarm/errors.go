package swarm

import "errors"

var (
	// ErrNoInitializer means the topology has machines but no swarm-manager-0.
	ErrNoInitializer = errors.New("topology has no initializer (swarm-manager-0)")

	// ErrInitializerFailed marks assembly steps skipped because swarm init
	// did not succeed.
	ErrInitializerFailed = errors.New("swarm initializer failed")

	// ErrTokenNotFound means join-token output had no line containing a token.
	ErrTokenNotFound = errors.New("join token not found in output")

	// ErrMalformedToken means the token field did not look like a swarm token.
	ErrMalformedToken = errors.New("malformed join token")

	// ErrNotMember means a machine that was joined is missing from the node list.
	ErrNotMember = errors.New("machine is not a swarm member")

	// ErrNodeNotReady means the machine is a member but its status is not Ready.
	ErrNodeNotReady = errors.New("swarm node is not ready")
)
