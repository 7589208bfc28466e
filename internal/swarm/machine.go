package swarm

import "context"

// Machine is the handle returned by a provider after creation.
type Machine struct {
	Name string
	// ID is the provider's identifier, empty when the provider has none.
	ID string
	// PublicAddress is empty when the provider does not report it on create.
	PublicAddress string
}

// Provider is the machine API of a cloud provider.
type Provider interface {
	CreateMachine(ctx context.Context, spec MachineSpec) (*Machine, error)
	// PrivateAddress returns the address other machines reach name on.
	PrivateAddress(ctx context.Context, name string) (string, error)
	// ListMachines returns the names of every machine the provider knows,
	// including machines that do not belong to a swarm.
	ListMachines(ctx context.Context) ([]string, error)
	DestroyMachine(ctx context.Context, name string) error
}

// Executor runs a command on a machine and returns its stdout. A non-zero
// exit status is reported as an error.
type Executor interface {
	Run(ctx context.Context, machine, command string) (string, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, machine, command string) (string, error)

func (f ExecutorFunc) Run(ctx context.Context, machine, command string) (string, error) {
	return f(ctx, machine, command)
}
