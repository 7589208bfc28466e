package swarm

import (
	"fmt"

	"github.com/imamik/swarmflow/internal/util/naming"
)

// Role is the swarm role of a machine.
type Role string

const (
	RoleManager Role = naming.RoleManager
	RoleWorker  Role = naming.RoleWorker
)

// MachineSpec identifies one machine of the cluster.
type MachineSpec struct {
	Role    Role
	Ordinal int
}

// Name returns the machine name, swarm-{role}-{ordinal}.
func (s MachineSpec) Name() string {
	return naming.Machine(string(s.Role), s.Ordinal)
}

// IsInitializer reports whether s is the machine that runs swarm init.
func (s MachineSpec) IsInitializer() bool {
	return s.Role == RoleManager && s.Ordinal == 0
}

func (s MachineSpec) String() string {
	return s.Name()
}

// ParseMachineSpec recovers the spec from a machine name produced by Name.
func ParseMachineSpec(name string) (MachineSpec, bool) {
	role, ordinal, ok := naming.ParseMachine(name)
	if !ok {
		return MachineSpec{}, false
	}
	return MachineSpec{Role: Role(role), Ordinal: ordinal}, true
}

// Topology is the ordered list of machines: managers by ordinal, then
// workers by ordinal.
type Topology []MachineSpec

// NewTopology builds the topology for the given counts.
func NewTopology(managers, workers int) (Topology, error) {
	if managers < 0 || workers < 0 {
		return nil, fmt.Errorf("machine counts must not be negative (managers=%d, workers=%d)", managers, workers)
	}

	topo := make(Topology, 0, managers+workers)
	for i := range managers {
		topo = append(topo, MachineSpec{Role: RoleManager, Ordinal: i})
	}
	for i := range workers {
		topo = append(topo, MachineSpec{Role: RoleWorker, Ordinal: i})
	}
	return topo, nil
}

// Initializer returns the (manager, 0) spec if the topology has one.
func (t Topology) Initializer() (MachineSpec, bool) {
	for _, s := range t {
		if s.IsInitializer() {
			return s, true
		}
	}
	return MachineSpec{}, false
}

// Count returns the number of machines with the given role.
func (t Topology) Count(role Role) int {
	n := 0
	for _, s := range t {
		if s.Role == role {
			n++
		}
	}
	return n
}

// Names returns the machine names in topology order.
func (t Topology) Names() []string {
	names := make([]string, len(t))
	for i, s := range t {
		names[i] = s.Name()
	}
	return names
}
