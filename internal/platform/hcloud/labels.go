package hcloud

import (
	"maps"
	"slices"
	"strings"

	"github.com/imamik/swarmflow/internal/swarm"
)

const (
	LabelStack     = "swarmflow.io/stack"
	LabelRole      = "swarmflow.io/role"
	LabelManagedBy = "swarmflow.io/managed-by"

	managedByValue = "swarmflow"
)

// StackLabels returns the labels shared by every resource of stack.
func StackLabels(stack string) map[string]string {
	return map[string]string{
		LabelManagedBy: managedByValue,
		LabelStack:     stack,
	}
}

// MachineLabels returns the labels of a server with role.
func MachineLabels(stack string, role swarm.Role) map[string]string {
	labels := StackLabels(stack)
	labels[LabelRole] = string(role)
	return labels
}

// buildLabelSelector joins labels as k=v pairs in key order.
func buildLabelSelector(labels map[string]string) string {
	pairs := make([]string, 0, len(labels))
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		pairs = append(pairs, k+"="+labels[k])
	}
	return strings.Join(pairs, ",")
}
