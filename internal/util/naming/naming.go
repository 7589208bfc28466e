package naming

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// MachinePrefix is shared by every machine that belongs to a swarm.
const MachinePrefix = "swarm"

// Roles that may appear in a machine name.
const (
	RoleManager = "manager"
	RoleWorker  = "worker"
)

func Machine(role string, ordinal int) string {
	return fmt.Sprintf("%s-%s-%d", MachinePrefix, role, ordinal)
}

// ParseMachine is the inverse of Machine. It reports false for names that
// were not produced by Machine, including names with a non-canonical ordinal
// such as "swarm-worker-01".
func ParseMachine(name string) (role string, ordinal int, ok bool) {
	rest, found := strings.CutPrefix(name, MachinePrefix+"-")
	if !found {
		return "", 0, false
	}

	role, num, found := strings.Cut(rest, "-")
	if !found || (role != RoleManager && role != RoleWorker) {
		return "", 0, false
	}

	n, err := strconv.Atoi(num)
	if err != nil || n < 0 || strconv.Itoa(n) != num {
		return "", 0, false
	}

	return role, n, true
}

// IsSwarmMachine reports whether name looks like swarm-manager-* or
// swarm-worker-*. Unlike ParseMachine it accepts any suffix.
func IsSwarmMachine(name string) bool {
	return strings.HasPrefix(name, MachinePrefix+"-"+RoleManager+"-") ||
		strings.HasPrefix(name, MachinePrefix+"-"+RoleWorker+"-")
}

func Ingress(stack string) string {
	return fmt.Sprintf("%s-ingress", stack)
}

func SSHKey(stack string) string {
	return fmt.Sprintf("%s-swarm", stack)
}

// ErrObjectOutsideStack is returned for files whose key would leave the
// stack prefix.
var ErrObjectOutsideStack = errors.New("object key escapes the stack prefix")

// BackupObject returns the object key for an uploaded file, always below
// <stack>/.
func BackupObject(stack, file string) (string, error) {
	rel := path.Clean(strings.TrimLeft(file, "/"))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %q", ErrObjectOutsideStack, file)
	}
	return stack + "/" + rel, nil
}
