package naming

import (
	"errors"
	"testing"
)

func TestNamingFunctions(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "Manager", got: Machine(RoleManager, 0), expected: "swarm-manager-0"},
		{name: "Worker", got: Machine(RoleWorker, 12), expected: "swarm-worker-12"},
		{name: "Ingress", got: Ingress("airflow"), expected: "airflow-ingress"},
		{name: "SSHKey", got: SSHKey("airflow"), expected: "airflow-swarm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.got)
			}
		})
	}
}

func TestBackupObject(t *testing.T) {
	tests := map[string]string{
		"/secrets/env.enc":   "airflow/secrets/env.enc",
		"secrets/env.enc":    "airflow/secrets/env.enc",
		"./secrets//env.enc": "airflow/secrets/env.enc",
		"secrets/../env.enc": "airflow/env.enc",
	}
	for file, want := range tests {
		got, err := BackupObject("airflow", file)
		if err != nil {
			t.Errorf("BackupObject(%q): unexpected error %v", file, err)
			continue
		}
		if got != want {
			t.Errorf("BackupObject(%q) = %q, want %q", file, got, want)
		}
	}
}

func TestBackupObject_Escapes(t *testing.T) {
	for _, file := range []string{"../x.enc", "secrets/../../x.enc", "..", "", "/"} {
		if _, err := BackupObject("airflow", file); !errors.Is(err, ErrObjectOutsideStack) {
			t.Errorf("BackupObject(%q): expected ErrObjectOutsideStack, got %v", file, err)
		}
	}
}

func TestParseMachine_RoundTrip(t *testing.T) {
	for _, role := range []string{RoleManager, RoleWorker} {
		for i := range 25 {
			gotRole, gotOrdinal, ok := ParseMachine(Machine(role, i))
			if !ok {
				t.Fatalf("ParseMachine(%q) failed", Machine(role, i))
			}
			if gotRole != role || gotOrdinal != i {
				t.Errorf("round trip of (%s, %d) gave (%s, %d)", role, i, gotRole, gotOrdinal)
			}
		}
	}
}

func TestParseMachine_Rejects(t *testing.T) {
	for _, name := range []string{
		"",
		"swarm",
		"swarm-manager",
		"swarm-manager-",
		"swarm-manager-x",
		"swarm-manager--1",
		"swarm-worker-01",
		"swarm-master-0",
		"other-manager-0",
		"swarm-worker-1-extra",
	} {
		if _, _, ok := ParseMachine(name); ok {
			t.Errorf("expected ParseMachine(%q) to fail", name)
		}
	}
}

func TestIsSwarmMachine(t *testing.T) {
	tests := map[string]bool{
		"swarm-manager-0":  true,
		"swarm-worker-3":   true,
		"swarm-worker-old": true,
		"swarm-manager":    false,
		"default":          false,
		"build-box":        false,
		"my-swarm-worker-1": false,
	}
	for name, want := range tests {
		if got := IsSwarmMachine(name); got != want {
			t.Errorf("IsSwarmMachine(%q) = %v, want %v", name, got, want)
		}
	}
}
