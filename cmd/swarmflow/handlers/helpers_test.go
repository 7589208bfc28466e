package handlers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imamik/swarmflow/internal/config"
	"github.com/imamik/swarmflow/internal/platform/shell"
	"github.com/imamik/swarmflow/internal/swarm"
)

const testConfigYAML = `
stack_name: airflow
swarm:
  provider: gcp
  managers: 1
  workers: 2
gcp:
  project: data-platform
  zone: us-west1-a
  machine_type: n1-standard-2
  kms:
    location: global
    keyring: airflow
    key: secrets
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("HCLOUD_TOKEN", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	cfg, err := config.LoadFromBytes([]byte(testConfigYAML))
	require.NoError(t, err)
	return cfg
}

// useConfig makes every handler see cfg and returns the path it was asked
// to load.
func useConfig(t *testing.T, cfg *config.Config) *string {
	t.Helper()
	var requested string
	orig := loadConfigFile
	loadConfigFile = func(path string) (*config.Config, error) {
		requested = path
		return cfg, nil
	}
	t.Cleanup(func() { loadConfigFile = orig })
	return &requested
}

func useConfigError(t *testing.T, err error) {
	t.Helper()
	orig := loadConfigFile
	loadConfigFile = func(string) (*config.Config, error) { return nil, err }
	t.Cleanup(func() { loadConfigFile = orig })
}

func useBackend(t *testing.T, b *Backend) {
	t.Helper()
	orig := newBackend
	newBackend = func(*config.Config, shell.Runner) (*Backend, error) { return b, nil }
	t.Cleanup(func() { newBackend = orig })
}

func useBackendError(t *testing.T, err error) {
	t.Helper()
	orig := newBackend
	newBackend = func(*config.Config, shell.Runner) (*Backend, error) { return nil, err }
	t.Cleanup(func() { newBackend = orig })
}

func useTerminal(t *testing.T, tty bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func() bool { return tty }
	t.Cleanup(func() { isTerminal = orig })
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = orig })
	return &buf
}

type fakeMachines struct {
	env     map[string]string
	envErr  error
	address string
	addrErr error

	envFor  string
	addrFor string
}

func (f *fakeMachines) CreateMachine(_ context.Context, spec swarm.MachineSpec) (*swarm.Machine, error) {
	return &swarm.Machine{Name: spec.Name()}, nil
}

func (f *fakeMachines) PrivateAddress(context.Context, string) (string, error) {
	return "10.0.0.2", nil
}

func (f *fakeMachines) ListMachines(context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakeMachines) DestroyMachine(context.Context, string) error {
	return nil
}

func (f *fakeMachines) Run(context.Context, string, string) (string, error) {
	return "", nil
}

func (f *fakeMachines) Env(_ context.Context, machine string) (map[string]string, error) {
	f.envFor = machine
	return f.env, f.envErr
}

func (f *fakeMachines) PublicAddress(_ context.Context, machine string) (string, error) {
	f.addrFor = machine
	return f.address, f.addrErr
}

type ingressCall struct {
	op, name, service string
	rules             []string
}

type fakeIngress struct {
	calls []ingressCall
	err   error
}

func (f *fakeIngress) Open(_ context.Context, name, service string, rules []string) error {
	f.calls = append(f.calls, ingressCall{op: "open", name: name, service: service, rules: rules})
	return f.err
}

func (f *fakeIngress) Close(_ context.Context, name string) error {
	f.calls = append(f.calls, ingressCall{op: "close", name: name})
	return f.err
}

func fakeBackend(m *fakeMachines, ing *fakeIngress) *Backend {
	return &Backend{Provider: m, Executor: m, Env: m, Addresses: m, Ingress: ing}
}

var errBoom = errors.New("boom")
