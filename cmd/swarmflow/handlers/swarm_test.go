package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/swarmflow/internal/swarm"
	"github.com/imamik/swarmflow/internal/ui/tui"
)

type fakeOrchestrator struct {
	upTopo     swarm.Topology
	upReport   *swarm.Report
	upErr      error
	downCalled bool
	downReport *swarm.Report
	downErr    error
}

func (f *fakeOrchestrator) Up(_ context.Context, topo swarm.Topology) (*swarm.Report, error) {
	f.upTopo = topo
	if f.upReport == nil {
		f.upReport = swarm.NewReport()
	}
	return f.upReport, f.upErr
}

func (f *fakeOrchestrator) Teardown(context.Context) (*swarm.Report, error) {
	f.downCalled = true
	if f.downReport == nil {
		f.downReport = swarm.NewReport()
	}
	return f.downReport, f.downErr
}

func useOrchestrator(t *testing.T, o *fakeOrchestrator) {
	t.Helper()
	orig := newOrchestrator
	newOrchestrator = func(*Backend, ...swarm.Option) Orchestrator { return o }
	t.Cleanup(func() { newOrchestrator = orig })
}

func failedReport() *swarm.Report {
	r := swarm.NewReport()
	r.Add(swarm.Outcome{Machine: "swarm-manager-0", Role: swarm.RoleManager, Step: swarm.StepCreate})
	r.Add(swarm.Outcome{Machine: "swarm-worker-1", Role: swarm.RoleWorker, Step: swarm.StepCreate, Err: errors.New("quota exceeded")})
	return r
}

func TestSwarmUp(t *testing.T) {
	requested := useConfig(t, testConfig(t))
	useTerminal(t, false)
	out := captureStdout(t)

	prepared := false
	b := fakeBackend(&fakeMachines{}, &fakeIngress{})
	b.Prepare = func(context.Context) error {
		prepared = true
		return nil
	}
	useBackend(t, b)

	orch := &fakeOrchestrator{}
	useOrchestrator(t, orch)

	err := SwarmUp(context.Background(), "swarmflow.yaml", UpOptions{Verify: true})
	require.NoError(t, err)

	assert.Equal(t, "swarmflow.yaml", *requested)
	assert.True(t, prepared)
	assert.Equal(t, []string{"swarm-manager-0", "swarm-worker-0", "swarm-worker-1"}, orch.upTopo.Names())
	assert.Contains(t, out.String(), "swarm up")
}

func TestSwarmUp_FailuresAreWarningsByDefault(t *testing.T) {
	useConfig(t, testConfig(t))
	useTerminal(t, false)
	out := captureStdout(t)
	useBackend(t, fakeBackend(&fakeMachines{}, &fakeIngress{}))
	useOrchestrator(t, &fakeOrchestrator{upReport: failedReport()})

	err := SwarmUp(context.Background(), "", UpOptions{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "quota exceeded")
}

func TestSwarmUp_Strict(t *testing.T) {
	useConfig(t, testConfig(t))
	useTerminal(t, false)
	captureStdout(t)
	useBackend(t, fakeBackend(&fakeMachines{}, &fakeIngress{}))
	useOrchestrator(t, &fakeOrchestrator{upReport: failedReport()})

	err := SwarmUp(context.Background(), "", UpOptions{Strict: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finished with failures")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSwarmUp_OrchestratorError(t *testing.T) {
	useConfig(t, testConfig(t))
	useTerminal(t, false)
	captureStdout(t)
	useBackend(t, fakeBackend(&fakeMachines{}, &fakeIngress{}))
	useOrchestrator(t, &fakeOrchestrator{upErr: swarm.ErrInitializerFailed})

	err := SwarmUp(context.Background(), "", UpOptions{})
	require.ErrorIs(t, err, swarm.ErrInitializerFailed)
}

func TestSwarmUp_PrepareError(t *testing.T) {
	useConfig(t, testConfig(t))
	useTerminal(t, false)
	b := fakeBackend(&fakeMachines{}, &fakeIngress{})
	b.Prepare = func(context.Context) error { return errBoom }
	useBackend(t, b)
	orch := &fakeOrchestrator{}
	useOrchestrator(t, orch)

	err := SwarmUp(context.Background(), "", UpOptions{})
	require.ErrorIs(t, err, errBoom)
	assert.Nil(t, orch.upTopo)
}

func TestSwarmUp_ConfigError(t *testing.T) {
	useConfigError(t, errBoom)

	err := SwarmUp(context.Background(), "", UpOptions{})
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "swarmflow.yaml")
}

func TestSwarmUp_BackendError(t *testing.T) {
	useConfig(t, testConfig(t))
	useTerminal(t, false)
	useBackendError(t, errBoom)

	require.ErrorIs(t, SwarmUp(context.Background(), "", UpOptions{}), errBoom)
}

func TestSwarmUp_MetricsFile(t *testing.T) {
	useConfig(t, testConfig(t))
	useTerminal(t, false)
	captureStdout(t)
	useBackend(t, fakeBackend(&fakeMachines{}, &fakeIngress{}))
	useOrchestrator(t, &fakeOrchestrator{})

	path := filepath.Join(t.TempDir(), "swarm.prom")
	require.NoError(t, SwarmUp(context.Background(), "", UpOptions{MetricsFile: path}))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestSwarmUp_Terminal(t *testing.T) {
	useConfig(t, testConfig(t))
	useTerminal(t, true)
	captureStdout(t)
	useBackend(t, fakeBackend(&fakeMachines{}, &fakeIngress{}))
	orch := &fakeOrchestrator{}
	useOrchestrator(t, orch)

	var model tui.Model
	orig := runTUI
	runTUI = func(ctx context.Context, m tui.Model, fn observedFunc) (*swarm.Report, error) {
		model = m
		return fn(ctx, swarm.NewConsoleObserver())
	}
	defer func() { runTUI = orig }()

	require.NoError(t, SwarmUp(context.Background(), "", UpOptions{Verify: true}))

	assert.Equal(t, tui.ModeUp, model.Mode)
	assert.Len(t, model.Machines, 3)
	assert.Len(t, model.Phases, 3)
	assert.NotNil(t, orch.upTopo)
}

func TestSwarmDown(t *testing.T) {
	useConfig(t, testConfig(t))
	useTerminal(t, false)
	out := captureStdout(t)

	cleaned := false
	b := fakeBackend(&fakeMachines{}, &fakeIngress{})
	b.Cleanup = func(context.Context) error {
		cleaned = true
		return errBoom
	}
	useBackend(t, b)

	report := swarm.NewReport()
	report.Add(swarm.Outcome{Machine: "swarm-manager-0", Step: swarm.StepDestroy})
	orch := &fakeOrchestrator{downReport: report}
	useOrchestrator(t, orch)

	require.NoError(t, SwarmDown(context.Background(), "", DownOptions{}))
	assert.True(t, orch.downCalled)
	assert.True(t, cleaned, "cleanup failures are only logged")
	assert.Contains(t, out.String(), "destroy 1/1")
}

func TestSwarmDown_ListError(t *testing.T) {
	useConfig(t, testConfig(t))
	useTerminal(t, false)
	captureStdout(t)

	cleaned := false
	b := fakeBackend(&fakeMachines{}, &fakeIngress{})
	b.Cleanup = func(context.Context) error {
		cleaned = true
		return nil
	}
	useBackend(t, b)
	useOrchestrator(t, &fakeOrchestrator{downErr: errBoom})

	require.ErrorIs(t, SwarmDown(context.Background(), "", DownOptions{}), errBoom)
	assert.False(t, cleaned)
}

func TestSwarmEnv(t *testing.T) {
	useConfig(t, testConfig(t))
	out := captureStdout(t)
	m := &fakeMachines{env: map[string]string{
		"DOCKER_TLS_VERIFY": "1",
		"DOCKER_HOST":       "tcp://35.1.2.3:2376",
	}}
	useBackend(t, fakeBackend(m, &fakeIngress{}))

	require.NoError(t, SwarmEnv(context.Background(), "", "", false))

	assert.Equal(t, "swarm-manager-0", m.envFor)
	assert.Equal(t, "export DOCKER_HOST=\"tcp://35.1.2.3:2376\"\nexport DOCKER_TLS_VERIFY=\"1\"\n", out.String())
}

func TestSwarmEnv_JSON(t *testing.T) {
	useConfig(t, testConfig(t))
	out := captureStdout(t)
	m := &fakeMachines{env: map[string]string{"DOCKER_HOST": "ssh://root@1.2.3.4"}}
	useBackend(t, fakeBackend(m, &fakeIngress{}))

	require.NoError(t, SwarmEnv(context.Background(), "", "swarm-worker-0", true))

	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "ssh://root@1.2.3.4", got["DOCKER_HOST"])
	assert.Equal(t, "swarm-worker-0", m.envFor)
}

func TestSwarmEnv_Error(t *testing.T) {
	useConfig(t, testConfig(t))
	captureStdout(t)
	useBackend(t, fakeBackend(&fakeMachines{envErr: errBoom}, &fakeIngress{}))

	err := SwarmEnv(context.Background(), "", "", false)
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "swarm-manager-0")
}
