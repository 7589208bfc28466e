package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"maps"
	"slices"

	"github.com/imamik/swarmflow/internal/config"
	"github.com/imamik/swarmflow/internal/swarm"
	"github.com/imamik/swarmflow/internal/ui/tui"
	"github.com/imamik/swarmflow/internal/util/naming"
)

// Orchestrator is the part of swarm.Orchestrator the handlers use.
type Orchestrator interface {
	Up(ctx context.Context, topo swarm.Topology) (*swarm.Report, error)
	Teardown(ctx context.Context) (*swarm.Report, error)
}

// UpOptions control swarm up.
type UpOptions struct {
	Verify      bool
	Strict      bool
	MetricsFile string
}

// DownOptions control swarm down.
type DownOptions struct {
	Strict      bool
	MetricsFile string
}

type observedFunc = func(ctx context.Context, obs swarm.Observer) (*swarm.Report, error)

var (
	// newOrchestrator creates the swarm orchestrator for a backend.
	newOrchestrator = func(b *Backend, opts ...swarm.Option) Orchestrator {
		return swarm.New(b.Provider, b.Executor, opts...)
	}

	// runTUI shows the live dashboard while fn runs.
	runTUI = func(ctx context.Context, m tui.Model, fn observedFunc) (*swarm.Report, error) {
		return tui.Run(ctx, m, fn)
	}
)

// SwarmUp creates the configured machines and joins them into a swarm.
//
// Failed machines are reported, not fatal. With strict set, a report with
// any failure makes the command fail.
func SwarmUp(ctx context.Context, configPath string, opts UpOptions) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	topo, err := swarm.NewTopology(cfg.Swarm.Managers, cfg.Swarm.Workers)
	if err != nil {
		return err
	}

	interactive := isTerminal()
	backend, err := newBackend(cfg, newRunner(interactive))
	if err != nil {
		return err
	}
	if backend.Prepare != nil {
		if err := backend.Prepare(ctx); err != nil {
			return fmt.Errorf("failed to prepare %s provider: %w", cfg.Swarm.Provider, err)
		}
	}

	log.Printf("[Swarm] Bringing up %s: %d managers, %d workers on %s",
		cfg.StackName, topo.Count(swarm.RoleManager), topo.Count(swarm.RoleWorker), cfg.Swarm.Provider)

	metrics := swarm.NewMetrics(cfg.StackName)
	nodeReady := config.LoadTimeouts().NodeReady
	report, err := observe(ctx, interactive, cfg.StackName, tui.NewUpModel(cfg.StackName, topo.Names(), opts.Verify),
		func(ctx context.Context, obs swarm.Observer) (*swarm.Report, error) {
			return newOrchestrator(backend,
				swarm.WithObserver(obs),
				swarm.WithMetrics(metrics),
				swarm.WithParallelism(cfg.Parallelism(len(topo))),
				swarm.WithVerify(opts.Verify),
				swarm.WithVerifyWait(nodeReady, swarm.DefaultVerifyDelay),
			).Up(ctx, topo)
		})

	return finish("swarm up", report, err, metrics, opts.Strict, opts.MetricsFile)
}

// SwarmDown destroys every swarm machine of the configured provider.
func SwarmDown(ctx context.Context, configPath string, opts DownOptions) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	interactive := isTerminal()
	backend, err := newBackend(cfg, newRunner(interactive))
	if err != nil {
		return err
	}

	log.Printf("[Swarm] Tearing down %s on %s", cfg.StackName, cfg.Swarm.Provider)

	metrics := swarm.NewMetrics(cfg.StackName)
	report, err := observe(ctx, interactive, cfg.StackName, tui.NewDownModel(cfg.StackName),
		func(ctx context.Context, obs swarm.Observer) (*swarm.Report, error) {
			return newOrchestrator(backend,
				swarm.WithObserver(obs),
				swarm.WithMetrics(metrics),
				swarm.WithParallelism(cfg.Swarm.Parallelism),
			).Teardown(ctx)
		})

	if err == nil && backend.Cleanup != nil {
		if cerr := backend.Cleanup(ctx); cerr != nil {
			log.Printf("[Swarm] Warning: cleanup failed: %v", cerr)
		}
	}

	return finish("swarm down", report, err, metrics, opts.Strict, opts.MetricsFile)
}

// SwarmEnv prints the Docker client environment of machine, as shell
// exports or as a JSON object.
func SwarmEnv(ctx context.Context, configPath, machine string, jsonOutput bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if machine == "" {
		machine = naming.Machine(naming.RoleManager, 0)
	}

	backend, err := newBackend(cfg, newRunner(true))
	if err != nil {
		return err
	}

	env, err := backend.Env.Env(ctx, machine)
	if err != nil {
		return fmt.Errorf("failed to read docker env of %s: %w", machine, err)
	}

	if jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	}
	for _, k := range slices.Sorted(maps.Keys(env)) {
		fmt.Fprintf(stdout, "export %s=%q\n", k, env[k])
	}
	return nil
}

// observe runs fn with the dashboard on a terminal and with the console
// observer otherwise. The standard logger is silenced while the dashboard
// owns the screen.
func observe(ctx context.Context, interactive bool, stack string, m tui.Model, fn observedFunc) (*swarm.Report, error) {
	if !interactive {
		obs := swarm.NewConsoleObserver().WithFields(map[string]string{"stack": stack})
		return fn(ctx, obs)
	}

	prev := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(prev)
	return runTUI(ctx, m, fn)
}

func finish(title string, report *swarm.Report, runErr error, metrics *swarm.Metrics, strict bool, metricsFile string) error {
	if report != nil {
		fmt.Fprint(stdout, tui.RenderReport(title, report))
	}

	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		log.Printf("[Swarm] Metrics written to %s", metricsFile)
	}

	if runErr != nil {
		return fmt.Errorf("%s failed: %w", title, runErr)
	}
	if strict && report != nil && !report.Healthy() {
		return fmt.Errorf("%s finished with failures: %w", title, report.Err())
	}
	return nil
}
