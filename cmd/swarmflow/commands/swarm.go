package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/swarmflow/cmd/swarmflow/handlers"
)

// Swarm returns the parent command for machine and swarm lifecycle.
func Swarm() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swarm",
		Short: "Create, inspect and destroy the Docker Swarm",
	}

	cmd.AddCommand(SwarmUp())
	cmd.AddCommand(SwarmDown())
	cmd.AddCommand(SwarmEnv())
	cmd.AddCommand(SwarmCost())

	return cmd
}

// SwarmUp returns the command that brings the swarm up.
//
// Machines are created in parallel, then swarm-manager-0 initializes the
// swarm and every other machine joins it in order. Machines that fail are
// reported and skipped; the command succeeds unless --strict is set.
func SwarmUp() *cobra.Command {
	var configPath string
	var opts handlers.UpOptions

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Create the machines and join them into a swarm",
		Long: `Create swarm.managers manager and swarm.workers worker machines, then
initialize the swarm on swarm-manager-0 and join the remaining machines.

Creation runs in parallel (swarm.parallelism bounds it). Joining runs in
order: managers first, then workers. A machine that cannot be created or
joined is reported as a warning and the rest continue.

Examples:
  # Bring up the swarm described in swarmflow.yaml
  swarmflow swarm up

  # Fail when any machine did not make it, and export metrics
  swarmflow swarm up --strict --metrics-file /var/lib/node_exporter/swarmflow.prom`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SwarmUp(cmd.Context(), configPath, opts)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&opts.Verify, "verify", true, "Check node membership after joining")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit non-zero when any machine failed")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file (textfile collector format)")

	return cmd
}

// SwarmDown returns the command that destroys every swarm machine.
func SwarmDown() *cobra.Command {
	var configPath string
	var opts handlers.DownOptions

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Destroy every swarm machine",
		Long: `Destroy every machine named swarm-manager-* or swarm-worker-* in parallel.
Other machines of the provider are left alone.

WARNING: This operation is irreversible.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SwarmDown(cmd.Context(), configPath, opts)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit non-zero when any machine could not be destroyed")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file (textfile collector format)")

	return cmd
}

// SwarmEnv returns the command printing a machine's Docker environment.
func SwarmEnv() *cobra.Command {
	var configPath string
	var machine string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print the Docker environment of a swarm machine",
		Long: `Print the environment variables that point the docker CLI at a swarm
machine.

Example:
  eval "$(swarmflow swarm env)"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SwarmEnv(cmd.Context(), configPath, machine, jsonOutput)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&machine, "machine", "swarm-manager-0", "Machine to print the environment of")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

// SwarmCost returns the command estimating the monthly cost of the swarm.
func SwarmCost() *cobra.Command {
	var configPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Estimate the monthly cost of the swarm (hcloud)",
		Long: `Estimate the monthly Hetzner Cloud cost of swarm.managers plus
swarm.workers servers of hcloud.server_type in hcloud.location.

Prices are fetched from the Hetzner API when HCLOUD_TOKEN is set and fall
back to a built-in list otherwise.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Cost(cmd.Context(), configPath, jsonOutput)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
