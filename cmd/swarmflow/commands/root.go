// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the swarmflow CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swarmflow",
		Short: "Run Airflow on a Docker Swarm",
		Long: `swarmflow creates a Docker Swarm on Google Cloud (docker-machine) or
Hetzner Cloud, deploys the Airflow stack onto it and manages the secrets,
certificates and DAGs that go with it.

Settings are read from swarmflow.yaml in the working directory or any parent.`,
		SilenceUsage: true,
	}

	// Cluster lifecycle
	cmd.AddCommand(Swarm())
	cmd.AddCommand(Ingress())
	cmd.AddCommand(Connect())

	// Stack lifecycle
	cmd.AddCommand(Deploy())
	cmd.AddCommand(Undeploy())
	cmd.AddCommand(Status())
	cmd.AddCommand(Rebuild())

	// Secrets and scaffolding
	cmd.AddCommand(Bootstrap())
	cmd.AddCommand(Encrypt())
	cmd.AddCommand(EncryptFiles())
	cmd.AddCommand(Secrets())
	cmd.AddCommand(GenCert())
	cmd.AddCommand(NewDag())

	// Utility
	cmd.AddCommand(Doctor())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// addConfigFlag binds the --config flag shared by every command that reads
// swarmflow.yaml.
func addConfigFlag(cmd *cobra.Command, configPath *string) {
	cmd.Flags().StringVarP(configPath, "config", "c", "", "Path to configuration file (default: swarmflow.yaml)")
}
