package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/swarmflow/cmd/swarmflow/handlers"
	"github.com/imamik/swarmflow/internal/dag"
)

// NewDag returns the command that scaffolds a DAG module.
//
// Values not given as flags are asked for on a terminal and defaulted
// otherwise.
func NewDag() *cobra.Command {
	var configPath string
	var params dag.Params
	var force bool

	cmd := &cobra.Command{
		Use:   "new-dag",
		Short: "Create a new DAG module",
		Long: `Create a DAG module in dag.dir.

The file is named after the DAG id without its version suffix, so
example_dag_v1_p3 is written to example_dag.py.

Examples:
  swarmflow new-dag
  swarmflow new-dag --dag-id ingest_v1_p2 --owner data --start-date 2026-01-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.NewDag(cmd.Context(), configPath, params, force)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&params.DagID, "dag-id", "", "DAG id (default: "+dag.DefaultDagID+")")
	cmd.Flags().StringVar(&params.Owner, "owner", "", "Owner (default: dag.owner)")
	cmd.Flags().StringVar(&params.Email, "email", "", "Alert email (default: dag.email)")
	cmd.Flags().StringVar(&params.StartDate, "start-date", "", "Start date as YYYY-MM-DD (default: yesterday)")
	cmd.Flags().StringVar(&params.ScheduleInterval, "schedule-interval", "", "Cron schedule (default: dag.schedule_interval)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing module")

	return cmd
}

// Connect returns the command that opens the web UI.
func Connect() *cobra.Command {
	var configPath string
	var opts handlers.ConnectOptions

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Open the web UI served by the swarm",
		Long: `Open http://<public ip of swarm-manager-0> in the browser.

With --check the health endpoint is probed instead and the command fails
when it does not answer with a success status.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Connect(cmd.Context(), configPath, opts)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&opts.Check, "check", false, "Probe "+handlers.HealthPath+" instead of opening a browser")
	cmd.Flags().StringVar(&opts.Username, "user", "", "Basic auth user for --check")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Basic auth password for --check")

	return cmd
}

// Doctor returns the command that checks the local toolchain.
func Doctor() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the required tools are installed",
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Doctor(configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
