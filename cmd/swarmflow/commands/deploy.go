package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/swarmflow/cmd/swarmflow/handlers"
	"github.com/imamik/swarmflow/internal/deploy"
)

// Deploy returns the command that starts the stack.
func Deploy() *cobra.Command {
	var configPath string
	var opts deploy.Options

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the stack locally or to the swarm",
		Long: `Deploy the stack.

Without flags the stack runs in the foreground with docker-compose up.

  --stack  deploys with docker stack deploy to the local engine
  --prod   builds, pushes and deploys to the swarm through swarm-manager-0
  --ngrok  runs the stack in the background and tunnels port 8080 with ngrok

Examples:
  swarmflow deploy --rebuild
  swarmflow deploy --prod`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), configPath, opts)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&opts.Rebuild, "rebuild", false, "Build and push images first")
	cmd.Flags().BoolVar(&opts.Stack, "stack", false, "Deploy with docker stack deploy")
	cmd.Flags().BoolVar(&opts.Prod, "prod", false, "Deploy to the swarm")
	cmd.Flags().BoolVar(&opts.Ngrok, "ngrok", false, "Expose a local deployment through ngrok")
	cmd.MarkFlagsMutuallyExclusive("prod", "ngrok")

	return cmd
}

// Undeploy returns the command that removes the stack.
func Undeploy() *cobra.Command {
	var configPath string
	var prod bool

	cmd := &cobra.Command{
		Use:   "undeploy",
		Short: "Remove the stack",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Undeploy(cmd.Context(), configPath, prod)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&prod, "prod", false, "Remove the stack from the swarm")

	return cmd
}

// Status returns the command that lists the running services.
func Status() *cobra.Command {
	var configPath string
	var prod bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List the running services",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), configPath, prod)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&prod, "prod", false, "List the services of the swarm")

	return cmd
}

// Rebuild returns the command that builds and pushes the images.
func Rebuild() *cobra.Command {
	var configPath string
	var prod bool

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Build and push the stack images",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Rebuild(cmd.Context(), configPath, prod)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&prod, "prod", false, "Build against the swarm's Docker engine")

	return cmd
}
