package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/swarmflow/cmd/swarmflow/handlers"
)

// Ingress returns the parent command for the swarm's firewall rule.
func Ingress() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingress",
		Short: "Open or close the swarm's public ports",
	}

	cmd.AddCommand(IngressAdd())
	cmd.AddCommand(IngressRemove())

	return cmd
}

// IngressAdd returns the command that opens ports to the swarm machines.
func IngressAdd() *cobra.Command {
	var configPath, name, rules, service string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Allow ingress into the swarm",
		Long: `Create a firewall rule that lets traffic reach the swarm machines.

On gcp this is a VPC firewall rule for instances tagged docker-machine.
On hcloud it is a firewall applied to every server of the stack.

Example:
  swarmflow ingress add --rules tcp:80,tcp:443 --service reverse-proxy`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.IngressAdd(cmd.Context(), configPath, name, rules, service)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&name, "name", "", "Rule name (default: <stack>-ingress)")
	cmd.Flags().StringVar(&rules, "rules", handlers.DefaultIngressRules, "Comma-separated protocol:port list")
	cmd.Flags().StringVar(&service, "service", "reverse-proxy", "Service the rule is for")

	return cmd
}

// IngressRemove returns the command that deletes the firewall rule.
func IngressRemove() *cobra.Command {
	var configPath, name string

	cmd := &cobra.Command{
		Use:     "rm",
		Aliases: []string{"remove"},
		Short:   "Remove the ingress rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.IngressRemove(cmd.Context(), configPath, name)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&name, "name", "", "Rule name (default: <stack>-ingress)")

	return cmd
}
