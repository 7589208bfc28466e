// Package prerequisites checks that the client tools a command shells out
// to are on PATH.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/imamik/swarmflow/internal/config"
)

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string
}

var (
	docker = Tool{
		Name:        "docker",
		Required:    true,
		Description: "Deploys the stack and talks to the swarm",
		InstallURL:  "https://docs.docker.com/get-docker/",
	}
	dockerCompose = Tool{
		Name:        "docker-compose",
		Required:    true,
		Description: "Builds, pushes and runs the stack locally",
		InstallURL:  "https://docs.docker.com/compose/install/",
	}
	dockerMachine = Tool{
		Name:        "docker-machine",
		Required:    true,
		Description: "Creates and reaches the swarm machines on Google Cloud",
		InstallURL:  "https://github.com/docker/machine/releases",
	}
	gcloud = Tool{
		Name:        "gcloud",
		Required:    true,
		Description: "Resolves private addresses, manages firewall rules and encrypts secrets",
		InstallURL:  "https://cloud.google.com/sdk/docs/install",
	}
	ngrok = Tool{
		Name:        "ngrok",
		Required:    false,
		Description: "Tunnels a local deployment (deploy --ngrok)",
		InstallURL:  "https://ngrok.com/download",
	}
)

// ToolsFor returns the tools needed with provider. gcloud stays required on
// Hetzner because secrets are encrypted with Cloud KMS.
func ToolsFor(provider string) []Tool {
	tools := []Tool{docker, dockerCompose}
	switch provider {
	case config.ProviderHCloud:
		g := gcloud
		g.Required = false
		g.Description = "Encrypts secrets with Cloud KMS (encrypt, encrypt-files)"
		tools = append(tools, g)
	default:
		tools = append(tools, dockerMachine, gcloud)
	}
	return append(tools, ngrok)
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := exec.LookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			result.Version = getToolVersion(tool.Name)
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// CheckFor checks the tools needed with provider.
func CheckFor(provider string) *CheckResults {
	return Check(ToolsFor(provider))
}

// getToolVersion returns the first line of the tool's version output, or
// "" if none of the usual flags work.
func getToolVersion(name string) string {
	for _, flag := range []string{"--version", "version", "-v"} {
		// #nosec G204 - name comes from the tool table above
		output, err := exec.Command(name, flag).Output()
		if err == nil {
			line, _, _ := strings.Cut(string(output), "\n")
			return strings.TrimSpace(line)
		}
	}
	return ""
}
