// Package main is the entry point for the swarmflow CLI.
//
// swarmflow brings up a Docker Swarm on Google Cloud or Hetzner Cloud,
// deploys an Airflow stack onto it and manages the secrets, certificates
// and DAG modules around it.
//
// Commands: swarm, deploy, ingress, encrypt, secrets, new-dag, doctor.
//
// For detailed usage information, run:
//
//	swarmflow --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/swarmflow/cmd/swarmflow/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
