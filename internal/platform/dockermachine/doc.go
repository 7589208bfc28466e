// Package dockermachine provisions swarm machines on Google Compute Engine
// through the docker-machine CLI and its google driver.
//
// [Client] implements both swarm.Provider and swarm.Executor: machines are
// created and removed with docker-machine, internal addresses come from
// gcloud, and remote commands run through docker-machine ssh.
package dockermachine
