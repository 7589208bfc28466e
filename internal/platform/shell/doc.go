// Package shell runs local commands through /bin/sh.
//
// [ExecRunner] captures stdout and stderr while optionally echoing them to
// the terminal, returns an [*ExitError] for non-zero exits, and supports a
// warn mode in which a non-zero exit is logged instead of returned. The
// docker-machine, gcloud and deploy packages build on it.
package shell
