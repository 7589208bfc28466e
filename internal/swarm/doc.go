// Package swarm brings a Docker Swarm cluster up and tears it down.
//
// An [Orchestrator] drives a [Provider] (machine API) and an [Executor]
// (remote command runner) through two ordered phases:
//
//   - ParallelProvision creates every machine of the [Topology] on a bounded
//     pool. Failures are recorded and never stop sibling creations.
//   - SequentialAssemble initializes the swarm on swarm-manager-0 and then
//     joins the remaining managers and the workers one by one, in topology
//     order, using role-scoped join tokens from a [TokenProvider].
//
// An optional verify phase lists the swarm nodes on the initializer and
// checks that every joined machine is Ready. Every step produces an
// [Outcome]; the aggregated [Report] tells a healthy swarm from a partial one.
//
// Providers live in internal/platform; this package only knows the
// interfaces.
package swarm
