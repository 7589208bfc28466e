// Package async provides utilities for parallel task execution with
// result collection.
//
// [Collect] runs tasks on a bounded pool and returns one [Result] per task,
// in task order, so callers can build reports instead of stopping at the
// first failure. [RunParallel] is the fail-summary variant.
package async
