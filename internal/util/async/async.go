package async

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// Result is the outcome of a single task.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Collect executes tasks on a pool of at most limit goroutines and waits for
// all of them. A limit <= 0 runs every task at once. Results are returned in
// the order of tasks regardless of completion order. A failing task never
// cancels its siblings.
func Collect(ctx context.Context, tasks []Task, limit int) []Result {
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, task := range tasks {
		g.Go(func() error {
			start := time.Now()
			err := task.Func(ctx)
			results[i] = Result{Name: task.Name, Err: err, Duration: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// RunParallel executes all tasks concurrently and waits for them to finish.
// Every failure is returned, joined, with the task name attached.
//
// Example:
//
//	tasks := []Task{
//	    {Name: "env.enc", Func: uploadEnv},
//	    {Name: "key.key.enc", Func: uploadKey},
//	}
//	if err := RunParallel(ctx, tasks, 4); err != nil {
//	    return err
//	}
func RunParallel(ctx context.Context, tasks []Task, limit int) error {
	var errs []error
	for _, res := range Collect(ctx, tasks, limit) {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
		}
	}
	return errors.Join(errs...)
}
