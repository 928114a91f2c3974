package command

import "context"

// Executor runs batches of commands one after another
type Executor struct {
	runner Runner
}

// NewExecutor creates a new command executor with the given runner
func NewExecutor(runner Runner) *Executor {
	return &Executor{
		runner: runner,
	}
}

// Execute runs the given commands in sequence, awaiting each one before
// launching the next, and stops at the first command that does not succeed.
// It blocks the calling goroutine.
func (e *Executor) Execute(ctx context.Context, specs []Spec) *ExecutionResult {
	result := &ExecutionResult{
		Results: make([]Result, 0, len(specs)),
	}

	for i, spec := range specs {
		res := e.runner.Execute(ctx, spec).Wait()
		result.Results = append(result.Results, res)

		if !res.Success() {
			result.Stopped = i < len(specs)-1
			break
		}
	}

	return result
}
