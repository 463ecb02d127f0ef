package localexecutor

import (
	"context"

	"github.com/specialistvlad/opgraph/internal/executor"
	"github.com/specialistvlad/opgraph/internal/task"
)

// invoke runs one task, enforcing the per-invocation timeout. Operations
// are opaque: when the run context is cancelled the invocation is waited
// for, but when the timeout expires it is abandoned and its eventual result
// dropped.
func (e *Executor) invoke(ctx context.Context, t *task.Task) outcome {
	op := t.Operation
	if e.cfg.Timeout <= 0 {
		out, err := op.Invoke(ctx, t.Inputs, t.Params)
		return outcome{op: op, outputs: out, err: err}
	}

	ictx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		out, err := op.Invoke(ictx, t.Inputs, t.Params)
		done <- outcome{op: op, outputs: out, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() == nil && ictx.Err() != nil {
			return outcome{op: op, err: &executor.TimeoutError{Op: op, Timeout: e.cfg.Timeout}}
		}
		return res
	case <-ictx.Done():
		if ctx.Err() == nil {
			return outcome{op: op, err: &executor.TimeoutError{Op: op, Timeout: e.cfg.Timeout}}
		}
		return <-done
	}
}
