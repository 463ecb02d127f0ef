package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/specialistvlad/opgraph/internal/ctxlog"
	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/portref"
	"github.com/specialistvlad/opgraph/internal/publish"
	"github.com/specialistvlad/opgraph/internal/snapshot"
	"github.com/specialistvlad/opgraph/internal/workflow"
)

// Run loads the workflow, applies overrides, runs it once, and hands the
// result to the publishers and, if configured, to a snapshot file.
// Publication happens for failed and cancelled runs too.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer func() {
		if err := a.closeHealthCheckServer(); err != nil {
			a.logger.Error("Failed to close health check server.", "error", err)
		}
	}()

	a.setPhase("loading")
	wf, err := a.loader.Load(ctx, a.config.WorkflowPath)
	if err != nil {
		return fmt.Errorf("failed to load workflow: %w", err)
	}
	a.logger.Info("Workflow loaded.", "workflow", wf.Name(), "operations", wf.Len(), "links", len(wf.Links()))

	if err := a.applyOverrides(ctx, wf); err != nil {
		return err
	}

	a.setPhase("running")
	res, runErr := wf.Run(ctx, a.runOptions()...)
	if runErr != nil {
		runErr = fmt.Errorf("execution failed: %w", runErr)
	}

	a.setPhase("publishing")
	var errs []error
	errs = append(errs, runErr)
	if err := a.publisher.Publish(ctx, publish.NewPayload(wf.Name(), res)); err != nil {
		a.logger.Error("Failed to publish result.", "error", err)
		errs = append(errs, fmt.Errorf("failed to publish result: %w", err))
	}
	if a.config.SnapshotOut != "" {
		if err := a.writeSnapshot(wf); err != nil {
			a.logger.Error("Failed to write snapshot.", "path", a.config.SnapshotOut, "error", err)
			errs = append(errs, err)
		}
	}

	a.setPhase("done")
	a.logger.Debug("App.Run method finished.")
	return errors.Join(errs...)
}

func (a *App) runOptions() []workflow.RunOption {
	policy := workflow.HaltOnFailure
	if a.config.ContinueOnFailure {
		policy = workflow.ContinueIndependent
	}
	return []workflow.RunOption{
		workflow.WithWorkers(a.config.Workers),
		workflow.WithTimeout(a.config.Timeout),
		workflow.WithFailurePolicy(policy),
	}
}

// applyOverrides pins every -set value on its input, converted to the
// input's declared type.
func (a *App) applyOverrides(ctx context.Context, wf *workflow.Workflow) error {
	logger := ctxlog.FromContext(ctx)
	for _, raw := range a.config.Sets {
		asg, err := portref.ParseAssignment(raw)
		if err != nil {
			return fmt.Errorf("invalid override: %w", err)
		}
		op, err := asg.Ref.Resolve(wf.Graph)
		if err != nil {
			return fmt.Errorf("invalid override %s: %w", asg.Ref, err)
		}
		spec, ok := op.Input(asg.Ref.Port)
		if !ok {
			return fmt.Errorf("invalid override %s: %w", asg.Ref,
				&operation.UnknownPortError{Op: op, Port: asg.Ref.Port, Direction: operation.DirInput})
		}
		v, err := a.converter.ParseValue(asg.Value, spec.Type)
		if err != nil {
			return fmt.Errorf("invalid override %s: %w", asg.Ref, err)
		}
		if err := op.Fill(asg.Ref.Port, v); err != nil {
			return fmt.Errorf("invalid override %s: %w", asg.Ref, err)
		}
		logger.Info("Input overridden.", "operation", op.String(), "input", asg.Ref.Port, "value", v)
	}
	return nil
}

func (a *App) writeSnapshot(wf *workflow.Workflow) (err error) {
	snap, err := snapshot.Capture(wf)
	if err != nil {
		return fmt.Errorf("failed to capture snapshot: %w", err)
	}
	f, err := os.Create(a.config.SnapshotOut)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close snapshot file: %w", cerr)
		}
	}()

	var opts []snapshot.EncodeOption
	if a.config.SnapshotCompress {
		opts = append(opts, snapshot.WithZstd())
	}
	if err := snapshot.Encode(f, snap, opts...); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	a.logger.Info("Snapshot written.", "path", a.config.SnapshotOut, "compressed", a.config.SnapshotCompress)
	return nil
}
