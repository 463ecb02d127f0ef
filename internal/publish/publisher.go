package publish

import (
	"context"
	"errors"

	"github.com/specialistvlad/opgraph/internal/ctxlog"
)

// Publisher delivers a run's payload.
type Publisher interface {
	Publish(ctx context.Context, p Payload) error
}

// LogPublisher writes a summary of the payload to the context logger.
type LogPublisher struct{}

// Publish logs one line per operation and one per intent.
func (LogPublisher) Publish(ctx context.Context, p Payload) error {
	logger := ctxlog.FromContext(ctx).With("workflow", p.Workflow)
	for _, op := range p.Operations {
		attrs := []any{"operation", op.Label, "type", op.Type, "status", op.Status}
		if op.Outputs != nil {
			attrs = append(attrs, "outputs", op.Outputs)
		}
		if op.Error != "" {
			attrs = append(attrs, "error", op.Error)
		}
		logger.Info("Operation result.", attrs...)
	}
	for _, in := range p.Intents {
		logger.Info("Intent materialized.", "kind", in.Kind, "name", in.Name, "operation", in.Operation)
	}
	logger.Info("Run result.", "status", p.Status, "operations", len(p.Operations), "intents", len(p.Intents))
	return nil
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

// Publish never stops early; every publisher gets the payload.
func (m Multi) Publish(ctx context.Context, p Payload) error {
	var errs []error
	for _, pub := range m {
		errs = append(errs, pub.Publish(ctx, p))
	}
	return errors.Join(errs...)
}
