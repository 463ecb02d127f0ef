package localexecutor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/specialistvlad/opgraph/internal/builder"
	"github.com/specialistvlad/opgraph/internal/executor"
	"github.com/specialistvlad/opgraph/internal/graph"
	"github.com/specialistvlad/opgraph/internal/inmemorystore"
	"github.com/specialistvlad/opgraph/internal/nodestore"
	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// stepType builds a one-in, one-out operation type whose body is fn.
func stepType(name string, fn func(ctx context.Context, n float64) (any, error)) *operation.Type {
	return operation.MustDefine(operation.Descriptor{
		Name:    name,
		Inputs:  []operation.InputSpec{operation.InDefault("n", cty.Number, 0)},
		Outputs: []string{"n"},
	}, func(ctx context.Context, in, _ operation.Values) ([]any, error) {
		n, err := in.Float("n")
		if err != nil {
			return nil, err
		}
		v, err := fn(ctx, n)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	})
}

var increment = stepType("increment", func(_ context.Context, n float64) (any, error) { return n + 1, nil })

var errBoom = errors.New("boom")

var failing = stepType("failing", func(context.Context, float64) (any, error) { return nil, errBoom })

type harness struct {
	g     *graph.Graph
	store *inmemorystore.Store
}

func newHarness() *harness {
	return &harness{g: graph.New(), store: inmemorystore.New()}
}

func (h *harness) add(t *testing.T, typ *operation.Type, label string) *operation.Operation {
	t.Helper()
	op := typ.New(operation.WithLabel(label))
	require.NoError(t, h.g.AddOperation(op))
	return op
}

func (h *harness) link(t *testing.T, src, dst *operation.Operation) {
	t.Helper()
	_, err := h.g.AddLink(src, "n", dst, "n")
	require.NoError(t, err)
}

func (h *harness) run(t *testing.T, ctx context.Context, cfg executor.Config) *executor.Report {
	t.Helper()
	order, err := h.g.TopologicalOrder()
	require.NoError(t, err)
	sch, err := scheduler.New(h.g, order)
	require.NoError(t, err)
	exec := New(sch, builder.New(h.g, h.store), h.store, len(order), cfg)
	return exec.Execute(ctx)
}

func (h *harness) status(t *testing.T, op *operation.Operation) nodestore.Status {
	t.Helper()
	s, err := h.store.GetStatus(context.Background(), op.ID())
	require.NoError(t, err)
	return s
}

func (h *harness) output(t *testing.T, op *operation.Operation) operation.Values {
	t.Helper()
	out, _, err := h.store.GetOutput(context.Background(), op.ID())
	require.NoError(t, err)
	return out
}

func TestExecute_Chain(t *testing.T) {
	h := newHarness()
	a := h.add(t, increment, "a")
	b := h.add(t, increment, "b")
	c := h.add(t, increment, "c")
	h.link(t, a, b)
	h.link(t, b, c)

	report := h.run(t, context.Background(), executor.Config{})

	assert.Empty(t, report.Failures)
	assert.False(t, report.Halted)
	assert.False(t, report.Cancelled)
	assert.Equal(t, []*operation.Operation{a, b, c}, report.Executed)
	assert.Equal(t, operation.Values{"n": 3.0}, h.output(t, c))

	inputs, err := h.store.GetInputs(context.Background(), c.ID())
	require.NoError(t, err)
	assert.Equal(t, operation.Values{"n": 2.0}, inputs)
}

func TestExecute_FailurePolicies(t *testing.T) {
	testCases := []struct {
		name            string
		policy          executor.FailurePolicy
		wantIndependent nodestore.Status
		wantHalted      bool
	}{
		{name: "halt on failure", policy: executor.HaltOnFailure, wantIndependent: nodestore.StatusSkipped, wantHalted: true},
		{name: "continue independent", policy: executor.ContinueIndependent, wantIndependent: nodestore.StatusCompleted},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			first := h.add(t, increment, "first")
			bad := h.add(t, failing, "bad")
			downstream := h.add(t, increment, "downstream")
			independent := h.add(t, increment, "independent")
			h.link(t, first, bad)
			h.link(t, bad, downstream)

			report := h.run(t, context.Background(), executor.Config{Policy: tc.policy})

			require.Len(t, report.Failures, 1)
			assert.Same(t, bad, report.Failures[0].Operation)
			assert.ErrorIs(t, report.Failures[0].Err, errBoom)
			assert.Equal(t, tc.wantHalted, report.Halted)

			assert.Equal(t, nodestore.StatusCompleted, h.status(t, first))
			assert.Equal(t, operation.Values{"n": 1.0}, h.output(t, first), "upstream outputs survive the failure")
			assert.Equal(t, nodestore.StatusFailed, h.status(t, bad))
			assert.Equal(t, nodestore.StatusSkipped, h.status(t, downstream))
			assert.Equal(t, tc.wantIndependent, h.status(t, independent))

			skipErr, err := h.store.GetError(context.Background(), downstream.ID())
			require.NoError(t, err)
			var skipped *executor.SkippedError
			require.ErrorAs(t, skipErr, &skipped)
			assert.Same(t, bad, skipped.Cause)
			assert.NotContains(t, report.Executed, downstream)
		})
	}
}

func TestExecute_ContractViolationAlwaysHalts(t *testing.T) {
	h := newHarness()
	broken := operation.MustDefine(operation.Descriptor{Name: "broken", Outputs: []string{"a", "b"}},
		func(context.Context, operation.Values, operation.Values) ([]any, error) { return []any{1}, nil })
	bad := h.add(t, broken, "bad")
	later := h.add(t, increment, "later")

	report := h.run(t, context.Background(), executor.Config{Policy: executor.ContinueIndependent})

	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0].Err, operation.ErrContractViolation)
	assert.True(t, report.Halted)
	assert.Equal(t, nodestore.StatusSkipped, h.status(t, later))
	assert.Equal(t, nodestore.StatusFailed, h.status(t, bad))
}

func TestExecute_Timeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	stuck := stepType("stuck", func(context.Context, float64) (any, error) {
		<-release
		return 0, nil
	})

	h := newHarness()
	op := h.add(t, stuck, "stuck")
	after := h.add(t, increment, "after")
	h.link(t, op, after)

	start := time.Now()
	report := h.run(t, context.Background(), executor.Config{Timeout: 20 * time.Millisecond})

	assert.Less(t, time.Since(start), 2*time.Second, "a timeout must not hang the run")
	require.Len(t, report.Failures, 1)
	var timeoutErr *executor.TimeoutError
	require.ErrorAs(t, report.Failures[0].Err, &timeoutErr)
	assert.Same(t, op, timeoutErr.Op)
	assert.Equal(t, nodestore.StatusSkipped, h.status(t, after))
}

func TestExecute_TimeoutHonouredByCooperativeOperation(t *testing.T) {
	cooperative := stepType("cooperative", func(ctx context.Context, _ float64) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	h := newHarness()
	h.add(t, cooperative, "coop")

	report := h.run(t, context.Background(), executor.Config{Timeout: 10 * time.Millisecond})

	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0].Err, executor.ErrTimeout)
}

func TestExecute_CancellationBetweenInvocations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cancelling := stepType("cancelling", func(context.Context, float64) (any, error) {
		cancel()
		return 42.0, nil
	})

	h := newHarness()
	first := h.add(t, cancelling, "first")
	second := h.add(t, increment, "second")
	third := h.add(t, increment, "third")
	h.link(t, first, third)

	report := h.run(t, ctx, executor.Config{})

	assert.True(t, report.Cancelled)
	assert.Equal(t, []*operation.Operation{first}, report.Executed)
	assert.Equal(t, nodestore.StatusCompleted, h.status(t, first), "the in-flight invocation runs to completion")
	assert.Equal(t, operation.Values{"n": 42.0}, h.output(t, first))
	assert.Equal(t, nodestore.StatusCancelled, h.status(t, second))
	assert.Equal(t, nodestore.StatusCancelled, h.status(t, third))

	cancelErr, err := h.store.GetError(context.Background(), second.ID())
	require.NoError(t, err)
	assert.ErrorIs(t, cancelErr, context.Canceled)
	assert.ErrorIs(t, cancelErr, executor.ErrCancelled)
}

func TestExecute_IndependentOperationsRunConcurrently(t *testing.T) {
	const n = 4
	var arrived sync.WaitGroup
	arrived.Add(n)
	allHere := make(chan struct{})
	go func() {
		arrived.Wait()
		close(allHere)
	}()

	var running, peak atomic.Int32
	barrier := stepType("barrier", func(context.Context, float64) (any, error) {
		cur := running.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		defer running.Add(-1)
		arrived.Done()
		select {
		case <-allHere:
			return 1.0, nil
		case <-time.After(2 * time.Second):
			return nil, errors.New("operations were not run concurrently")
		}
	})

	h := newHarness()
	for _, label := range []string{"w", "x", "y", "z"} {
		h.add(t, barrier, label)
	}

	report := h.run(t, context.Background(), executor.Config{Workers: n})

	assert.Empty(t, report.Failures)
	assert.Equal(t, int32(n), peak.Load())
	assert.Len(t, report.Executed, n)
}

func TestExecute_WorkersBoundInflight(t *testing.T) {
	var running, peak atomic.Int32
	slow := stepType("slow", func(context.Context, float64) (any, error) {
		cur := running.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return 0.0, nil
	})

	h := newHarness()
	for _, label := range []string{"a", "b", "c", "d", "e", "f"} {
		h.add(t, slow, label)
	}

	report := h.run(t, context.Background(), executor.Config{Workers: 2})

	assert.Empty(t, report.Failures)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}
