package workflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/opgraph/internal/executor"
	"github.com/specialistvlad/opgraph/internal/graph"
	"github.com/specialistvlad/opgraph/internal/intent"
	"github.com/specialistvlad/opgraph/internal/nodestore"
	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// counter records how often the test operation types were invoked.
type counter struct{ n atomic.Int32 }

func (c *counter) wrap(fn operation.Func) operation.Func {
	return func(ctx context.Context, in, params operation.Values) ([]any, error) {
		c.n.Add(1)
		return fn(ctx, in, params)
	}
}

type types struct {
	calls    *counter
	constant *operation.Type
	square   *operation.Type
	sum      *operation.Type
	plot     *operation.Type
	bare     *operation.Type
	fail     *operation.Type
}

var errBoom = errors.New("boom")

func newTypes() *types {
	c := &counter{}
	plotFn := c.wrap(func(context.Context, operation.Values, operation.Values) ([]any, error) {
		return []any{[]float64{1, 2, 3}, []float64{2, 4, 6}}, nil
	})
	return &types{
		calls: c,
		constant: operation.MustDefine(operation.Descriptor{
			Name:       "constant",
			Outputs:    []string{"n"},
			Parameters: []operation.ParameterSpec{{Name: "value", Type: cty.Number, Default: 0.0}},
		}, c.wrap(func(_ context.Context, _, params operation.Values) ([]any, error) {
			v, err := params.Float("value")
			return []any{v}, err
		})),
		square: operation.MustDefine(operation.Descriptor{
			Name:    "square",
			Inputs:  []operation.InputSpec{operation.InDefault("n", cty.Number, 0.0)},
			Outputs: []string{"square"},
		}, c.wrap(func(_ context.Context, in, _ operation.Values) ([]any, error) {
			n, err := in.Float("n")
			return []any{n * n}, err
		})),
		sum: operation.MustDefine(operation.Descriptor{
			Name:    "sum",
			Inputs:  []operation.InputSpec{operation.In("n1", cty.Number), operation.In("n2", cty.Number)},
			Outputs: []string{"sum"},
		}, c.wrap(func(_ context.Context, in, _ operation.Values) ([]any, error) {
			a, err := in.Float("n1")
			if err != nil {
				return nil, err
			}
			b, err := in.Float("n2")
			return []any{a + b}, err
		})),
		plot: operation.MustDefine(operation.Descriptor{
			Name:    "plot",
			Outputs: []string{"x", "y"},
			Intents: []intent.Template{intent.Plot("Example Plot", map[string]string{"x": "x", "y": "y"})},
		}, plotFn),
		bare: operation.MustDefine(operation.Descriptor{
			Name:    "plot",
			Outputs: []string{"x", "y"},
		}, plotFn),
		fail: operation.MustDefine(operation.Descriptor{
			Name:    "fail",
			Inputs:  []operation.InputSpec{operation.InDefault("n", cty.Number, 0.0)},
			Outputs: []string{"n"},
		}, c.wrap(func(context.Context, operation.Values, operation.Values) ([]any, error) {
			return nil, errBoom
		})),
	}
}

func add(t *testing.T, w *Workflow, typ *operation.Type, label string) *operation.Operation {
	t.Helper()
	op := typ.New(operation.WithLabel(label))
	require.NoError(t, w.AddOperation(op))
	return op
}

func link(t *testing.T, w *Workflow, src *operation.Operation, out string, dst *operation.Operation, in string) {
	t.Helper()
	_, err := w.AddLink(src, out, dst, in)
	require.NoError(t, err)
}

func TestRun_InputPrecedence(t *testing.T) {
	ty := newTypes()
	w := New("precedence")
	five := add(t, w, ty.constant, "five")
	require.NoError(t, w.SetParameterValue(five, "value", 5.0))
	a := add(t, w, ty.square, "a")

	res, err := w.Run(context.Background())
	require.NoError(t, err)
	in, _ := res.Inputs(a)
	assert.Equal(t, 0.0, in["n"], "default applies when nothing else feeds the input")

	link(t, w, five, "n", a, "n")
	res, err = w.Run(context.Background())
	require.NoError(t, err)
	in, _ = res.Inputs(a)
	assert.Equal(t, 5.0, in["n"], "a link beats the default")

	require.NoError(t, a.Fill("n", 9.0))
	res, err = w.Run(context.Background())
	require.NoError(t, err)
	in, _ = res.Inputs(a)
	assert.Equal(t, 9.0, in["n"], "a filled value beats the link")
	out, _ := res.Output(a, "square")
	assert.Equal(t, 81.0, out)
}

func TestRun_SumOfSquares(t *testing.T) {
	ty := newTypes()
	w := New("sum of squares")
	three := add(t, w, ty.constant, "three")
	require.NoError(t, w.SetParameterValue(three, "value", 3.0))
	linked := add(t, w, ty.square, "linked")
	filled := add(t, w, ty.square, "filled")
	require.NoError(t, filled.Fill("n", 2.0))
	total := add(t, w, ty.sum, "total")
	link(t, w, three, "n", linked, "n")
	link(t, w, linked, "square", total, "n1")
	link(t, w, filled, "square", total, "n2")

	res, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, res.Status)
	assert.True(t, res.Succeeded())
	v, ok := res.Output(total, "sum")
	require.True(t, ok)
	assert.Equal(t, 13.0, v)
	assert.Equal(t, []*operation.Operation{three, linked, filled, total}, res.Executed)
	assert.Empty(t, res.Failures)
	assert.Empty(t, res.Intents)
	for _, op := range res.Order {
		assert.Equal(t, nodestore.StatusCompleted, res.OperationStatus(op))
	}
}

func TestRun_IntentsAreIndependentOfOutputs(t *testing.T) {
	ty := newTypes()

	withIntent := New("with intent")
	p := add(t, withIntent, ty.plot, "chart")
	res, err := withIntent.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Intents, 1)
	got := res.Intents[0]
	assert.Equal(t, intent.KindPlot, got.Kind)
	assert.Equal(t, "Example Plot", got.Name)
	assert.Equal(t, string(p.ID()), got.Source.OperationID)
	assert.Equal(t, "plot[chart]", got.Source.Operation)
	outputs, _ := res.Outputs(p)
	assert.Equal(t, outputs["x"], got.Values["x"])
	assert.Equal(t, outputs["y"], got.Values["y"])

	without := New("without intent")
	bare := add(t, without, ty.bare, "chart")
	res2, err := without.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, res2.Intents)
	outputs2, _ := res2.Outputs(bare)
	assert.Equal(t, outputs, outputs2)
}

func TestRun_CycleRejectedBeforeAnyInvocation(t *testing.T) {
	ty := newTypes()
	w := New("cycle")
	a := add(t, w, ty.square, "a")
	b := add(t, w, ty.sum, "b")
	c := add(t, w, ty.square, "c")
	link(t, w, a, "square", b, "n1")
	link(t, w, b, "sum", c, "n")
	link(t, w, c, "square", a, "n")
	require.NoError(t, b.Fill("n2", 1.0))

	res, err := w.Run(context.Background())

	require.ErrorIs(t, err, graph.ErrCyclicGraph)
	require.NotNil(t, res)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Zero(t, ty.calls.n.Load())
	assert.Empty(t, res.Executed)
}

func TestRun_UnresolvedInputRejectedBeforeAnyInvocation(t *testing.T) {
	ty := newTypes()
	w := New("unresolved")
	add(t, w, ty.square, "first")
	total := add(t, w, ty.sum, "total")
	require.NoError(t, total.Fill("n1", 1.0))

	_, err := w.Run(context.Background())

	var unresolved *operation.UnresolvedInputError
	require.ErrorAs(t, err, &unresolved)
	assert.Same(t, total, unresolved.Op)
	assert.Equal(t, "n2", unresolved.Input)
	assert.Zero(t, ty.calls.n.Load(), "the earlier operation must not run either")
}

func TestRun_FailurePreservesEarlierOutputs(t *testing.T) {
	ty := newTypes()
	w := New("failure")
	first := add(t, w, ty.square, "first")
	require.NoError(t, first.Fill("n", 4.0))
	bad := add(t, w, ty.fail, "bad")
	after := add(t, w, ty.square, "after")
	link(t, w, first, "square", bad, "n")
	link(t, w, bad, "n", after, "n")

	res, err := w.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, StatusFailed, res.Status)

	require.Len(t, res.Failures, 1)
	assert.Same(t, bad, res.Failures[0].Operation)
	failErr, ok := res.Failure(bad)
	require.True(t, ok)
	assert.ErrorIs(t, failErr, errBoom)

	v, ok := res.Output(first, "square")
	require.True(t, ok)
	assert.Equal(t, 16.0, v)
	_, ok = res.Outputs(after)
	assert.False(t, ok)
	assert.Equal(t, nodestore.StatusSkipped, res.OperationStatus(after))
	assert.ErrorIs(t, res.OperationError(after), executor.ErrSkipped)
	assert.True(t, res.Halted)
}

func TestRun_ContinueIndependent(t *testing.T) {
	ty := newTypes()
	w := New("continue")
	bad := add(t, w, ty.fail, "bad")
	other := add(t, w, ty.square, "other")
	require.NoError(t, other.Fill("n", 3.0))

	res, err := w.Run(context.Background(), WithFailurePolicy(ContinueIndependent))

	require.Error(t, err)
	assert.False(t, res.Halted)
	assert.Equal(t, nodestore.StatusFailed, res.OperationStatus(bad))
	v, _ := res.Output(other, "square")
	assert.Equal(t, 9.0, v)
}

func TestRun_DeterministicOrder(t *testing.T) {
	ty := newTypes()
	w := New("determinism")
	var ops []*operation.Operation
	for _, label := range []string{"e", "d", "c", "b", "a"} {
		ops = append(ops, add(t, w, ty.square, label))
	}
	link(t, w, ops[4], "square", ops[0], "n")
	link(t, w, ops[3], "square", ops[1], "n")

	first, err := w.Run(context.Background())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := w.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first.Executed, again.Executed)
		assert.Equal(t, first.Order, again.Order)
	}
	assert.Equal(t, first.Order, first.Executed)
}

func TestRun_CancelledReturnsPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopper := operation.MustDefine(operation.Descriptor{Name: "stopper", Outputs: []string{"n"}},
		func(context.Context, operation.Values, operation.Values) ([]any, error) {
			cancel()
			return []any{1.0}, nil
		})
	ty := newTypes()
	w := New("cancel")
	stop := add(t, w, stopper, "stop")
	next := add(t, w, ty.square, "next")
	link(t, w, stop, "n", next, "n")

	res, err := w.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusCancelled, res.Status)
	v, ok := res.Output(stop, "n")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	assert.Equal(t, nodestore.StatusCancelled, res.OperationStatus(next))
	assert.Zero(t, ty.calls.n.Load())
}

func TestParameters(t *testing.T) {
	ty := newTypes()
	w := New("parameters")
	c := add(t, w, ty.constant, "c")

	schema, err := w.ParameterSchema(c)
	require.NoError(t, err)
	require.Len(t, schema, 1)
	assert.Equal(t, "value", schema[0].Name)

	v, err := w.ParameterValue(c, "value")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	res, err := w.Run(context.Background())
	require.NoError(t, err)
	out, _ := res.Output(c, "n")
	assert.Equal(t, 0.0, out)

	require.NoError(t, w.SetParameterValue(c, "value", 7.0))
	res, err = w.Run(context.Background())
	require.NoError(t, err)
	out, _ = res.Output(c, "n")
	assert.Equal(t, 7.0, out, "a parameter write is visible to the next run")

	assert.ErrorIs(t, w.SetParameterValue(c, "missing", 1), operation.ErrUnknownParameter)

	outsider := ty.constant.New()
	_, err = w.ParameterSchema(outsider)
	assert.ErrorIs(t, err, graph.ErrUnknownOperation)
	_, err = w.ParameterValue(outsider, "value")
	assert.ErrorIs(t, err, graph.ErrUnknownOperation)
	assert.ErrorIs(t, w.SetParameterValue(outsider, "value", 1), graph.ErrUnknownOperation)
}

func TestRun_ConcurrentRunsAreIsolated(t *testing.T) {
	ty := newTypes()
	w := New("isolation")
	c := add(t, w, ty.constant, "c")
	sq := add(t, w, ty.square, "sq")
	link(t, w, c, "n", sq, "n")
	require.NoError(t, w.SetParameterValue(c, "value", 2.0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := w.Run(context.Background(), WithWorkers(2))
			assert.NoError(t, err)
			v, _ := res.Output(sq, "square")
			assert.Equal(t, 4.0, v)
		}()
	}
	wg.Wait()
}
