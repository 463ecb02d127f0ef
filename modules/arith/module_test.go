package arith

import (
	"context"
	"testing"

	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/registry"
	"github.com/specialistvlad/opgraph/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes(t *testing.T) {
	testCases := []struct {
		typ    *operation.Type
		inputs operation.Values
		want   operation.Values
	}{
		{typ: Square, inputs: operation.Values{"n": 3}, want: operation.Values{"square": 9.0}},
		{typ: Sum, inputs: operation.Values{"n1": 9.0, "n2": 4.0}, want: operation.Values{"sum": 13.0}},
		{typ: Negative, inputs: operation.Values{"num": 5}, want: operation.Values{"negative": -5.0}},
		{typ: DoubleAndTriple, inputs: operation.Values{"n": 2}, want: operation.Values{"double": 4.0, "triple": 6.0}},
		{typ: Increment, inputs: operation.Values{"n": 1}, want: operation.Values{"n": 2.0}},
		{typ: Decrement, inputs: operation.Values{"n": 1}, want: operation.Values{"n": 0.0}},
		{typ: Power, inputs: operation.Values{"n": 4}, want: operation.Values{"n": 16.0}},
	}

	for _, tc := range testCases {
		t.Run(tc.typ.Name(), func(t *testing.T) {
			got, err := tc.typ.New().Invoke(context.Background(), tc.inputs, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNonNumericInput(t *testing.T) {
	_, err := Square.New().Invoke(context.Background(), operation.Values{"n": "three"}, nil)
	var invErr *operation.InvocationError
	assert.ErrorAs(t, err, &invErr)
}

func TestRegister(t *testing.T) {
	r := registry.New()
	r.RegisterModules(&Module{})
	assert.Equal(t, []string{"decrement", "double_and_triple", "increment", "negative", "power", "square", "sum"}, r.Names())
	require.NoError(t, r.Validate(context.Background()))
}

func TestAutoConnectedChain(t *testing.T) {
	w := workflow.New("chain")
	inc := Increment.New()
	require.NoError(t, inc.Fill("n", 1.0))
	dec := Decrement.New()
	pow := Power.New()
	require.NoError(t, w.AddOperations(inc, dec, pow))
	require.Len(t, w.AutoConnect(), 2)

	res, err := w.Run(context.Background())
	require.NoError(t, err)

	// (1 + 1 - 1)^2
	v, ok := res.Output(pow, "n")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}
