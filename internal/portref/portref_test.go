package portref

import (
	"context"
	"testing"

	"github.com/specialistvlad/opgraph/internal/graph"
	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		raw     string
		want    Ref
		wantErr string
	}{
		{raw: "square.n", want: Ref{Label: "square", Port: "n"}},
		{raw: "first-square.n_1", want: Ref{Label: "first-square", Port: "n_1"}},
		{raw: "", wantErr: "cannot be empty"},
		{raw: "square", wantErr: "must have the form"},
		{raw: ".n", wantErr: "invalid segment"},
		{raw: "a.b.c", wantErr: "invalid segment"},
		{raw: "1a.n", wantErr: "invalid segment"},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := Parse(tc.raw)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.raw, got.String())
		})
	}
}

func TestParseAssignment(t *testing.T) {
	a, err := ParseAssignment("square.n=3")
	require.NoError(t, err)
	assert.Equal(t, Assignment{Ref: Ref{Label: "square", Port: "n"}, Value: "3"}, a)

	a, err = ParseAssignment("greet.name=a=b")
	require.NoError(t, err)
	assert.Equal(t, "a=b", a.Value)

	_, err = ParseAssignment("square.n")
	assert.ErrorContains(t, err, "label.port=value")
}

func TestResolve(t *testing.T) {
	typ := operation.MustDefine(operation.Descriptor{Name: "noop"},
		func(context.Context, operation.Values, operation.Values) ([]any, error) { return nil, nil })
	g := graph.New()
	op := typ.New(operation.WithLabel("here"))
	require.NoError(t, g.AddOperation(op))

	got, err := Ref{Label: "here", Port: "x"}.Resolve(g)
	require.NoError(t, err)
	assert.Same(t, op, got)

	_, err = Ref{Label: "missing", Port: "x"}.Resolve(g)
	assert.ErrorIs(t, err, graph.ErrUnknownOperation)
}
