package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SortsBindings(t *testing.T) {
	tmpl := New("heatmap", "Heat", map[string]string{"z": "values", "a": "axis"})

	assert.Equal(t, []Binding{{Output: "a", Role: "axis"}, {Output: "z", Role: "values"}}, tmpl.Bindings)
	assert.Equal(t, []string{"a", "z"}, tmpl.Outputs())
}

func TestMaterialize(t *testing.T) {
	src := Source{OperationID: "id-1", Operation: "plot"}

	testCases := []struct {
		name     string
		template Template
		outputs  map[string]any
		wantOK   bool
		want     map[string]any
	}{
		{
			name:     "plot binds exact values",
			template: Plot("Example Plot", map[string]string{"x": "x", "y": "y"}),
			outputs:  map[string]any{"x": []float64{1, 2}, "y": []float64{3, 4}},
			wantOK:   true,
			want:     map[string]any{"x": []float64{1, 2}, "y": []float64{3, 4}},
		},
		{
			name:     "roles may differ from output names",
			template: Image("Example Image", map[string]string{"frame": "image"}),
			outputs:  map[string]any{"frame": "pixels", "unused": 1},
			wantOK:   true,
			want:     map[string]any{"image": "pixels"},
		},
		{
			name:     "missing output yields nothing",
			template: Plot("Example Plot", map[string]string{"x": "x", "y": "y"}),
			outputs:  map[string]any{"x": 1},
			wantOK:   false,
		},
		{
			name:     "nil value still counts as present",
			template: Plot("p", map[string]string{"x": "x"}),
			outputs:  map[string]any{"x": nil},
			wantOK:   true,
			want:     map[string]any{"x": nil},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Materialize(tc.template, src, tc.outputs)
			require.Equal(t, tc.wantOK, ok)
			if !tc.wantOK {
				return
			}
			assert.Equal(t, tc.template.Kind, got.Kind)
			assert.Equal(t, tc.template.Name, got.Name)
			assert.Equal(t, src, got.Source)
			assert.Equal(t, tc.want, got.Values)
		})
	}
}
