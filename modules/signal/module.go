// Package signal provides sample data sources that declare visualization
// intents: a random series with a plot intent and a random image with an
// image intent.
package signal

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/specialistvlad/opgraph/internal/intent"
	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var (
	Plot = operation.MustDefine(operation.Descriptor{
		Name:        "plot",
		DisplayName: "Random series",
		Outputs:     []string{"x", "y"},
		Intents:     []intent.Template{intent.Plot("Example Plot", map[string]string{"x": "x", "y": "y"})},
		Parameters: []operation.ParameterSpec{{
			Name:        "points",
			Type:        cty.Number,
			Default:     100.0,
			Constraints: map[string]any{"min": 1.0},
		}},
	}, runPlot)

	Image = operation.MustDefine(operation.Descriptor{
		Name:        "image",
		DisplayName: "Random image",
		Outputs:     []string{"image"},
		Intents:     []intent.Template{intent.Image("Example Image", map[string]string{"image": "image"})},
		Parameters: []operation.ParameterSpec{{
			Name:        "size",
			Type:        cty.Number,
			Default:     100.0,
			Constraints: map[string]any{"min": 1.0},
		}},
	}, runImage)
)

func count(params operation.Values, name string) (int, error) {
	f, err := params.Float(name)
	if err != nil {
		return 0, err
	}
	if f < 1 {
		return 0, fmt.Errorf("parameter %q must be at least 1, got %v", name, f)
	}
	return int(f), nil
}

func runPlot(_ context.Context, _, params operation.Values) ([]any, error) {
	n, err := count(params, "points")
	if err != nil {
		return nil, err
	}
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range n {
		x[i] = float64(i)
		y[i] = rand.Float64()
	}
	return []any{x, y}, nil
}

func runImage(_ context.Context, _, params operation.Values) ([]any, error) {
	n, err := count(params, "size")
	if err != nil {
		return nil, err
	}
	img := make([][]float64, n)
	for i := range img {
		img[i] = make([]float64, n)
		for j := range img[i] {
			img[i][j] = rand.Float64()
		}
	}
	return []any{img}, nil
}

// Register registers both sample sources.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Plot)
	r.Register(Image)
}
