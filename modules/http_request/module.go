package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/specialistvlad/opgraph/internal/ctxlog"
	"github.com/specialistvlad/opgraph/internal/operation"
	"github.com/specialistvlad/opgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client performs the requests. Nil means http.DefaultClient.
	Client *http.Client
}

// New returns the http_request type using client.
func New(client *http.Client) *operation.Type {
	return operation.MustDefine(operation.Descriptor{
		Name: "http_request",
		Inputs: []operation.InputSpec{
			operation.In("url", cty.String),
			operation.InDefault("method", cty.String, http.MethodGet),
		},
		Outputs: []string{"status_code", "body"},
	}, func(ctx context.Context, in, _ operation.Values) ([]any, error) {
		url, _ := in["url"].(string)
		method, _ := in["method"].(string)
		logger := ctxlog.FromContext(ctx)
		logger.Info("Making HTTP request", "method", method, "url", url)

		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		logger.Info("Received HTTP response", "status", resp.Status)
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		return []any{float64(resp.StatusCode), string(body)}, nil
	})
}

// Register registers the http_request type.
func (m *Module) Register(r *registry.Registry) {
	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	r.Register(New(client))
}
