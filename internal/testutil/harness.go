package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/opgraph/internal/app"
	"github.com/specialistvlad/opgraph/internal/registry"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// Options adjusts the app configuration used by the harness.
type Options func(*app.Config)

// WithWorkers sets the executor's worker count.
func WithWorkers(n int) Options { return func(c *app.Config) { c.Workers = n } }

// WithContinueOnFailure switches the failure policy.
func WithContinueOnFailure() Options { return func(c *app.Config) { c.ContinueOnFailure = true } }

// WithSets adds -set overrides.
func WithSets(sets ...string) Options {
	return func(c *app.Config) { c.Sets = append(c.Sets, sets...) }
}

// RunIntegrationTest runs a workflow assembled from files.
func RunIntegrationTest(t *testing.T, files map[string]string, modules []registry.Module, opts ...Options) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, modules, opts...)
}

// RunIntegrationTestWithContext writes files (relative path to content)
// into a temporary directory and runs the app on it with the given
// modules. A panic during startup is returned as Err.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, modules []registry.Module, opts ...Options) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg := &app.Config{
		WorkflowPath: dir,
		LogLevel:     "debug",
		LogFormat:    "text",
		Workers:      4,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logBuffer := &app.SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("OPGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	var testApp *app.App
	var panicErr any
	func() {
		defer func() { panicErr = recover() }()
		testApp = app.NewApp(logBuffer, cfg, modules...)
	}()
	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	err := testApp.Run(ctx)
	return &HarnessResult{LogOutput: logBuffer.String(), Err: err, App: testApp}
}
