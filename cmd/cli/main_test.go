package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/opgraph/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
operation "square" "a" {
  n = 3
}

operation "negative" "b" {
  num = a.square
}

operation "print" "show" {
  value = b.negative
}
`)
	out := &bytes.Buffer{}

	require.NoError(t, run(out, []string{"-set", "a.n=4", path}))

	assert.Contains(t, out.String(), "-16")
	assert.Contains(t, out.String(), `msg="Run result." workflow=workflow status=succeeded operations=3`)
}

func TestRun_ParseFailureInWorkflow(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
operation "square" "a" {
  n = 3
`)
	err := run(&bytes.Buffer{}, []string{path})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load workflow")
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestRun_FailedRunReturnsError(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
operation "sum" "total" {
  n1 = 1
}
`)
	err := run(&bytes.Buffer{}, []string{path})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "execution failed")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	require.NoError(t, run(out, []string{"-h"}))
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "flag provided but not defined: -this-is-not-a-valid-flag")
}
