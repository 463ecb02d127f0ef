package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/opgraph/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	defaults := app.Config{LogFormat: "text", LogLevel: "info", Workers: 1, PublishEvent: "result"}
	with := func(mutate func(*app.Config)) *app.Config {
		c := defaults
		mutate(&c)
		return &c
	}

	testCases := []struct {
		name string
		args []string
		want *app.Config
	}{
		{
			name: "positional path",
			args: []string{"wf.hcl"},
			want: with(func(c *app.Config) { c.WorkflowPath = "wf.hcl" }),
		},
		{
			name: "long flag wins over shorthand and positional",
			args: []string{"-workflow", "a.hcl", "-w", "b.hcl", "c.hcl"},
			want: with(func(c *app.Config) { c.WorkflowPath = "a.hcl" }),
		},
		{
			name: "shorthand",
			args: []string{"-w", "b.hcl"},
			want: with(func(c *app.Config) { c.WorkflowPath = "b.hcl" }),
		},
		{
			name: "everything",
			args: []string{
				"-log-format", "JSON", "-log-level", "Debug", "-workers", "4", "-timeout", "2s",
				"-continue-on-failure", "-set", "a.n=1", "-set", "b.s=hello world",
				"-publish-url", "http://localhost:3000/socket.io/", "-publish-event", "done",
				"-snapshot-out", "out.snap", "-snapshot-compress", "-healthcheck-port", "8080", "wf",
			},
			want: &app.Config{
				WorkflowPath:      "wf",
				LogFormat:         "json",
				LogLevel:          "debug",
				Workers:           4,
				Timeout:           2 * time.Second,
				ContinueOnFailure: true,
				Sets:              []string{"a.n=1", "b.s=hello world"},
				PublishURL:        "http://localhost:3000/socket.io/",
				PublishEvent:      "done",
				SnapshotOut:       "out.snap",
				SnapshotCompress:  true,
				HealthcheckPort:   8080,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, exit, err := Parse(tc.args, &bytes.Buffer{})
			require.NoError(t, err)
			assert.False(t, exit)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_ExitCleanly(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {}} {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(args, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown flag", args: []string{"-nope"}, wantErr: "flag provided but not defined: -nope"},
		{name: "malformed set", args: []string{"-set", "a.n", "wf"}, wantErr: "expected label.input=value"},
		{name: "bad log level", args: []string{"-log-level", "trace", "wf"}, wantErr: "-log-level"},
		{name: "zero workers", args: []string{"-workers", "0", "wf"}, wantErr: "-workers: must be at least 1"},
		{name: "bad duration", args: []string{"-timeout", "soon", "wf"}, wantErr: "-timeout"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantErr)
		})
	}
}
