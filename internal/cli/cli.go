package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/opgraph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// setFlags collects every -set occurrence.
type setFlags []string

func (s *setFlags) String() string { return strings.Join(*s, ",") }

func (s *setFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected label.input=value, got %q", v)
	}
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("opgraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
opgraph - Runs a graph of typed operations described in HCL.

Usage:
  opgraph [options] [WORKFLOW_PATH]

Arguments:
  WORKFLOW_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	var sets setFlags
	workflowFlag := flagSet.String("workflow", "", "Path to the workflow file or directory.")
	wFlag := flagSet.String("w", "", "Path to the workflow file or directory (shorthand).")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 1, "Maximum number of operations invoked at once.")
	timeoutFlag := flagSet.Duration("timeout", 0, "Per-operation invocation timeout. 0 disables it.")
	continueFlag := flagSet.Bool("continue-on-failure", false, "Keep running operations that do not depend on a failed one.")
	flagSet.Var(&sets, "set", "Pin an input before the run, as label.input=value. Repeatable.")
	publishURLFlag := flagSet.String("publish-url", "", "socket.io server URL the result is emitted to.")
	publishEventFlag := flagSet.String("publish-event", "result", "Event name used when publishing the result.")
	snapshotOutFlag := flagSet.String("snapshot-out", "", "Write a snapshot of the workflow to this file after the run.")
	snapshotCompressFlag := flagSet.Bool("snapshot-compress", false, "Compress the snapshot with zstd.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	switch {
	case *workflowFlag != "":
		path = *workflowFlag
	case *wFlag != "":
		path = *wFlag
	case flagSet.NArg() > 0:
		path = flagSet.Arg(0)
	}
	slog.Debug("Workflow path determined.", "path", path)

	if path == "" {
		slog.Debug("No workflow path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		WorkflowPath:      path,
		LogFormat:         strings.ToLower(*logFormatFlag),
		LogLevel:          strings.ToLower(*logLevelFlag),
		Workers:           *workersFlag,
		Timeout:           *timeoutFlag,
		ContinueOnFailure: *continueFlag,
		Sets:              sets,
		PublishURL:        *publishURLFlag,
		PublishEvent:      *publishEventFlag,
		SnapshotOut:       *snapshotOutFlag,
		SnapshotCompress:  *snapshotCompressFlag,
		HealthcheckPort:   *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
