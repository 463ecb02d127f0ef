// Package cli turns command-line arguments into a validated app.Config and
// decides the process exit code for bad input.
package cli
