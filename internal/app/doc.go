// Package app wires a workflow file to a run. It owns the logger, the
// operation registry, the loader, and everything that happens to a result
// after the run: publication and snapshots. It knows nothing about flags.
package app
