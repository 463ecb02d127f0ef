// Package registry is the catalog of operation types known to an
// application.
//
// Modules register their types at startup; adapters that build workflows
// from external descriptions (HCL files, snapshots) look types up by name.
// The engine itself never consults the registry: a workflow holds direct
// references to its operation types.
package registry
