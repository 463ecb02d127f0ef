// Package config defines the format-agnostic interfaces (Loader, Converter)
// for building workflows from external descriptions. Concrete
// implementations, such as for HCL, are provided in separate packages.
package config
