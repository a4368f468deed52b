// Package config defines the format-agnostic harness configuration and the
// Loader interface that concrete file formats implement.
//
// The Model is the single source of truth for the build and generate phases.
// The HCL implementation lives in the hcl package.
package config
