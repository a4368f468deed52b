// Package hcl provides the concrete HCL implementation of config.Loader.
// It parses a harness file, evaluates its expressions against the process
// environment, and overlays the result on a base config.Model.
package hcl
