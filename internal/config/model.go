package config

import (
	"errors"
	"fmt"
	"time"
)

// Model is the complete harness configuration.
type Model struct {
	Build    Build
	Generate Generate
}

// Build describes the one-time toolchain invocation.
type Build struct {
	Compiler  string
	Flags     []string
	Source    string
	Libraries []string
	Output    string
	Timeout   time.Duration
}

// Generate describes the per-case generator invocations.
type Generate struct {
	InputSuffix  string
	OutputSuffix string
	Timeout      time.Duration
	Workers      int // 0 means one per CPU
}

// Default returns the configuration of the reference harness: the
// generator source one directory up, linked against CLooG/isl, Clan and
// OpenScop, built to ./codegen.
func Default() *Model {
	return &Model{
		Build: Build{
			Compiler:  "g++",
			Source:    "../src/codegen.cpp",
			Libraries: []string{"cloog-isl", "clan", "osl"},
			Output:    "./codegen",
			Timeout:   10 * time.Minute,
		},
		Generate: Generate{
			InputSuffix:  ".clay.scop",
			OutputSuffix: ".clay.c",
			Timeout:      60 * time.Second,
		},
	}
}

// Validate checks the model for values the harness cannot run with.
func (m *Model) Validate() error {
	var errs []error
	if m.Build.Compiler == "" {
		errs = append(errs, errors.New("build.compiler must not be empty"))
	}
	if m.Build.Source == "" {
		errs = append(errs, errors.New("build.source must not be empty"))
	}
	if m.Build.Output == "" {
		errs = append(errs, errors.New("build.output must not be empty"))
	}
	if m.Build.Timeout < 0 {
		errs = append(errs, fmt.Errorf("build.timeout must not be negative, got %s", m.Build.Timeout))
	}
	if m.Generate.InputSuffix == "" {
		errs = append(errs, errors.New("generate.input_suffix must not be empty"))
	}
	if m.Generate.OutputSuffix == "" {
		errs = append(errs, errors.New("generate.output_suffix must not be empty"))
	}
	if m.Generate.InputSuffix != "" && m.Generate.InputSuffix == m.Generate.OutputSuffix {
		errs = append(errs, errors.New("generate.output_suffix must differ from generate.input_suffix"))
	}
	if m.Generate.Timeout < 0 {
		errs = append(errs, fmt.Errorf("generate.timeout must not be negative, got %s", m.Generate.Timeout))
	}
	if m.Generate.Workers < 0 {
		errs = append(errs, fmt.Errorf("generate.workers must not be negative, got %d", m.Generate.Workers))
	}
	return errors.Join(errs...)
}

// Clone returns a deep copy of m.
func (m *Model) Clone() *Model {
	c := *m
	c.Build.Flags = append([]string(nil), m.Build.Flags...)
	c.Build.Libraries = append([]string(nil), m.Build.Libraries...)
	return &c
}
